// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package mule extracts flows and component trees from Mule configuration XML.
//
// The package is the front half of the MuleView pipeline: raw markup text goes
// in, typed flow definitions come out. It deliberately does NOT use an XML
// parser. Mule configs in the wild are frequently partial (snippets pasted
// into tickets, files mid-edit, templating placeholders) and a conformant
// parser rejects exactly the inputs we most want to tolerate. Instead a small
// hand-written scanner walks the text and yields open/close/self-close tag
// events, and everything above it is built on that event stream.
//
// # Pipeline
//
//	content -> Scanner -> tag events -> ExtractFlows -> []FlowDefinition
//	                                        (per body)   BuildComponents
//
//   - Scanner (scanner.go): lexes markup into TagEvent values, skipping
//     comments, CDATA sections, and processing instructions as opaque spans.
//   - Descriptor table (descriptor.go): static registry mapping tag names to
//     display metadata (type, icon, container status).
//   - BuildComponents (component.go): folds one flow body's event stream into
//     an ordered forest of Component using an explicit container stack.
//   - ExtractFlows (flow.go): delimits <flow> and <sub-flow> definitions in a
//     whole document and runs the tree builder on each body.
//
// # Failure Policy
//
// Nothing in this package returns an error. Malformed input degrades to
// smaller output: a bad tag is skipped, a flow without a name is dropped, a
// panic while building one flow's components is recovered and that flow keeps
// an empty component list. One broken flow must never cost us the rest of the
// file.
//
// # Thread Safety
//
// All state is call-scoped. The descriptor table is read-only after package
// init. Concurrent calls on different inputs are safe.
package mule
