// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// muleview extracts flow graphs from Mule configuration XML and renders
// them as Mermaid diagrams.
//
// Usage:
//
//	muleview generate ./my-mule-app --mode detailed --out flows.mmd
//	muleview flows ./my-mule-app --refs
//	muleview watch ./my-mule-app --out flows.mmd
//	muleview version
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
