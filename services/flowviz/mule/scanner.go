// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package mule

import "strings"

// EventKind discriminates the three tag event variants.
type EventKind int

const (
	// EventOpen is an opening tag: <flow name="Main">.
	EventOpen EventKind = iota

	// EventClose is a closing tag: </flow>.
	EventClose

	// EventSelfClose is a self-closing tag: <logger doc:name="Log"/>.
	EventSelfClose
)

// String returns the string representation of the EventKind.
func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventClose:
		return "close"
	case EventSelfClose:
		return "self-close"
	default:
		return "unknown"
	}
}

// TagEvent is one tag encountered while scanning markup text.
type TagEvent struct {
	// Kind is the event variant.
	Kind EventKind

	// Name is the tag name, lowercased and trimmed. Namespace prefixes are
	// kept: "http:listener" stays "http:listener".
	Name string

	// Attrs holds the tag's attributes. Keys are verbatim, including any
	// namespace prefix ("doc:name"). Nil for close events.
	Attrs map[string]string

	// Start is the byte offset of the '<' in the source text.
	Start int

	// End is the byte offset just past the closing '>'.
	End int
}

// Scanner walks markup text and yields tag events. It owns its cursor, so
// concurrent scans of different documents never share state.
//
// The scanner is tolerant by construction: comments, CDATA sections, and
// processing instructions are skipped as opaque spans, stray '<' characters
// in text are stepped over, and a truncated tag at end of input simply ends
// the event stream.
type Scanner struct {
	src string
	pos int
}

// NewScanner creates a scanner positioned at the start of src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src}
}

// Next returns the next tag event. The second return value is false when the
// input is exhausted or the remainder cannot be scanned.
func (s *Scanner) Next() (TagEvent, bool) {
	for s.pos < len(s.src) {
		lt := strings.IndexByte(s.src[s.pos:], '<')
		if lt < 0 {
			s.pos = len(s.src)
			return TagEvent{}, false
		}
		start := s.pos + lt
		rest := s.src[start:]

		switch {
		case strings.HasPrefix(rest, "<!--"):
			end := strings.Index(rest[4:], "-->")
			if end < 0 {
				s.pos = len(s.src)
				return TagEvent{}, false
			}
			s.pos = start + 4 + end + 3

		case strings.HasPrefix(rest, "<![CDATA["):
			end := strings.Index(rest[9:], "]]>")
			if end < 0 {
				s.pos = len(s.src)
				return TagEvent{}, false
			}
			s.pos = start + 9 + end + 3

		case strings.HasPrefix(rest, "<?"):
			end := strings.Index(rest[2:], "?>")
			if end < 0 {
				s.pos = len(s.src)
				return TagEvent{}, false
			}
			s.pos = start + 2 + end + 2

		case strings.HasPrefix(rest, "<!"):
			// DOCTYPE and other declarations
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				s.pos = len(s.src)
				return TagEvent{}, false
			}
			s.pos = start + end + 1

		case strings.HasPrefix(rest, "</"):
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				s.pos = len(s.src)
				return TagEvent{}, false
			}
			name := normalizeTagName(rest[2:end])
			s.pos = start + end + 1
			if name == "" {
				continue
			}
			return TagEvent{Kind: EventClose, Name: name, Start: start, End: s.pos}, true

		default:
			if len(rest) < 2 || !isNameStart(rest[1]) {
				// Stray '<' in text, step over it.
				s.pos = start + 1
				continue
			}
			end := findTagEnd(rest)
			if end < 0 {
				s.pos = len(s.src)
				return TagEvent{}, false
			}
			inner := strings.TrimRight(rest[1:end], " \t\r\n")
			kind := EventOpen
			if strings.HasSuffix(inner, "/") {
				kind = EventSelfClose
				inner = strings.TrimRight(inner[:len(inner)-1], " \t\r\n")
			}
			name, attrSegment := splitNameAttrs(inner)
			s.pos = start + end + 1
			if name == "" {
				continue
			}
			return TagEvent{
				Kind:  kind,
				Name:  name,
				Attrs: parseAttrs(attrSegment),
				Start: start,
				End:   s.pos,
			}, true
		}
	}
	return TagEvent{}, false
}

// ScanAll scans src to completion and returns every event in order.
// Malformed or empty input yields an empty slice.
func ScanAll(src string) []TagEvent {
	sc := NewScanner(src)
	var events []TagEvent
	for {
		ev, ok := sc.Next()
		if !ok {
			return events
		}
		events = append(events, ev)
	}
}

// findTagEnd returns the index of the tag-terminating '>' in rest, honoring
// quoted attribute values so that '>' inside a value does not end the tag.
// Returns -1 when the tag is unterminated.
func findTagEnd(rest string) int {
	var quote byte
	for i := 1; i < len(rest); i++ {
		c := rest[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i
		}
	}
	return -1
}

// splitNameAttrs splits the inner tag text into the tag name and the raw
// attribute segment.
func splitNameAttrs(inner string) (name, attrSegment string) {
	inner = strings.TrimLeft(inner, " \t\r\n")
	for i := 0; i < len(inner); i++ {
		if isSpace(inner[i]) {
			return strings.ToLower(inner[:i]), inner[i+1:]
		}
	}
	return strings.ToLower(inner), ""
}

// parseAttrs extracts key="value" and key='value' pairs from a tag's
// attribute segment. Bare attributes and unquoted values are skipped.
// Attribute keys keep their original case and namespace prefix.
func parseAttrs(segment string) map[string]string {
	attrs := make(map[string]string)
	i := 0
	for i < len(segment) {
		for i < len(segment) && isSpace(segment[i]) {
			i++
		}
		if i >= len(segment) {
			break
		}

		nameStart := i
		for i < len(segment) && !isSpace(segment[i]) && segment[i] != '=' {
			i++
		}
		name := segment[nameStart:i]

		for i < len(segment) && isSpace(segment[i]) {
			i++
		}
		if i >= len(segment) || segment[i] != '=' {
			// Bare attribute with no value.
			continue
		}
		i++
		for i < len(segment) && isSpace(segment[i]) {
			i++
		}
		if i >= len(segment) || (segment[i] != '"' && segment[i] != '\'') {
			// Unquoted value, skip the token.
			continue
		}
		quote := segment[i]
		i++
		valStart := i
		for i < len(segment) && segment[i] != quote {
			i++
		}
		if i >= len(segment) {
			// Unterminated value.
			break
		}
		if name != "" {
			attrs[name] = segment[valStart:i]
		}
		i++
	}
	return attrs
}

// normalizeTagName lowercases and trims a raw tag name, keeping only the
// first token so stray text after the name is dropped.
func normalizeTagName(raw string) string {
	raw = strings.TrimSpace(raw)
	for i := 0; i < len(raw); i++ {
		if isSpace(raw[i]) {
			raw = raw[:i]
			break
		}
	}
	return strings.ToLower(raw)
}

func isNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
