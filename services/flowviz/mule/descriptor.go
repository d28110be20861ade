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

// Descriptor carries display metadata for one Mule component tag.
type Descriptor struct {
	// Type is the human-readable category, e.g. "HTTP Listener".
	Type string

	// Icon is a display glyph shown next to the component in diagrams.
	Icon string

	// Container reports whether child components attach beneath this tag.
	Container bool

	// DefaultLabel, when set, is used as the display name for components
	// that carry no name-bearing attributes. Empty means fall back to
	// "<Type> <index>".
	DefaultLabel string
}

// descriptorTable maps tag names to descriptors. Keys are either
// fully-qualified ("http:listener") or bare local names ("logger").
// Lookup tries the fully-qualified form first, then the local name.
var descriptorTable = map[string]Descriptor{
	// HTTP connector
	"http:listener": {Type: "HTTP Listener", Icon: "🌐"},
	"http:request":  {Type: "HTTP Request", Icon: "🌐"},

	// Database connector
	"db:select":           {Type: "Database Select", Icon: "🗄️"},
	"db:insert":           {Type: "Database Insert", Icon: "🗄️"},
	"db:update":           {Type: "Database Update", Icon: "🗄️"},
	"db:delete":           {Type: "Database Delete", Icon: "🗄️"},
	"db:bulk-insert":      {Type: "Database Bulk Insert", Icon: "🗄️"},
	"db:stored-procedure": {Type: "Database Stored Procedure", Icon: "🗄️"},

	// VM / JMS / Anypoint MQ messaging
	"vm:listener":              {Type: "VM Listener", Icon: "📥"},
	"vm:publish":               {Type: "VM Publish", Icon: "📤"},
	"vm:consume":               {Type: "VM Consume", Icon: "📥"},
	"jms:listener":             {Type: "JMS Listener", Icon: "📥"},
	"jms:publish":              {Type: "JMS Publish", Icon: "📤"},
	"jms:consume":              {Type: "JMS Consume", Icon: "📥"},
	"anypoint-mq:publish":      {Type: "MQ Publish", Icon: "📤"},
	"anypoint-mq:subscriber":   {Type: "MQ Subscriber", Icon: "📥"},
	"anypoint-mq:consume":      {Type: "MQ Consume", Icon: "📥"},
	"anypoint-mq:ack":          {Type: "MQ Ack", Icon: "📥"},
	"salesforce:query":         {Type: "Salesforce Query", Icon: "☁️"},
	"salesforce:create":        {Type: "Salesforce Create", Icon: "☁️"},
	"salesforce:update":        {Type: "Salesforce Update", Icon: "☁️"},
	"salesforce:invoke-apex":   {Type: "Salesforce Apex", Icon: "☁️"},
	"salesforce:replay-events": {Type: "Salesforce Replay", Icon: "☁️"},

	// Files and object store
	"file:read":    {Type: "File Read", Icon: "📄"},
	"file:write":   {Type: "File Write", Icon: "📄"},
	"file:list":    {Type: "File List", Icon: "📄"},
	"sftp:read":    {Type: "SFTP Read", Icon: "📄"},
	"sftp:write":   {Type: "SFTP Write", Icon: "📄"},
	"os:store":     {Type: "Object Store Store", Icon: "💾"},
	"os:retrieve":  {Type: "Object Store Retrieve", Icon: "💾"},
	"os:remove":    {Type: "Object Store Remove", Icon: "💾"},
	"os:contains":  {Type: "Object Store Contains", Icon: "💾"},
	"os:clear":     {Type: "Object Store Clear", Icon: "💾"},
	"ee:cache":     {Type: "Cache", Icon: "💾", Container: true},
	"ee:transform": {Type: "Transform Message", Icon: "🔄", DefaultLabel: "Transform Message"},

	// Batch
	"batch:job":             {Type: "Batch Job", Icon: "📦", Container: true},
	"batch:step":            {Type: "Batch Step", Icon: "📦", Container: true},
	"batch:process-records": {Type: "Batch Process Records", Icon: "📦", Container: true},
	"batch:on-complete":     {Type: "Batch On Complete", Icon: "📦", Container: true},
	"batch:aggregator":      {Type: "Batch Aggregator", Icon: "📦", Container: true},

	// Core components, bare local names
	"logger":             {Type: "Logger", Icon: "📝"},
	"set-payload":        {Type: "Set Payload", Icon: "✏️"},
	"set-variable":       {Type: "Set Variable", Icon: "✏️"},
	"remove-variable":    {Type: "Remove Variable", Icon: "✏️"},
	"flow-ref":           {Type: "Flow Reference", Icon: "🔗"},
	"scheduler":          {Type: "Scheduler", Icon: "⏰", DefaultLabel: "Scheduler"},
	"raise-error":        {Type: "Raise Error", Icon: "⚠️"},
	"transform":          {Type: "Transform", Icon: "🔄"},
	"choice":             {Type: "Choice", Icon: "🔀", Container: true},
	"when":               {Type: "When", Icon: "🔀", Container: true},
	"otherwise":          {Type: "Otherwise", Icon: "🔀", Container: true},
	"try":                {Type: "Try", Icon: "🛡️", Container: true},
	"error-handler":      {Type: "Error Handler", Icon: "⚠️", Container: true, DefaultLabel: "Error Handler"},
	"on-error-continue":  {Type: "On Error Continue", Icon: "⚠️", Container: true},
	"on-error-propagate": {Type: "On Error Propagate", Icon: "⚠️", Container: true},
	"scatter-gather":     {Type: "Scatter-Gather", Icon: "⚡", Container: true},
	"foreach":            {Type: "For Each", Icon: "🔁", Container: true},
	"parallel-foreach":   {Type: "Parallel For Each", Icon: "🔁", Container: true},
	"async":              {Type: "Async", Icon: "⚡", Container: true},
	"until-successful":   {Type: "Until Successful", Icon: "🔁", Container: true},
}

// containerTags is the fallback container set for tags without a table entry.
// Membership is checked on the local name only.
var containerTags = map[string]bool{
	"choice":             true,
	"when":               true,
	"otherwise":          true,
	"try":                true,
	"error-handler":      true,
	"on-error-continue":  true,
	"on-error-propagate": true,
	"scatter-gather":     true,
	"foreach":            true,
	"parallel-foreach":   true,
	"async":              true,
	"until-successful":   true,
	"poll":               true,
	"scheduled":          true,
	"job":                true,
	"step":               true,
	"process-records":    true,
	"on-complete":        true,
}

// prefixNames maps well-known namespace prefixes to their display form for
// derived descriptors. An empty value means the prefix contributes no text.
var prefixNames = map[string]string{
	"http":        "HTTP",
	"db":          "DB",
	"vm":          "VM",
	"jms":         "JMS",
	"os":          "OS",
	"batch":       "Batch",
	"salesforce":  "Salesforce",
	"anypoint-mq": "MQ",
	"ee":          "",
}

// Describe resolves display metadata for a normalized tag name.
//
// Resolution order:
//  1. Exact match on the fully-qualified tag ("http:listener").
//  2. Match on the local name with the prefix stripped ("listener").
//  3. Derive: title-case the local name, prefix a formatted namespace
//     prefix, and decide container status from the fallback tag set.
//
// Describe never fails; unknown tags always get a derived descriptor.
func Describe(tagName string) Descriptor {
	if d, ok := descriptorTable[tagName]; ok {
		return d
	}

	prefix, local := splitTag(tagName)
	if prefix != "" {
		if d, ok := descriptorTable[local]; ok {
			return d
		}
	}

	return deriveDescriptor(prefix, local)
}

// IsContainerTag reports whether children attach beneath the given tag.
func IsContainerTag(tagName string) bool {
	return Describe(tagName).Container
}

// splitTag splits a tag name into its namespace prefix and local name.
// Tags without a colon return an empty prefix.
func splitTag(tagName string) (prefix, local string) {
	if i := strings.IndexByte(tagName, ':'); i >= 0 {
		return tagName[:i], tagName[i+1:]
	}
	return "", tagName
}

// deriveDescriptor synthesizes a descriptor for a tag with no table entry.
func deriveDescriptor(prefix, local string) Descriptor {
	typeName := titleCase(local)
	if p := formatPrefix(prefix); p != "" {
		typeName = p + " " + typeName
	}
	return Descriptor{
		Type:      typeName,
		Icon:      "⚙️",
		Container: containerTags[local],
	}
}

// formatPrefix renders a namespace prefix for inclusion in a derived type
// name. Known prefixes use their fixed abbreviation. Unknown prefixes up to
// three characters are upper-cased, longer ones title-cased.
func formatPrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	if name, ok := prefixNames[prefix]; ok {
		return name
	}
	if len(prefix) <= 3 {
		return strings.ToUpper(prefix)
	}
	return titleCase(prefix)
}

// titleCase converts a hyphen- or underscore-separated tag segment into
// spaced title case: "until-successful" becomes "Until Successful".
func titleCase(s string) string {
	if s == "" {
		return ""
	}
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
