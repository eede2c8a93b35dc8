// Package protocol recognizes tool invocations embedded in free-form model
// output.
//
// A tool invocation looks like:
//
//	<tool$ name="call_subordinate" reset="true">
//	Research the topic and report back.
//	</tool$>
//
// The opening marker carries zero or more key="value" attributes, the body is
// everything up to the matching </tool$> with surrounding whitespace trimmed.
// Attribute values must be double-quoted; unquoted attributes are ignored.
// Repeated keys resolve to the last occurrence.
//
// Model output routinely quotes the syntax without meaning to invoke anything,
// so malformed or unterminated spans are skipped silently rather than reported.
package protocol

import (
	"iter"
	"maps"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/hupe1980/agentzero/core"
)

const (
	// OpenMarker starts an invocation.
	OpenMarker = "<tool$"
	// CloseMarker ends an invocation.
	CloseMarker = "</tool$>"
)

var (
	// openTag matches an opening marker. Quoted values may contain '>'.
	openTag = regexp.MustCompile(`<tool\$((?:[^>"]|"[^"]*")*)>`)
	// attrPattern matches key="value" pairs inside an opening marker.
	attrPattern = regexp.MustCompile(`([A-Za-z_][\w.-]*)\s*=\s*"([^"]*)"`)
)

// All yields the tool requests found in text in document order. Requests never
// overlap: a body ends at the first close marker after its opening marker, and
// an opening marker followed by another opening marker before any close marker
// is treated as unterminated.
func All(text string) iter.Seq[core.ToolRequest] {
	return func(yield func(core.ToolRequest) bool) {
		pos := 0
		for pos < len(text) {
			loc := openTag.FindStringSubmatchIndex(text[pos:])
			if loc == nil {
				return
			}

			tagEnd := pos + loc[1]
			attrs := text[pos+loc[2] : pos+loc[3]]

			closeIdx := strings.Index(text[tagEnd:], CloseMarker)
			if closeIdx < 0 {
				return
			}

			body := text[tagEnd : tagEnd+closeIdx]
			if next := openTag.FindStringIndex(body); next != nil {
				pos = tagEnd + next[0]
				continue
			}

			if !yield(newRequest(attrs, body)) {
				return
			}

			pos = tagEnd + closeIdx + len(CloseMarker)
		}
	}
}

// Parse eagerly collects All(text).
func Parse(text string) []core.ToolRequest {
	return slices.Collect(All(text))
}

func newRequest(rawAttrs, body string) core.ToolRequest {
	attrs := ParseAttributes(rawAttrs)
	return core.ToolRequest{
		Name:       attrs["name"],
		Attributes: attrs,
		Body:       strings.TrimSpace(body),
	}
}

// ParseAttributes extracts the quoted key/value pairs of an opening marker.
func ParseAttributes(raw string) map[string]string {
	attrs := map[string]string{}
	for _, m := range attrPattern.FindAllStringSubmatch(raw, -1) {
		attrs[m[1]] = m[2]
	}
	return attrs
}

// Format renders a request back into markup. The name attribute comes first,
// the rest in key order, so the output is stable.
func Format(req core.ToolRequest) string {
	attrs := maps.Clone(req.Attributes)
	if attrs == nil {
		attrs = map[string]string{}
	}
	if req.Name != "" {
		attrs["name"] = req.Name
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		if k != "name" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(OpenMarker)
	if name, ok := attrs["name"]; ok {
		b.WriteString(` name="` + name + `"`)
	}
	for _, k := range keys {
		b.WriteString(" " + k + `="` + attrs[k] + `"`)
	}
	b.WriteString(">\n")
	b.WriteString(req.Body)
	b.WriteString("\n" + CloseMarker)

	return b.String()
}
