// Package markup implements the template wire format: a frontmatter block
// delimited by "---" lines followed by a single root wrapper element holding
// the component elements, using XML-like key="value" attributes.
//
// Parse and Serialize are inverses. Serialization is deterministic and the
// formatting rules are fixed so that hand-authored templates survive a
// parse/serialize round trip without spurious diffs.
package markup

import "strings"

const (
	// Delimiter is the frontmatter fence line.
	Delimiter = "---"
	// RootTag is the single wrapper element around the component list.
	RootTag = "x-base"
	// ComponentPrefix is the namespace prefix of component tags; the tag
	// name minus this prefix is the component type.
	ComponentPrefix = "x-core."
	// Indent is one level of indentation in multi-line tag layouts.
	Indent = "  "
	// MarkerAttr identifies preview marker elements. Markers appear only in
	// the projected text sent to the external compiler, never in the
	// authoritative source.
	MarkerAttr = "data-preview-marker"
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"\"", "&quot;",
	"<", "&lt;",
	">", "&gt;",
)

var attrUnescaper = strings.NewReplacer(
	"&quot;", "\"",
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
)

// EscapeAttr encodes a prop value for embedding inside a double-quoted
// attribute.
func EscapeAttr(v string) string {
	return attrEscaper.Replace(v)
}

// UnescapeAttr decodes an attribute value read from source.
func UnescapeAttr(v string) string {
	return attrUnescaper.Replace(v)
}

// needsQuoting reports whether a frontmatter value must be double-quoted.
// The trigger set is fixed by the format: colons, braces, and quotes.
func needsQuoting(v string) bool {
	return strings.ContainsAny(v, ":{\"")
}

// quoteFrontmatter wraps a value in double quotes, escaping embedded quotes.
func quoteFrontmatter(v string) string {
	return "\"" + strings.ReplaceAll(v, "\"", "\\\"") + "\""
}

// unquoteFrontmatter strips a single layer of quoting if present. Unquoted
// values pass through unchanged.
func unquoteFrontmatter(v string) string {
	if len(v) >= 2 && strings.HasPrefix(v, "\"") && strings.HasSuffix(v, "\"") {
		return strings.ReplaceAll(v[1:len(v)-1], "\\\"", "\"")
	}
	return v
}

// componentType maps a component tag name to its type: the part after the
// namespace prefix, or after the last dot for foreign prefixes.
func componentType(tag string) string {
	if rest, ok := strings.CutPrefix(tag, ComponentPrefix); ok {
		return rest
	}
	if i := strings.LastIndex(tag, "."); i >= 0 {
		return tag[i+1:]
	}
	return tag
}
