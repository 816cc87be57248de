package markup

import (
	"strings"

	"github.com/mailframe/mailframe/internal/types"
)

// inlineAttrLimit is the attribute count up to which a tag is emitted on a
// single line; above it, one attribute goes per indented line.
const inlineAttrLimit = 2

// Serialize renders a document back to source text. Output is deterministic
// and follows the fixed layout rules: frontmatter values are quoted only
// when they contain ":", "{" or a quote; tags with at most two attributes
// stay inline; components are separated by a cosmetic blank line.
func Serialize(doc types.ParsedTemplate) string {
	head, tail := SerializeEnvelope(doc)

	var b strings.Builder
	b.WriteString(head)
	for _, comp := range doc.Components {
		b.WriteByte('\n')
		writeComponent(&b, comp)
	}
	b.WriteString(tail)
	return b.String()
}

// SerializeEnvelope renders the document's frame around the component list:
// the frontmatter block plus the root opening tag, and the root closing tag.
// The preview projector uses this to interleave marker elements between
// components without duplicating the layout rules.
func SerializeEnvelope(doc types.ParsedTemplate) (head, tail string) {
	var b strings.Builder

	b.WriteString(Delimiter)
	b.WriteByte('\n')
	for _, kv := range doc.Frontmatter {
		b.WriteString(kv.Key)
		b.WriteString(": ")
		if needsQuoting(kv.Value) {
			b.WriteString(quoteFrontmatter(kv.Value))
		} else {
			b.WriteString(kv.Value)
		}
		b.WriteByte('\n')
	}
	b.WriteString(Delimiter)
	b.WriteString("\n\n")

	writeOpenTag(&b, RootTag, doc.BaseProps, "")
	b.WriteByte('\n')

	return b.String(), "\n</" + RootTag + ">\n"
}

// SerializeComponent renders a single component element with the given
// indentation, without the surrounding document. The projector uses this to
// interleave marker elements between components.
func SerializeComponent(comp types.ParsedComponent) string {
	var b strings.Builder
	writeComponent(&b, comp)
	return b.String()
}

func writeComponent(b *strings.Builder, comp types.ParsedComponent) {
	tag := ComponentPrefix + comp.Type
	// Multi-line content forces the multi-line layout regardless of the
	// attribute count.
	inline := len(comp.Props) <= inlineAttrLimit && !strings.Contains(comp.Content, "\n")

	if inline {
		b.WriteString(Indent)
		b.WriteByte('<')
		b.WriteString(tag)
		writeInlineAttrs(b, comp.Props)
		if comp.Content == "" {
			b.WriteString(" />\n")
			return
		}
		b.WriteByte('>')
		b.WriteString(comp.Content)
		b.WriteString("</")
		b.WriteString(tag)
		b.WriteString(">\n")
		return
	}

	b.WriteString(Indent)
	b.WriteByte('<')
	b.WriteString(tag)
	b.WriteByte('\n')
	for _, kv := range comp.Props {
		b.WriteString(Indent)
		b.WriteString(Indent)
		writeAttr(b, kv)
		b.WriteByte('\n')
	}
	if comp.Content == "" {
		b.WriteString(Indent)
		b.WriteString("/>\n")
		return
	}
	b.WriteString(Indent)
	b.WriteString(">\n")
	b.WriteString(comp.Content)
	b.WriteByte('\n')
	b.WriteString(Indent)
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">\n")
}

// writeOpenTag emits an element opening: inline when the attribute count
// allows it, otherwise the tag name alone, one attribute per indented line,
// then a bare ">".
func writeOpenTag(b *strings.Builder, tag string, attrs types.Attrs, indent string) {
	b.WriteString(indent)
	b.WriteByte('<')
	b.WriteString(tag)
	if len(attrs) <= inlineAttrLimit {
		writeInlineAttrs(b, attrs)
		b.WriteByte('>')
		return
	}
	b.WriteByte('\n')
	for _, kv := range attrs {
		b.WriteString(indent)
		b.WriteString(Indent)
		writeAttr(b, kv)
		b.WriteByte('\n')
	}
	b.WriteString(indent)
	b.WriteByte('>')
}

func writeInlineAttrs(b *strings.Builder, attrs types.Attrs) {
	for _, kv := range attrs {
		b.WriteByte(' ')
		writeAttr(b, kv)
	}
}

func writeAttr(b *strings.Builder, kv types.Attr) {
	b.WriteString(kv.Key)
	b.WriteString("=\"")
	b.WriteString(EscapeAttr(kv.Value))
	b.WriteByte('"')
}
