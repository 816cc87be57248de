package markup

import (
	"fmt"
	"strings"

	"github.com/mailframe/mailframe/internal/types"
)

// ParseError reports a structural problem that prevented parsing. Callers
// are expected to keep their previous good document when they receive one;
// a transient invalid state mid-edit must never destroy user input.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Message)
}

func parseErrorf(line int, format string, args ...interface{}) error {
	return &ParseError{Line: line + 1, Message: fmt.Sprintf(format, args...)}
}

// Parse turns template source text into a document. Recoverably malformed
// input (stray lines, unparseable attribute tokens) is skipped; only a
// missing frontmatter block or root element is an error. Preview marker
// elements, which exist only in the ephemeral text sent to the compiler,
// are skipped if present.
func Parse(source string) (types.ParsedTemplate, error) {
	var doc types.ParsedTemplate

	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")

	i := 0
	if i >= len(lines) || strings.TrimSpace(lines[i]) != Delimiter {
		return doc, parseErrorf(i, "source must begin with a %q frontmatter delimiter", Delimiter)
	}
	i++

	// Frontmatter: key: value lines up to the closing delimiter.
	closed := false
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == Delimiter {
			closed = true
			i++
			break
		}
		if line == "" {
			continue
		}
		colon := strings.Index(line, ":")
		if colon < 0 {
			continue // stray line, recoverable
		}
		key := strings.TrimSpace(line[:colon])
		value := unquoteFrontmatter(strings.TrimSpace(line[colon+1:]))
		doc.Frontmatter = doc.Frontmatter.Set(key, value)
	}
	if !closed {
		return doc, parseErrorf(len(lines)-1, "unterminated frontmatter block")
	}

	// Root wrapper element.
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) {
		return doc, parseErrorf(len(lines)-1, "missing root element")
	}
	root, next, err := parseTagHeader(lines, i)
	if err != nil {
		return doc, err
	}
	if root.name != RootTag {
		return doc, parseErrorf(i, "expected root element <%s>, found <%s>", RootTag, root.name)
	}
	doc.BaseProps = root.attrs
	i = next
	if root.selfClosing {
		return doc, nil
	}

	// Component elements inside the root body.
	rootClose := "</" + RootTag + ">"
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" || !strings.HasPrefix(line, "<") {
			i++ // blank or stray text between components
			continue
		}
		if line == rootClose {
			return doc, nil
		}
		if strings.HasPrefix(line, "</") {
			i++ // unmatched close tag, recoverable
			continue
		}
		comp, next, err := parseComponent(lines, i)
		if err != nil {
			return doc, err
		}
		i = next
		// Markers exist only in the ephemeral projected text sent to the
		// compiler, but must be skippable if that variant is ever re-read.
		if comp.Props.Has(MarkerAttr) {
			continue
		}
		doc.Components = append(doc.Components, comp)
	}
	return doc, parseErrorf(len(lines)-1, "missing %s", rootClose)
}

// tagHeader is the parsed opening of an element: its name, attributes, and
// whether the tag closed itself. remainder holds any same-line text after
// an inline ">".
type tagHeader struct {
	name        string
	attrs       types.Attrs
	selfClosing bool
	remainder   string
}

// parseTagHeader reads an element opening starting at lines[i], in either
// inline form (<name a="1">) or multi-line form (<name, one attribute per
// line, closed by a bare ">" or "/>"). Returns the next line index.
func parseTagHeader(lines []string, i int) (tagHeader, int, error) {
	var h tagHeader

	line := strings.TrimSpace(lines[i])
	if !strings.HasPrefix(line, "<") {
		return h, i, parseErrorf(i, "expected element, found %q", line)
	}
	rest := line[1:]

	nameEnd := strings.IndexAny(rest, " \t>/")
	if nameEnd < 0 {
		// Tag name alone: attributes continue on following lines.
		h.name = rest
		return parseMultilineAttrs(h, lines, i+1)
	}
	h.name = rest[:nameEnd]
	rest = rest[nameEnd:]

	// Attribute values are entity-escaped, so a raw ">" terminates the tag.
	if gt := strings.Index(rest, ">"); gt >= 0 {
		attrText := rest[:gt]
		if strings.HasSuffix(strings.TrimSpace(attrText), "/") {
			h.selfClosing = true
			attrText = strings.TrimSuffix(strings.TrimSpace(attrText), "/")
		}
		h.attrs = parseAttrs(attrText)
		h.remainder = rest[gt+1:]
		return h, i + 1, nil
	}

	// Opening line carried attributes but no terminator.
	h.attrs = parseAttrs(rest)
	return parseMultilineAttrs(h, lines, i+1)
}

func parseMultilineAttrs(h tagHeader, lines []string, i int) (tagHeader, int, error) {
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch line {
		case "":
			continue
		case ">":
			return h, i + 1, nil
		case "/>":
			h.selfClosing = true
			return h, i + 1, nil
		}
		if strings.HasPrefix(line, "<") {
			return h, i, parseErrorf(i, "unterminated <%s> element", h.name)
		}
		for _, kv := range parseAttrs(line) {
			h.attrs = h.attrs.Set(kv.Key, kv.Value)
		}
	}
	return h, i, parseErrorf(len(lines)-1, "unterminated <%s> element", h.name)
}

// parseComponent reads one complete component element starting at lines[i],
// including literal inner content when the element is not self-closing.
func parseComponent(lines []string, i int) (types.ParsedComponent, int, error) {
	var comp types.ParsedComponent

	h, next, err := parseTagHeader(lines, i)
	if err != nil {
		return comp, i, err
	}
	comp.Type = componentType(h.name)
	comp.Props = h.attrs
	if h.selfClosing {
		return comp, next, nil
	}

	closeTag := "</" + h.name + ">"

	// Inline content closed on the same line.
	if idx := strings.Index(h.remainder, closeTag); idx >= 0 {
		comp.Content = strings.TrimSpace(h.remainder[:idx])
		return comp, next, nil
	}

	var content []string
	if strings.TrimSpace(h.remainder) != "" {
		content = append(content, h.remainder)
	}
	for ; next < len(lines); next++ {
		if strings.TrimSpace(lines[next]) == closeTag {
			comp.Content = strings.TrimSpace(strings.Join(content, "\n"))
			return comp, next + 1, nil
		}
		content = append(content, lines[next])
	}
	return comp, next, parseErrorf(len(lines)-1, "missing %s", closeTag)
}

// parseAttrs scans key="value" pairs out of a tag's attribute text.
// Tokens that do not follow the pair form are skipped rather than failing
// the parse; bare flag attributes are kept with an empty value.
func parseAttrs(s string) types.Attrs {
	var attrs types.Attrs
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			break
		}
		start := i
		for i < len(s) && s[i] != '=' && s[i] != ' ' && s[i] != '\t' {
			i++
		}
		key := s[start:i]
		if key == "" {
			i++
			continue
		}
		if i >= len(s) || s[i] != '=' {
			attrs = attrs.Set(key, "") // bare flag attribute
			continue
		}
		i++ // consume '='
		if i >= len(s) || s[i] != '"' {
			// Unquoted value: read to next whitespace.
			start = i
			for i < len(s) && s[i] != ' ' && s[i] != '\t' {
				i++
			}
			attrs = attrs.Set(key, UnescapeAttr(s[start:i]))
			continue
		}
		i++ // consume opening quote
		start = i
		for i < len(s) && s[i] != '"' {
			i++
		}
		attrs = attrs.Set(key, UnescapeAttr(s[start:i]))
		if i < len(s) {
			i++ // consume closing quote
		}
	}
	return attrs
}
