package projector

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/mailframe/mailframe/internal/markup"
)

// RecoverIndices post-processes compiled HTML: the span of output between
// one marker element and the next belongs to that marker's component, and
// every row-level tag within the span is rewritten to carry the component
// index. The marker elements themselves are deleted.
//
// If the compiler stripped the markers, the HTML is returned unchanged and
// click-to-select degrades to unavailable rather than corrupting the output.
func RecoverIndices(compiled string) string {
	z := html.NewTokenizer(strings.NewReader(compiled))

	var out bytes.Buffer
	out.Grow(len(compiled))

	sawMarker := false
	current := "" // component index owning the current span, "" before the first marker
	swallowMarkerClose := false

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := z.Raw()

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)

			if tag == "span" && hasAttr {
				if idx, ok := tagAttrValue(z, markup.MarkerAttr); ok {
					sawMarker = true
					if idx == endMarker {
						current = ""
					} else {
						current = idx
					}
					swallowMarkerClose = tt == html.StartTagToken
					continue // delete the marker itself
				}
			}

			if current != "" && tt == html.StartTagToken && rowLevelTags[tag] {
				out.Write(injectAttr(raw, IndexAttr, current))
				continue
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			if swallowMarkerClose && string(name) == "span" {
				swallowMarkerClose = false
				continue
			}
		}

		out.Write(raw)
	}

	if !sawMarker {
		return compiled
	}
	return out.String()
}

// tagAttrValue drains the current tag's attributes looking for key. It must
// be called at most once per tag since TagAttr consumes tokenizer state.
func tagAttrValue(z *html.Tokenizer, key string) (string, bool) {
	for {
		k, v, more := z.TagAttr()
		if string(k) == key {
			return string(v), true
		}
		if !more {
			return "", false
		}
	}
}

// injectAttr rewrites a raw start tag, inserting key="value" before the
// closing bracket. Everything else in the tag is left byte-for-byte intact.
func injectAttr(raw []byte, key, value string) []byte {
	end := bytes.LastIndexByte(raw, '>')
	if end < 0 {
		return raw
	}
	insert := end
	if insert > 0 && raw[insert-1] == '/' {
		insert--
	}

	var b bytes.Buffer
	b.Grow(len(raw) + len(key) + len(value) + 4)
	b.Write(raw[:insert])
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteString(`="`)
	b.WriteString(value)
	b.WriteString(`"`)
	b.Write(raw[insert:])
	return b.Bytes()
}
