// Package patcher implements the live style patcher: given a component
// index and a CSS property, it rewrites the rendered preview HTML in place,
// bypassing a full recompile. It is purely an optimization for small,
// continuous edits (a color-picker drag); the authoritative prop value is
// always also written into the document, and the next full compile
// reconciles any divergence.
package patcher

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/mailframe/mailframe/internal/projector"
)

// voidTags never push onto the open-element stack.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Patch overwrites the value of cssProperty on every element tagged with
// componentIndex whose inline style already declares that property. It
// never adds the property to an element that lacked it; when a component's
// compiled markup has several elements that could plausibly own the
// property, adding it would style the wrong one.
//
// If no tagged element declares the property, the patch falls back to the
// first direct child cell of the outermost tagged element, covering the
// common "background color of the section" case. The fallback is a known
// approximation: deeply nested section markup can still style the wrong
// cell, and a recompile converges the preview regardless.
//
// Returns the patched HTML and whether anything changed.
func Patch(preview string, componentIndex int, cssProperty, value string) (string, bool) {
	plan := analyze(preview, componentIndex, cssProperty)
	if len(plan.declared) == 0 && plan.fallbackCell < 0 {
		return preview, false
	}
	return rewrite(preview, plan, cssProperty, value), true
}

// patchPlan records which start-tag ordinals the rewrite pass touches.
type patchPlan struct {
	// declared holds ordinals of tagged elements whose style already
	// declares the property
	declared map[int]bool
	// fallbackCell is the ordinal of the first direct child td of the
	// outermost tagged element, -1 if absent; used only when declared is
	// empty
	fallbackCell int
}

func analyze(preview string, componentIndex int, cssProperty string) patchPlan {
	plan := patchPlan{declared: make(map[int]bool), fallbackCell: -1}
	target := strconv.Itoa(componentIndex)

	z := html.NewTokenizer(strings.NewReader(preview))
	ordinal := -1
	outermostDepth := -1 // stack depth of the outermost tagged element
	var stack []string

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			ordinal++
			name, hasAttr := z.TagName()
			tag := string(name)

			var idx, style string
			if hasAttr {
				for {
					k, v, more := z.TagAttr()
					switch string(k) {
					case projector.IndexAttr:
						idx = string(v)
					case "style":
						style = string(v)
					}
					if !more {
						break
					}
				}
			}

			if idx == target {
				if hasDeclaration(style, cssProperty) {
					plan.declared[ordinal] = true
				}
				if outermostDepth < 0 {
					outermostDepth = len(stack)
				}
			}
			if tag == "td" && plan.fallbackCell < 0 && outermostDepth >= 0 &&
				directChildOfOutermost(stack, outermostDepth) {
				plan.fallbackCell = ordinal
			}

			if tt == html.StartTagToken && !voidTags[tag] {
				stack = append(stack, tag)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i] == tag {
					if outermostDepth >= 0 && i <= outermostDepth {
						outermostDepth = -1 // left the outermost tagged element
					}
					stack = stack[:i]
					break
				}
			}
		}
	}

	if len(plan.declared) > 0 {
		plan.fallbackCell = -1
	}
	return plan
}

// directChildOfOutermost reports whether the element about to be pushed is
// an immediate child of the outermost tagged element. HTML table structure
// inserts tbody/tr between table and td in parsed DOMs, but compiled email
// HTML addresses cells one row down, so one intervening tr (or tbody+tr)
// still counts as direct for the purposes of the fallback.
func directChildOfOutermost(stack []string, outermostDepth int) bool {
	between := stack[outermostDepth+1:]
	if len(between) > 2 {
		return false
	}
	for _, tag := range between {
		if tag != "tr" && tag != "tbody" {
			return false
		}
	}
	return true
}

func rewrite(preview string, plan patchPlan, cssProperty, value string) string {
	z := html.NewTokenizer(strings.NewReader(preview))

	var out bytes.Buffer
	out.Grow(len(preview))
	ordinal := -1

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := z.Raw()

		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			ordinal++
			if plan.declared[ordinal] || ordinal == plan.fallbackCell {
				out.Write(rebuildTag(z, raw, tt, cssProperty, value))
				continue
			}
		}
		out.Write(raw)
	}
	return out.String()
}

// rebuildTag re-emits a start tag with the property set in its style
// attribute, preserving every other attribute as tokenized.
func rebuildTag(z *html.Tokenizer, raw []byte, tt html.TokenType, cssProperty, value string) []byte {
	name, hasAttr := z.TagName()

	var b bytes.Buffer
	b.WriteByte('<')
	b.Write(name)

	styleSeen := false
	if hasAttr {
		for {
			k, v, more := z.TagAttr()
			key := string(k)
			val := string(v)
			if key == "style" {
				styleSeen = true
				val = setDeclaration(val, cssProperty, value)
			}
			b.WriteByte(' ')
			b.WriteString(key)
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(val))
			b.WriteByte('"')
			if !more {
				break
			}
		}
	}
	if !styleSeen {
		b.WriteString(` style="`)
		b.WriteString(html.EscapeString(cssProperty + ": " + value + ";"))
		b.WriteByte('"')
	}

	if tt == html.SelfClosingTagToken {
		b.WriteString(" />")
	} else {
		b.WriteByte('>')
	}
	return b.Bytes()
}

// hasDeclaration reports whether an inline style declares the property.
func hasDeclaration(style, property string) bool {
	for _, decl := range strings.Split(style, ";") {
		name, _, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(name), property) {
			return true
		}
	}
	return false
}

// setDeclaration overwrites the property's value in an inline style,
// appending the declaration if it is absent. Declaration order is kept.
func setDeclaration(style, property, value string) string {
	decls := strings.Split(style, ";")
	var parts []string
	replaced := false
	for _, decl := range decls {
		name, _, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(name), property) {
			parts = append(parts, strings.TrimSpace(name)+": "+value)
			replaced = true
			continue
		}
		if strings.TrimSpace(decl) == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(decl))
	}
	if !replaced {
		parts = append(parts, property+": "+value)
	}
	return strings.Join(parts, "; ") + ";"
}
