// Package codec provides the reversible transforms between human-editable
// scalar values and normalized CSS shorthand strings: the padding/margin box
// codec, the 4-corner radius codec, and the single dimension+unit codec.
//
// Codecs are permissive by design. The underlying prop values are free-form
// strings, so a value a codec cannot interpret passes through unchanged
// rather than being rejected.
package codec

import (
	"strconv"
	"strings"
)

// Box holds the four sides of a padding/margin value, each a raw CSS token.
type Box struct {
	Top    string
	Right  string
	Bottom string
	Left   string
}

// Corners holds the four corners of a border-radius value in clockwise
// order starting at the top left.
type Corners struct {
	TopLeft     string
	TopRight    string
	BottomRight string
	BottomLeft  string
}

// EnsureUnit normalizes a scalar dimension: a trailing "px" is trimmed, and
// if the remainder is purely numeric "px" is reattached, so "50" and "50px"
// both become "50px" and "0" becomes "0px". Non-numeric remainders such as
// percentages pass through unchanged. Empty input yields empty output.
func EnsureUnit(v string) string {
	if v == "" {
		return ""
	}
	trimmed := strings.TrimSuffix(v, "px")
	if isNumeric(trimmed) {
		return trimmed + "px"
	}
	return v
}

// StripUnit removes a trailing "px" (case-insensitive) if present, else
// returns the input unchanged. Display-only: stored values keep their unit.
func StripUnit(v string) string {
	if len(v) >= 2 && strings.EqualFold(v[len(v)-2:], "px") {
		return v[:len(v)-2]
	}
	return v
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// ParsePadding expands a CSS box shorthand into its four sides per the
// standard 1/2/3/4-token rules. Empty input yields all-empty sides.
func ParsePadding(value string) Box {
	t, r, b, l := expandShorthand(value)
	return Box{Top: t, Right: r, Bottom: b, Left: l}
}

// SerializePadding collapses four sides into the shortest CSS shorthand
// reproducing the same values. Each side is unit-normalized first, with
// "0px" standing in for an empty side. All-empty input serializes to the
// empty string, meaning "unset" rather than "zero".
func SerializePadding(sides Box) string {
	return collapseShorthand(sides.Top, sides.Right, sides.Bottom, sides.Left)
}

// ParseRadius mirrors ParsePadding over the corner set, clockwise from the
// top left.
func ParseRadius(value string) Corners {
	tl, tr, br, bl := expandShorthand(value)
	return Corners{TopLeft: tl, TopRight: tr, BottomRight: br, BottomLeft: bl}
}

// SerializeRadius mirrors SerializePadding over the corner set.
func SerializeRadius(c Corners) string {
	return collapseShorthand(c.TopLeft, c.TopRight, c.BottomRight, c.BottomLeft)
}

// expandShorthand applies the CSS 1/2/3/4-token expansion. The positional
// meaning is top/right/bottom/left for boxes and tl/tr/br/bl for corners;
// both follow the same pairing rules.
func expandShorthand(value string) (a, b, c, d string) {
	tokens := strings.Fields(value)
	switch len(tokens) {
	case 0:
		return "", "", "", ""
	case 1:
		return tokens[0], tokens[0], tokens[0], tokens[0]
	case 2:
		return tokens[0], tokens[1], tokens[0], tokens[1]
	case 3:
		return tokens[0], tokens[1], tokens[2], tokens[1]
	default:
		return tokens[0], tokens[1], tokens[2], tokens[3]
	}
}

func collapseShorthand(a, b, c, d string) string {
	if a == "" && b == "" && c == "" && d == "" {
		return ""
	}
	a, b, c, d = normalizeSide(a), normalizeSide(b), normalizeSide(c), normalizeSide(d)
	switch {
	case a == b && b == c && c == d:
		return a
	case a == c && b == d:
		return a + " " + b
	case b == d:
		return a + " " + b + " " + c
	default:
		return a + " " + b + " " + c + " " + d
	}
}

func normalizeSide(v string) string {
	if v == "" {
		return "0px"
	}
	return EnsureUnit(v)
}
