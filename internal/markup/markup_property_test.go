//go:build property
// +build property

package markup

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/mailframe/mailframe/internal/types"
)

// TestRoundTripProperties checks parse/serialize stability over generated
// documents, including values that exercise the quoting and escaping rules.
func TestRoundTripProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	identifier := gen.RegexMatch(`^[a-z][a-zA-Z0-9]{0,11}$`)
	// Attribute values deliberately include the characters that trigger
	// escaping; frontmatter values additionally avoid edge whitespace, which
	// the format does not preserve.
	attrValue := gen.RegexMatch(`^[ -~]{0,24}$`)
	fmValue := gen.RegexMatch(`^([!-~]([ -~]{0,22}[!-~])?)?$`)

	component := gopter.CombineGens(
		identifier,
		gen.SliceOf(identifier),
		gen.SliceOf(attrValue),
	).Map(func(vals []interface{}) types.ParsedComponent {
		comp := types.ParsedComponent{Type: vals[0].(string)}
		keys := vals[1].([]string)
		values := vals[2].([]string)
		for i, key := range keys {
			if i >= len(values) {
				break
			}
			comp.Props = comp.Props.Set(key, values[i])
		}
		return comp
	})

	document := gopter.CombineGens(
		gen.SliceOf(identifier),
		gen.SliceOf(fmValue),
		gen.SliceOf(component),
	).Map(func(vals []interface{}) types.ParsedTemplate {
		var doc types.ParsedTemplate
		keys := vals[0].([]string)
		values := vals[1].([]string)
		for i, key := range keys {
			if i >= len(values) {
				break
			}
			doc.Frontmatter = doc.Frontmatter.Set(key, values[i])
		}
		doc.Components = vals[2].([]types.ParsedComponent)
		return doc
	})

	properties.Property("parse inverts serialize", prop.ForAll(
		func(doc types.ParsedTemplate) bool {
			reparsed, err := Parse(Serialize(doc))
			if err != nil {
				return false
			}
			return doc.Equal(reparsed)
		},
		document,
	))

	properties.Property("serialize is byte-stable after one cycle", prop.ForAll(
		func(doc types.ParsedTemplate) bool {
			first := Serialize(doc)
			reparsed, err := Parse(first)
			if err != nil {
				return false
			}
			return Serialize(reparsed) == first
		},
		document,
	))

	properties.TestingRun(t)
}
