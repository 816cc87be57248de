package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailframe/mailframe/internal/types"
)

func TestParseBasicTemplate(t *testing.T) {
	source := "---\ntitle: Test\n---\n\n<x-base>\n\n  <x-core.hero headline=\"Hi\" />\n\n</x-base>\n"

	doc, err := Parse(source)
	require.NoError(t, err)

	assert.Equal(t, types.Attrs{{Key: "title", Value: "Test"}}, doc.Frontmatter)
	assert.Empty(t, doc.BaseProps)
	require.Len(t, doc.Components, 1)
	assert.Equal(t, "hero", doc.Components[0].Type)
	assert.Equal(t, types.Attrs{{Key: "headline", Value: "Hi"}}, doc.Components[0].Props)
	assert.Empty(t, doc.Components[0].Content)
}

func TestParseSerializeScenario(t *testing.T) {
	// Re-serializing must reproduce an equivalent document on re-parse.
	source := "---\ntitle: Test\n---\n\n<x-base>\n\n  <x-core.hero headline=\"Hi\" />\n\n</x-base>\n"

	doc, err := Parse(source)
	require.NoError(t, err)

	out := Serialize(doc)
	assert.Equal(t, source, out)

	reparsed, err := Parse(out)
	require.NoError(t, err)
	assert.True(t, doc.Equal(reparsed))
}

func TestParseFrontmatter(t *testing.T) {
	t.Run("quoted values lose one quote layer", func(t *testing.T) {
		doc, err := Parse("---\nsubject: \"Sale: 50% off\"\n---\n<x-base>\n</x-base>\n")
		require.NoError(t, err)
		assert.Equal(t, "Sale: 50% off", doc.Frontmatter.Value("subject"))
	})

	t.Run("escaped quotes inside quoted value", func(t *testing.T) {
		doc, err := Parse("---\nsubject: \"say \\\"hi\\\"\"\n---\n<x-base>\n</x-base>\n")
		require.NoError(t, err)
		assert.Equal(t, "say \"hi\"", doc.Frontmatter.Value("subject"))
	})

	t.Run("order preserved", func(t *testing.T) {
		doc, err := Parse("---\nb: 2\na: 1\nc: 3\n---\n<x-base>\n</x-base>\n")
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a", "c"}, doc.Frontmatter.Keys())
	})

	t.Run("stray lines skipped", func(t *testing.T) {
		doc, err := Parse("---\ntitle: ok\nnonsense line\n---\n<x-base>\n</x-base>\n")
		require.NoError(t, err)
		assert.Equal(t, types.Attrs{{Key: "title", Value: "ok"}}, doc.Frontmatter)
	})
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty source", ""},
		{"no frontmatter", "<x-base>\n</x-base>\n"},
		{"unterminated frontmatter", "---\ntitle: x\n"},
		{"missing root", "---\ntitle: x\n---\n"},
		{"wrong root tag", "---\n---\n<x-wrapper>\n</x-wrapper>\n"},
		{"unterminated root", "---\n---\n<x-base>\n  <x-core.hero />\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)
			require.Error(t, err)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestParseRootAttributes(t *testing.T) {
	t.Run("inline", func(t *testing.T) {
		doc, err := Parse("---\n---\n<x-base bg=\"#ffffff\" width=\"600\">\n</x-base>\n")
		require.NoError(t, err)
		assert.Equal(t, types.Attrs{
			{Key: "bg", Value: "#ffffff"},
			{Key: "width", Value: "600"},
		}, doc.BaseProps)
	})

	t.Run("multi-line", func(t *testing.T) {
		doc, err := Parse("---\n---\n<x-base\n  bg=\"#ffffff\"\n  width=\"600\"\n  font=\"Arial\"\n>\n</x-base>\n")
		require.NoError(t, err)
		assert.Equal(t, []string{"bg", "width", "font"}, doc.BaseProps.Keys())
	})

	t.Run("self-closing root means empty document", func(t *testing.T) {
		doc, err := Parse("---\n---\n<x-base />\n")
		require.NoError(t, err)
		assert.Empty(t, doc.Components)
	})
}

func TestParseComponents(t *testing.T) {
	t.Run("multi-line attributes", func(t *testing.T) {
		source := "---\n---\n<x-base>\n  <x-core.hero\n    headline=\"Hi\"\n    subhead=\"There\"\n    bg=\"#f5f5f5\"\n  />\n</x-base>\n"
		doc, err := Parse(source)
		require.NoError(t, err)
		require.Len(t, doc.Components, 1)
		assert.Equal(t, []string{"headline", "subhead", "bg"}, doc.Components[0].Props.Keys())
	})

	t.Run("inline content", func(t *testing.T) {
		doc, err := Parse("---\n---\n<x-base>\n  <x-core.text size=\"14px\">Hello there</x-core.text>\n</x-base>\n")
		require.NoError(t, err)
		require.Len(t, doc.Components, 1)
		assert.Equal(t, "Hello there", doc.Components[0].Content)
	})

	t.Run("block content", func(t *testing.T) {
		doc, err := Parse("---\n---\n<x-base>\n  <x-core.text\n    size=\"14px\"\n    color=\"#333\"\n    align=\"left\"\n  >\nLine one\nLine two\n  </x-core.text>\n</x-base>\n")
		require.NoError(t, err)
		require.Len(t, doc.Components, 1)
		assert.Equal(t, "Line one\nLine two", doc.Components[0].Content)
	})

	t.Run("document order preserved", func(t *testing.T) {
		doc, err := Parse("---\n---\n<x-base>\n  <x-core.hero />\n  <x-core.text>hi</x-core.text>\n  <x-core.footer />\n</x-base>\n")
		require.NoError(t, err)
		require.Len(t, doc.Components, 3)
		assert.Equal(t, "hero", doc.Components[0].Type)
		assert.Equal(t, "text", doc.Components[1].Type)
		assert.Equal(t, "footer", doc.Components[2].Type)
	})

	t.Run("unknown namespace keeps trailing type", func(t *testing.T) {
		doc, err := Parse("---\n---\n<x-base>\n  <x-custom.widget a=\"1\" />\n</x-base>\n")
		require.NoError(t, err)
		require.Len(t, doc.Components, 1)
		assert.Equal(t, "widget", doc.Components[0].Type)
	})

	t.Run("escaped attribute values", func(t *testing.T) {
		doc, err := Parse("---\n---\n<x-base>\n  <x-core.text note=\"a &quot;b&quot; &amp; c\" />\n</x-base>\n")
		require.NoError(t, err)
		assert.Equal(t, "a \"b\" & c", doc.Components[0].Props.Value("note"))
	})

	t.Run("marker elements are skipped", func(t *testing.T) {
		doc, err := Parse("---\n---\n<x-base>\n  <span data-preview-marker=\"0\" hidden></span>\n  <x-core.hero />\n</x-base>\n")
		require.NoError(t, err)
		require.Len(t, doc.Components, 1)
		assert.Equal(t, "hero", doc.Components[0].Type)
	})
}

func TestSerializeLayout(t *testing.T) {
	t.Run("frontmatter quoting rule", func(t *testing.T) {
		doc := types.ParsedTemplate{
			Frontmatter: types.Attrs{
				{Key: "title", Value: "Plain"},
				{Key: "subject", Value: "Sale: now"},
				{Key: "vars", Value: "{name}"},
			},
		}
		out := Serialize(doc)
		assert.Contains(t, out, "title: Plain\n")
		assert.Contains(t, out, "subject: \"Sale: now\"\n")
		assert.Contains(t, out, "vars: \"{name}\"\n")
	})

	t.Run("root inline up to two attributes", func(t *testing.T) {
		doc := types.ParsedTemplate{
			BaseProps: types.Attrs{{Key: "bg", Value: "#fff"}, {Key: "width", Value: "600"}},
		}
		assert.Contains(t, Serialize(doc), "<x-base bg=\"#fff\" width=\"600\">")
	})

	t.Run("root multi-line above two attributes", func(t *testing.T) {
		doc := types.ParsedTemplate{
			BaseProps: types.Attrs{
				{Key: "bg", Value: "#fff"},
				{Key: "width", Value: "600"},
				{Key: "font", Value: "Arial"},
			},
		}
		out := Serialize(doc)
		assert.Contains(t, out, "<x-base\n  bg=\"#fff\"\n  width=\"600\"\n  font=\"Arial\"\n>\n")
	})

	t.Run("component layout by prop count", func(t *testing.T) {
		doc := types.ParsedTemplate{Components: []types.ParsedComponent{
			{Type: "divider", Props: types.Attrs{{Key: "color", Value: "#eee"}}},
			{Type: "hero", Props: types.Attrs{
				{Key: "headline", Value: "Hi"},
				{Key: "subhead", Value: "There"},
				{Key: "bg", Value: "#fff"},
			}},
		}}
		out := Serialize(doc)
		assert.Contains(t, out, "  <x-core.divider color=\"#eee\" />\n")
		assert.Contains(t, out, "  <x-core.hero\n    headline=\"Hi\"\n    subhead=\"There\"\n    bg=\"#fff\"\n  />\n")
	})

	t.Run("content closes with end tag", func(t *testing.T) {
		doc := types.ParsedTemplate{Components: []types.ParsedComponent{
			{Type: "text", Content: "Hello"},
		}}
		assert.Contains(t, Serialize(doc), "  <x-core.text>Hello</x-core.text>\n")
	})

	t.Run("deterministic", func(t *testing.T) {
		doc := types.ParsedTemplate{
			Frontmatter: types.Attrs{{Key: "title", Value: "T"}},
			Components:  []types.ParsedComponent{{Type: "hero"}},
		}
		assert.Equal(t, Serialize(doc), Serialize(doc))
	})
}

func TestRoundTrip(t *testing.T) {
	docs := []types.ParsedTemplate{
		{},
		{
			Frontmatter: types.Attrs{{Key: "title", Value: "Launch"}, {Key: "subject", Value: "It: begins"}},
			BaseProps:   types.Attrs{{Key: "bg", Value: "#f0f0f0"}},
			Components: []types.ParsedComponent{
				{Type: "hero", Props: types.Attrs{
					{Key: "headline", Value: "Hello & welcome"},
					{Key: "padding", Value: "48px 32px"},
					{Key: "m:padding", Value: "24px 16px"},
				}},
				{Type: "text", Props: types.Attrs{{Key: "align", Value: "center"}}, Content: "Body copy"},
				{Type: "footer", Props: types.Attrs{{Key: "company", Value: "Acme \"Co\""}}},
			},
		},
	}

	for _, doc := range docs {
		out := Serialize(doc)
		reparsed, err := Parse(out)
		require.NoError(t, err)
		assert.True(t, doc.Equal(reparsed), "round trip diverged:\n%s", out)

		// A second cycle must be byte-stable.
		assert.Equal(t, out, Serialize(reparsed))
	}
}

func TestRoundTripPreservesUnknownKeys(t *testing.T) {
	source := "---\n---\n<x-base>\n  <x-core.hero headline=\"Hi\" futureProp=\"kept\" />\n</x-base>\n"
	doc, err := Parse(source)
	require.NoError(t, err)
	assert.Equal(t, "kept", doc.Components[0].Props.Value("futureProp"))
	assert.True(t, strings.Contains(Serialize(doc), "futureProp=\"kept\""))
}
