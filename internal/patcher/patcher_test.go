package patcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const preview = `<html><body>
<table data-component-index="0" style="background-color: #ffffff; width: 600px;"><tr data-component-index="0"><td style="padding: 24px;">Hero</td></tr></table>
<table data-component-index="1"><tr data-component-index="1"><td style="padding: 16px; color: #333333;">Body</td></tr></table>
</body></html>`

func TestPatchOverwritesExistingDeclaration(t *testing.T) {
	out, changed := Patch(preview, 0, "background-color", "#ff0000")
	require.True(t, changed)

	assert.Contains(t, out, "background-color: #ff0000; width: 600px;")
	// Other components untouched.
	assert.Contains(t, out, `<table data-component-index="1">`)
}

func TestPatchNeverAddsToUndeclaredElements(t *testing.T) {
	// Component 0's table declares background-color but its tr does not;
	// only the declaring element is rewritten. Adding the property to the
	// tr could style the wrong element.
	out, changed := Patch(preview, 0, "background-color", "#ff0000")
	require.True(t, changed)

	assert.Contains(t, out, `<tr data-component-index="0">`)
	assert.Equal(t, 1, strings.Count(out, "#ff0000"))
}

func TestPatchFallbackTargetsFirstCell(t *testing.T) {
	// Nothing in component 1 declares background-color, so the patch falls
	// back to the first direct child cell of the outermost tagged element.
	out, changed := Patch(preview, 1, "background-color", "#fafafa")
	require.True(t, changed)

	assert.Contains(t, out, `<td style="padding: 16px; color: #333333; background-color: #fafafa;">Body</td>`)
	// Component 0's cell is not the fallback target.
	assert.Contains(t, out, `<td style="padding: 24px;">Hero</td>`)
}

func TestPatchUnknownIndexIsNoop(t *testing.T) {
	out, changed := Patch(preview, 7, "background-color", "#fafafa")
	assert.False(t, changed)
	assert.Equal(t, preview, out)
}

func TestPatchIsIdempotent(t *testing.T) {
	once, changed := Patch(preview, 0, "background-color", "#ff0000")
	require.True(t, changed)
	twice, changed := Patch(once, 0, "background-color", "#ff0000")
	require.True(t, changed)
	assert.Equal(t, once, twice)
}

func TestPatchAllDeclaringElements(t *testing.T) {
	multi := `<table data-component-index="0" style="color: #111;"><tr>` +
		`<td style="color: #111;" data-component-index="0">a</td>` +
		`</tr></table>`
	out, changed := Patch(multi, 0, "color", "#222")
	require.True(t, changed)
	assert.Equal(t, 2, strings.Count(out, "color: #222;"))
}

func TestSetDeclaration(t *testing.T) {
	tests := []struct {
		name     string
		style    string
		expected string
	}{
		{"replace keeps order", "padding: 4px; color: red; margin: 0", "padding: 4px; color: blue; margin: 0;"},
		{"append when missing", "padding: 4px", "padding: 4px; color: blue;"},
		{"case-insensitive match", "COLOR: red", "COLOR: blue;"},
		{"empty style", "", "color: blue;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, setDeclaration(tt.style, "color", "blue"))
		})
	}
}

func TestHasDeclaration(t *testing.T) {
	assert.True(t, hasDeclaration("background-color: #fff;", "background-color"))
	assert.True(t, hasDeclaration("padding:0; Background-Color:#fff", "background-color"))
	assert.False(t, hasDeclaration("background: #fff;", "background-color"))
	assert.False(t, hasDeclaration("", "background-color"))
}
