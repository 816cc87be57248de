// Package projector implements the preview synchronization protocol's two
// halves: projecting the document into compiler input annotated with
// invisible per-component marker elements, and recovering those markers from
// the compiled HTML to tag rendered markup with its originating component
// index.
//
// The external compiler is a black box. Recovery relies only on a textual
// invariant of its output: literal elements survive compilation, unlike
// HTML comments, which some compilers strip.
package projector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mailframe/mailframe/internal/markup"
	"github.com/mailframe/mailframe/internal/types"
)

const (
	// IndexAttr is written onto row-level tags of the compiled output to
	// address them back to their source component.
	IndexAttr = "data-component-index"
	// endMarker terminates the last component's span. It is only a
	// boundary: always deleted, never attributed.
	endMarker = "end"
)

// rowLevelTags are the output tags that receive the component index during
// recovery. Email compilers emit one wrapper table/row pair per section;
// tagging both lets the style patcher find the outermost element.
var rowLevelTags = map[string]bool{
	"table": true,
	"tr":    true,
}

// Project serializes the document for compilation, inserting a marker
// element before each component and a terminal end marker after the last.
// Components whose index is in hidden are omitted entirely; they are not
// sent to the compiler at all.
func Project(doc types.ParsedTemplate, hidden map[int]bool) string {
	head, tail := markup.SerializeEnvelope(doc)

	var b strings.Builder
	b.WriteString(head)
	for i, comp := range doc.Components {
		if hidden[i] {
			continue
		}
		b.WriteByte('\n')
		b.WriteString(markerElement(strconv.Itoa(i)))
		b.WriteString(markup.SerializeComponent(comp))
	}
	b.WriteByte('\n')
	b.WriteString(markerElement(endMarker))
	b.WriteString(tail)
	return b.String()
}

func markerElement(value string) string {
	return fmt.Sprintf("%s<span %s=%q hidden></span>\n", markup.Indent, markup.MarkerAttr, value)
}
