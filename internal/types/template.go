// Package types provides the shared document-model type definitions used
// throughout mailframe. This package contains plain data types to avoid
// circular dependencies between the parser, serializer, registry, and editor.
package types

// Attr is a single key/value pair inside an ordered attribute list.
type Attr struct {
	Key   string
	Value string
}

// Attrs is an ordered string-to-string map. Source order is significant:
// the serializer re-emits pairs in the order the parser collected them, which
// is what keeps hand-authored templates round-trip stable.
type Attrs []Attr

// Get returns the value for key and whether the key is present.
func (a Attrs) Get(key string) (string, bool) {
	for _, kv := range a {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Value returns the value for key, or the empty string if absent.
func (a Attrs) Value(key string) string {
	v, _ := a.Get(key)
	return v
}

// Has reports whether key is present, regardless of its value.
func (a Attrs) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Set replaces the value for key in place if present, otherwise appends the
// pair. Returns the updated list (append may reallocate).
func (a Attrs) Set(key, value string) Attrs {
	for i, kv := range a {
		if kv.Key == key {
			a[i].Value = value
			return a
		}
	}
	return append(a, Attr{Key: key, Value: value})
}

// Delete removes key if present and returns the updated list.
func (a Attrs) Delete(key string) Attrs {
	for i, kv := range a {
		if kv.Key == key {
			return append(a[:i], a[i+1:]...)
		}
	}
	return a
}

// Clone returns an independent copy of the list.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	copy(out, a)
	return out
}

// Keys returns the keys in order.
func (a Attrs) Keys() []string {
	keys := make([]string, len(a))
	for i, kv := range a {
		keys[i] = kv.Key
	}
	return keys
}

// ParsedComponent is one component element of a template document.
type ParsedComponent struct {
	// Type identifies the component schema (tag name minus its namespace
	// prefix, e.g. "hero" for <x-core.hero>)
	Type string
	// Props holds every attribute as authored, in source order. All values
	// are strings; unknown keys are preserved verbatim
	Props Attrs
	// Content is the literal inner text for components that wrap content,
	// empty for self-closing components
	Content string
}

// Clone returns a deep copy of the component.
func (c ParsedComponent) Clone() ParsedComponent {
	return ParsedComponent{Type: c.Type, Props: c.Props.Clone(), Content: c.Content}
}

// ParsedTemplate is the in-memory document: frontmatter metadata, the root
// wrapper element's attributes, and the ordered component list. A component's
// index in Components is its identity for the editing session; structural
// edits remap external index-keyed state explicitly (see internal/editor).
type ParsedTemplate struct {
	// Frontmatter holds the leading key/value metadata block, in source order
	Frontmatter Attrs
	// BaseProps holds the attributes on the single root wrapper element
	BaseProps Attrs
	// Components holds the top-level component elements in document order
	Components []ParsedComponent
}

// Clone returns a deep copy of the document. Every editor mutation operates
// on a clone and replaces the session's document wholesale; documents are
// never mutated in place.
func (t ParsedTemplate) Clone() ParsedTemplate {
	out := ParsedTemplate{
		Frontmatter: t.Frontmatter.Clone(),
		BaseProps:   t.BaseProps.Clone(),
	}
	if t.Components != nil {
		out.Components = make([]ParsedComponent, len(t.Components))
		for i, c := range t.Components {
			out.Components[i] = c.Clone()
		}
	}
	return out
}

// Equal reports structural equality of two documents: same frontmatter
// pairs, same base props, same ordered component list.
func (t ParsedTemplate) Equal(other ParsedTemplate) bool {
	if !attrsEqual(t.Frontmatter, other.Frontmatter) || !attrsEqual(t.BaseProps, other.BaseProps) {
		return false
	}
	if len(t.Components) != len(other.Components) {
		return false
	}
	for i, c := range t.Components {
		o := other.Components[i]
		if c.Type != o.Type || c.Content != o.Content || !attrsEqual(c.Props, o.Props) {
			return false
		}
	}
	return true
}

func attrsEqual(a, b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MobilePrefix is the key prefix under which responsive (mobile-width)
// overrides of a prop are stored, e.g. "m:padding" overriding "padding".
const MobilePrefix = "m:"
