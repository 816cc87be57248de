package registry

import (
	"strconv"
	"strings"

	"github.com/mailframe/mailframe/internal/types"
)

// IndexPlaceholder is the token inside a repeatable group's prop-key
// templates that is replaced with the 1-based instance number. A group whose
// templates contain it is "numbered"; otherwise every template is an
// independent optional slot.
const IndexPlaceholder = "{n}"

// ResolveProp resolves a prop value against the component's stored props and
// the schema defaults, honoring the active preview width:
//
//  1. responsive prop on mobile: the "m:"-prefixed override wins when set
//     and non-empty
//  2. the bare key's value when set and non-empty
//  3. the schema default
//  4. otherwise empty ("unset", deferring to the compiler's own default)
func (r *SchemaRegistry) ResolveProp(schema *types.ComponentSchema, props types.Attrs, key string, mobile bool) string {
	var def *types.PropDefinition
	if schema != nil {
		def = findProp(schema, key)
	}
	if mobile && def != nil && def.Responsive {
		if v := props.Value(types.MobilePrefix + key); v != "" {
			return v
		}
	}
	if v := props.Value(key); v != "" {
		return v
	}
	if def != nil {
		return def.Default
	}
	return ""
}

// Visible reports whether a prop should be shown in the editor, applying the
// conditionalOn gate: the gating prop must resolve true when it is a toggle,
// or non-blank for any other type.
func (r *SchemaRegistry) Visible(schema *types.ComponentSchema, props types.Attrs, def types.PropDefinition, mobile bool) bool {
	if def.ConditionalOn == "" {
		return true
	}
	gate := findProp(schema, def.ConditionalOn)
	value := r.ResolveProp(schema, props, def.ConditionalOn, mobile)
	if gate != nil && gate.Type == types.PropToggle {
		return toggleTrue(value)
	}
	return strings.TrimSpace(value) != ""
}

// Numbered reports whether the group's key templates carry the index
// placeholder.
func Numbered(group types.RepeatableGroup) bool {
	for _, tmpl := range group.PropsPerItem {
		if strings.Contains(tmpl, IndexPlaceholder) {
			return true
		}
	}
	return false
}

// InstanceKeys expands the group's key templates for the given 1-based
// instance number. For non-numbered groups the templates are returned as-is.
func InstanceKeys(group types.RepeatableGroup, n int) []string {
	keys := make([]string, len(group.PropsPerItem))
	for i, tmpl := range group.PropsPerItem {
		keys[i] = strings.ReplaceAll(tmpl, IndexPlaceholder, strconv.Itoa(n))
	}
	return keys
}

// ActiveInstances returns the number of instances to show for a numbered
// group: the highest instance whose generated keys carry any non-empty
// value, with a floor of one so an empty group still offers a blank first
// entry. For non-numbered groups it returns the count of active slots.
func ActiveInstances(group types.RepeatableGroup, props types.Attrs) int {
	if !Numbered(group) {
		active := 0
		for _, key := range group.PropsPerItem {
			if props.Value(key) != "" {
				active++
			}
		}
		return active
	}
	highest := 1
	for _, tmpl := range group.PropsPerItem {
		prefix, suffix, ok := strings.Cut(tmpl, IndexPlaceholder)
		if !ok {
			continue
		}
		for _, kv := range props {
			if kv.Value == "" {
				continue
			}
			n, ok := instanceNumber(kv.Key, prefix, suffix)
			if ok && n > highest {
				highest = n
			}
		}
	}
	return highest
}

// instanceNumber extracts the instance index from a stored prop key matching
// a prefix{n}suffix template.
func instanceNumber(key, prefix, suffix string) (int, bool) {
	if len(key) <= len(prefix)+len(suffix) ||
		!strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, suffix) {
		return 0, false
	}
	n, err := strconv.Atoi(key[len(prefix) : len(key)-len(suffix)])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// SlotActive reports whether a non-numbered group slot is active, i.e. has a
// non-empty stored value. Inactive slots are offered through an "add"
// affordance instead of being rendered as fields.
func SlotActive(props types.Attrs, key string) bool {
	return props.Value(key) != ""
}

func findProp(schema *types.ComponentSchema, key string) *types.PropDefinition {
	if schema == nil {
		return nil
	}
	for i := range schema.Props {
		if schema.Props[i].Key == key {
			return &schema.Props[i]
		}
	}
	return nil
}

func toggleTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}
