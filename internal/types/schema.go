package types

// PropType enumerates the editor field kinds a prop can declare.
type PropType string

const (
	PropText     PropType = "text"
	PropTextarea PropType = "textarea"
	PropNumber   PropType = "number"
	PropColor    PropType = "color"
	PropSelect   PropType = "select"
	PropToggle   PropType = "toggle"
	PropPadding  PropType = "padding"
	PropRadius   PropType = "radius"
	PropUnit     PropType = "unit"
	PropImage    PropType = "image"
)

// PropDefinition describes one typed prop of a component schema.
type PropDefinition struct {
	// Key is the attribute name as stored in the template source
	Key string `yaml:"key"`
	// Label is the human-readable field label; derived from Key when empty
	Label string `yaml:"label"`
	// Type selects the editor field kind
	Type PropType `yaml:"type"`
	// Default is used when neither the prop nor its override is set
	Default string `yaml:"default"`
	// Placeholder is shown in empty text fields
	Placeholder string `yaml:"placeholder"`
	// Options lists the legal values for select-typed props
	Options []string `yaml:"options"`
	// Half lays the field out at half width, two per row
	Half bool `yaml:"half"`
	// Group is the visual grouping heading this field sorts under
	Group string `yaml:"group"`
	// RepeatableGroup is the key of the owning repeatable group, if any
	RepeatableGroup string `yaml:"repeatableGroup"`
	// ConditionalOn names another prop whose truthiness gates visibility
	ConditionalOn string `yaml:"conditionalOn"`
	// ButtonSet tags the primary/secondary button variant this prop styles
	ButtonSet string `yaml:"buttonSet"`
	// Responsive marks the prop as eligible for a mobile override
	Responsive bool `yaml:"responsive"`
	// Separator draws a visual divider before this field
	Separator bool `yaml:"separator"`
}

// RepeatableGroup declares a cluster of props repeated N times within one
// component (feature entries, social links). PropsPerItem entries containing
// the index placeholder "{n}" make the group numbered; otherwise each entry
// is an independent optional slot.
type RepeatableGroup struct {
	Key          string   `yaml:"key"`
	Label        string   `yaml:"label"`
	PropsPerItem []string `yaml:"propsPerItem"`
}

// ComponentSchema is the static description of one component type. Schemas
// are immutable after registry load.
type ComponentSchema struct {
	Name             string            `yaml:"name"`
	Label            string            `yaml:"label"`
	Icon             string            `yaml:"icon"`
	Props            []PropDefinition  `yaml:"props"`
	RepeatableGroups []RepeatableGroup `yaml:"repeatableGroups"`
}
