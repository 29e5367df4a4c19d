package models

// FilterOption is one selectable value of a filter dimension.
type FilterOption struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// ShowWhen hides a schema entry in the UI until the named filter holds the
// given value. Unlike DependsOn it does not affect resolution ordering.
type ShowWhen struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FilterSchemaEntry is the declarative description of one filterable
// dimension. Entries with DependsOn keys are only resolved after every
// dependency is already part of the schema.
type FilterSchemaEntry struct {
	Key       string         `json:"key"`
	Label     string         `json:"label"`
	Options   []FilterOption `json:"options"`
	DependsOn []string       `json:"depends_on,omitempty"`
	ShowWhen  *ShowWhen      `json:"show_when,omitempty"`
}

// FilterValues is the current filter-value snapshot keyed by filter key.
type FilterValues map[string][]string

// Selected reports the chosen values for a key.
func (v FilterValues) Selected(key string) []string {
	if v == nil {
		return nil
	}
	return v[key]
}

// Has reports whether the key holds the given value.
func (v FilterValues) Has(key, value string) bool {
	for _, candidate := range v.Selected(key) {
		if candidate == value {
			return true
		}
	}
	return false
}
