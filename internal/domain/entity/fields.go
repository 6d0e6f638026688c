package entity

// Field is one labeled display value extracted from a raw payload
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Fields is an ordered list of display fields. Order is display order.
type Fields []Field

// Add appends a field
func (f *Fields) Add(label, value string) {
	*f = append(*f, Field{Label: label, Value: value})
}

// Get returns the value for label
func (f Fields) Get(label string) (string, bool) {
	for _, field := range f {
		if field.Label == label {
			return field.Value, true
		}
	}
	return "", false
}

// Len returns the number of fields
func (f Fields) Len() int {
	return len(f)
}

// Labels returns the labels in display order
func (f Fields) Labels() []string {
	labels := make([]string, len(f))
	for i, field := range f {
		labels[i] = field.Label
	}
	return labels
}

// Map returns the fields as a label to value map
func (f Fields) Map() map[string]string {
	m := make(map[string]string, len(f))
	for _, field := range f {
		m[field.Label] = field.Value
	}
	return m
}
