package dao

// Parameter represents a named List criterion
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a parameter; several values form an accepted list
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
