package dao

// Parameter names a list filter
type Parameter struct {
	Name  string
	Value interface{}
}

// Well-known list filters
const (
	ParameterStatus = "Status"
	ParameterKind   = "Kind"
	ParameterFamily = "Family"
)

func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
