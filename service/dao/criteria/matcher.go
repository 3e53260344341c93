package criteria

import (
	"github.com/viant/reframe/service/dao"
)

// Match reports whether a record attribute satisfies the named parameter.
// Parameters with other names are ignored.
func Match(name, actual string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != name {
			continue
		}
		switch expected := parameter.Value.(type) {
		case string:
			if actual != expected {
				return false
			}
		case []string:
			matched := false
			for _, s := range expected {
				if actual == s {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	return true
}

// FilterByStatus matches the Status parameter
func FilterByStatus(status string, parameters []*dao.Parameter) bool {
	return Match(dao.ParameterStatus, status, parameters)
}

// FilterByKind matches the Kind parameter
func FilterByKind(kind string, parameters []*dao.Parameter) bool {
	return Match(dao.ParameterKind, kind, parameters)
}

// FilterByFamily matches the Family parameter
func FilterByFamily(family string, parameters []*dao.Parameter) bool {
	return Match(dao.ParameterFamily, family, parameters)
}
