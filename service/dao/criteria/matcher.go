package criteria

import (
	"github.com/viant/datarequest/service/dao"
)

// Match reports whether value satisfies every parameter called name;
// a parameter value can be a single string or a list of accepted strings.
func Match(parameters []*dao.Parameter, name, value string) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != name {
			continue
		}
		switch actual := parameter.Value.(type) {
		case string:
			if value != actual {
				return false
			}
		case []string:
			matched := false
			for _, candidate := range actual {
				if value == candidate {
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
