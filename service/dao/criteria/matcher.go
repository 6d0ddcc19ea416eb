package criteria

import (
	"strings"

	"github.com/viant/procsim/service/dao"
)

// FilterByState reports whether state satisfies every State parameter.
// Names are compared case-insensitively; other parameters are ignored.
func FilterByState(state string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != dao.StateParameter {
			continue
		}
		switch actual := parameter.Value.(type) {
		case string:
			if !strings.EqualFold(state, actual) {
				return false
			}
		case []string:
			if len(actual) == 0 {
				continue
			}
			matched := false
			for _, s := range actual {
				if strings.EqualFold(state, s) {
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
