package matching

import (
	"strings"

	"github.com/mocks-server/main/pkg/mock"
)

// MatchMethod checks if the request method is one of methods.
// methods are expected upper-cased; "*" matches any method.
func MatchMethod(methods []string, method string) bool {
	for _, m := range methods {
		if m == mock.AnyMethod || strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}
