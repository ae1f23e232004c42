//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// ValidationError reports a missing or malformed input field. It is raised
// before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}
