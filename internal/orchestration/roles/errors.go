// Package roles provides the analyzer role catalogue, the keyword rule table and
// the selector that maps a topic to an ordered set of roles.
package roles

import "errors"

// ErrInvalidRules is returned when a rule table fails validation.
var ErrInvalidRules = errors.New("invalid role rules")
