package goap

import (
	"errors"
	"fmt"
)

// ErrCyclicResolution marks a world-state determiner that re-entered
// itself while resolving an UNKNOWN condition. Planning over such a
// system is malformed.
var ErrCyclicResolution = errors.New("cyclic UNKNOWN condition resolution")

// DuplicateActionError reports an action name appearing more than once in
// a planning system. Action names must be unique so plans can be executed
// by name.
type DuplicateActionError struct {
	Name string
}

func (e *DuplicateActionError) Error() string {
	return fmt.Sprintf("duplicate action name %q in planning system", e.Name)
}
