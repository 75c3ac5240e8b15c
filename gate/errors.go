package gate

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNoPolicyDefined = errors.New("no policy defined for resource")
)

// DeniedError names the refused action. It matches ErrForbidden.
type DeniedError struct {
	Resource string
	Action   Action
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("forbidden: %s on %s", e.Action, e.Resource)
}

func (e *DeniedError) Unwrap() error { return ErrForbidden }
