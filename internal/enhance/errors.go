package enhance

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidResponse marks a model reply that parsed but lacked the expected fields.
	ErrInvalidResponse = errors.New("invalid JSON structure received from API")

	// ErrNoEnhancement is reported when an apply call returns neither a result nor an error.
	ErrNoEnhancement = errors.New("no enhancement returned")
)

// ServiceError is the single failure type surfaced by the services. Its
// message is shown to the user as-is.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
