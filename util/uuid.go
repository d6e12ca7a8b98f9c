// Package util provides small helpers shared by the transports.
package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// InvalidIDError is returned when an identifier is not a well-formed UUID.
type InvalidIDError struct {
	Value string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid id: %q is not a uuid", e.Value)
}

// Is makes errors.Is work with any *InvalidIDError.
func (e *InvalidIDError) Is(target error) bool {
	_, ok := target.(*InvalidIDError)
	return ok
}

// ParseID parses a UUID from user input. The nil UUID is rejected.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, &InvalidIDError{Value: s}
	}
	return id, nil
}

// IsInvalidID reports whether err is an *InvalidIDError.
func IsInvalidID(err error) bool {
	var target *InvalidIDError
	return errors.As(err, &target)
}
