package core

import (
	"errors"
	"fmt"
)

// Infrastructure errors shared by repositories
var (
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)
)

// NewNotFoundError creates a not found error with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// IsNotFoundError reports whether err is any not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
