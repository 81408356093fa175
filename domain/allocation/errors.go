package allocation

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Group definition errors
	ErrInvalidGroupSize   = errors.New("invalid group size")
	ErrDuplicateGroupName = errors.New("duplicate group name")
	ErrEmptyGroupName     = errors.New("group name cannot be empty")
	ErrGroupNotFound      = errors.New("group not found")

	// Randomization errors
	ErrInvalidSeed  = errors.New("invalid random seed")
	ErrNoGroups     = errors.New("no groups defined")
	ErrNoOutputDir  = errors.New("output path is not set")
	ErrUnverifiable = errors.New("report cannot be verified without a recorded seed")
	ErrMismatch     = errors.New("allocation does not match re-randomization")
)

// NewInvalidSizeError reports a group whose size cannot produce a pool
func NewInvalidSizeError(name string, size int) error {
	if size > MaxPoolSize {
		return fmt.Errorf("%w: group %q has size %d, sample size cannot exceed %d", ErrInvalidGroupSize, name, size, MaxPoolSize)
	}
	return fmt.Errorf("%w: group %q has size %d, sample size must be a positive integer", ErrInvalidGroupSize, name, size)
}

// NewPoolTooLargeError reports definitions whose sizes add up past MaxPoolSize
func NewPoolTooLargeError(total int) error {
	return fmt.Errorf("%w: groups add up to more than %d participants (at least %d)", ErrInvalidGroupSize, MaxPoolSize, total)
}

// NewDuplicateNameError reports a name that already exists in the group list
func NewDuplicateNameError(name string) error {
	return fmt.Errorf("%w: group name '%s' already exists", ErrDuplicateGroupName, name)
}

// IsValidationError reports whether err was caused by rejected user input
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidGroupSize) ||
		errors.Is(err, ErrDuplicateGroupName) ||
		errors.Is(err, ErrEmptyGroupName) ||
		errors.Is(err, ErrInvalidSeed)
}

// IsPreconditionError reports whether err was caused by missing state at randomize time
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrNoGroups) || errors.Is(err, ErrNoOutputDir)
}
