package allocation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewGroupDefinition trims the name and checks both fields against the struct tags
func NewGroupDefinition(name string, size int) (GroupDefinition, error) {
	g := GroupDefinition{Name: strings.TrimSpace(name), Size: size}
	if err := validate.Struct(g); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return GroupDefinition{}, err
		}
		switch fieldErrs[0].Field() {
		case "Name":
			return GroupDefinition{}, ErrEmptyGroupName
		default:
			return GroupDefinition{}, NewInvalidSizeError(g.Name, g.Size)
		}
	}
	return g, nil
}

// ParseGroupSize parses a sample size typed by a user
func ParseGroupSize(text string) (int, error) {
	text = strings.TrimSpace(text)
	size, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidGroupSize, text)
	}
	if size < 1 {
		return 0, fmt.Errorf("%w: %d, sample size must be a positive integer", ErrInvalidGroupSize, size)
	}
	if size > MaxPoolSize {
		return 0, fmt.Errorf("%w: %d, sample size cannot exceed %d", ErrInvalidGroupSize, size, MaxPoolSize)
	}
	return size, nil
}

// ValidateGroupList checks every definition and name uniqueness across the list
func ValidateGroupList(groups []GroupDefinition) ([]GroupDefinition, error) {
	seen := make(map[string]bool, len(groups))
	out := make([]GroupDefinition, 0, len(groups))
	for i, g := range groups {
		def, err := NewGroupDefinition(g.Name, g.Size)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i+1, err)
		}
		if seen[def.Name] {
			return nil, NewDuplicateNameError(def.Name)
		}
		seen[def.Name] = true
		out = append(out, def)
	}
	return out, nil
}
