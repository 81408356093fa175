package ports

import (
	"context"

	"randalloc/domain/allocation"
)

// GroupRepository stores the ordered group list between randomizations
type GroupRepository interface {
	// Add appends a definition. Returns allocation.ErrDuplicateGroupName if the name exists.
	Add(ctx context.Context, group allocation.GroupDefinition) error

	// AddAll appends several definitions atomically
	AddAll(ctx context.Context, groups []allocation.GroupDefinition) error

	// RemoveAt deletes the definition at the 0-based position in List order.
	// Returns allocation.ErrGroupNotFound when the index is out of range.
	RemoveAt(ctx context.Context, index int) (allocation.GroupDefinition, error)

	// List returns definitions in insertion order
	List(ctx context.Context) ([]allocation.GroupDefinition, error)

	// Clear removes every definition
	Clear(ctx context.Context) error
}
