package ports

import (
	"context"

	"randalloc/domain/allocation"
)

// Randomizer turns group definitions into an allocation
type Randomizer interface {
	Randomize(ctx context.Context, groups []allocation.GroupDefinition, seed allocation.Seed) (*allocation.Result, error)
}
