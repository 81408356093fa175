package ports

import (
	"context"

	"randalloc/domain/core"
	"randalloc/domain/run"
)

// RunRepository keeps the history of written reports
type RunRepository interface {
	Create(ctx context.Context, r *run.Run) error
	GetByID(ctx context.Context, id core.RunID) (*run.Run, error)
	// List returns the most recent runs first
	List(ctx context.Context, limit int) ([]*run.Run, error)
}
