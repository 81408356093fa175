package ports

import (
	"context"
	"time"

	"randalloc/domain/allocation"
	"randalloc/domain/run"
)

// ReportWriter persists a randomization result into an output directory
type ReportWriter interface {
	// Write stores the result and returns the path of the primary artifact
	Write(ctx context.Context, dir string, at time.Time, result *allocation.Result) (string, error)
	Format() run.ReportFormat
}

// ReportReader loads a previously written report
type ReportReader interface {
	Read(ctx context.Context, path string) (*allocation.Result, error)
}

// GroupSheetReader reads group definitions from a tabular file
type GroupSheetReader interface {
	ReadGroups(ctx context.Context, path string) ([]allocation.GroupDefinition, error)
}
