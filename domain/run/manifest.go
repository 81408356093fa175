package run

import (
	"database/sql"
	"fmt"
	"time"

	"randalloc/domain/allocation"
	"randalloc/domain/core"
)

// ReportFormat names the artifact layout a run was written in
type ReportFormat string

const (
	FormatXLSX ReportFormat = "xlsx"
	FormatCSV  ReportFormat = "csv"
)

// Extension returns the file extension for the format, without the dot
func (f ReportFormat) Extension() string {
	return string(f)
}

// ParseReportFormat parses a format name, defaulting to xlsx when empty
func ParseReportFormat(s string) (ReportFormat, error) {
	switch s {
	case "", string(FormatXLSX):
		return FormatXLSX, nil
	case string(FormatCSV):
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported report format %q (use xlsx or csv)", s)
	}
}

// Run is the history entry written after a report has been saved.
// It is the only trace of a randomization that outlives the process besides the report itself.
type Run struct {
	ID           core.RunID                 `json:"id" db:"id"`
	CreatedAt    time.Time                  `json:"created_at" db:"created_at"`
	Seed         sql.NullInt64              `json:"seed" db:"seed"`
	Participants int                        `json:"participants" db:"participants"`
	Groups       int                        `json:"groups" db:"groups_count"`
	Format       ReportFormat               `json:"format" db:"format"`
	ReportPath   string                     `json:"report_path" db:"report_path"`
	Fingerprint  core.AllocationFingerprint `json:"fingerprint" db:"fingerprint"`
}

// NewRun records a written report
func NewRun(result *allocation.Result, format ReportFormat, reportPath string, createdAt time.Time) *Run {
	r := &Run{
		ID:           core.NewRunID(),
		CreatedAt:    createdAt,
		Participants: result.Total(),
		Groups:       len(result.Groups),
		Format:       format,
		ReportPath:   reportPath,
		Fingerprint:  Fingerprint(result),
	}
	if v, ok := result.Seed.Value(); ok {
		r.Seed = sql.NullInt64{Int64: v, Valid: true}
	}
	return r
}

// SeedValue converts the nullable column back to a domain seed
func (r *Run) SeedValue() allocation.Seed {
	if !r.Seed.Valid {
		return allocation.NoSeed()
	}
	return allocation.SeedOf(r.Seed.Int64)
}

// Validate checks the record is complete before it is stored
func (r *Run) Validate() error {
	if core.ID(r.ID).IsEmpty() {
		return fmt.Errorf("run: id cannot be empty")
	}
	if r.ReportPath == "" {
		return fmt.Errorf("run: report path cannot be empty")
	}
	if r.Fingerprint == "" {
		return fmt.Errorf("run: fingerprint cannot be empty")
	}
	if r.Participants < 0 {
		return fmt.Errorf("run: participants cannot be negative")
	}
	return nil
}

// Fingerprint hashes the ordered allocation of a result
func Fingerprint(result *allocation.Result) core.AllocationFingerprint {
	ids := make([]int, len(result.Allocations))
	names := make([]string, len(result.Allocations))
	for i, rec := range result.Allocations {
		ids[i] = rec.ParticipantID
		names[i] = rec.GroupName
	}
	return core.ComputeAllocationFingerprint(ids, names)
}

// ReportFileName builds "<YYYY_MM_DD HH_MM_SS> RandomizationAllocation.<ext>" for the primary artifact
func ReportFileName(at time.Time, format ReportFormat) string {
	return SidecarFileName(at, "RandomizationAllocation", format)
}

// SidecarFileName builds "<YYYY_MM_DD HH_MM_SS> <name>.<ext>" for artifacts written next to a report
func SidecarFileName(at time.Time, name string, format ReportFormat) string {
	return fmt.Sprintf("%s %s.%s", core.FormatReportTimestamp(at), name, format.Extension())
}
