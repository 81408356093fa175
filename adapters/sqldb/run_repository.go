package sqldb

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/jmoiron/sqlx"

	"randalloc/domain/core"
	"randalloc/domain/run"
	"randalloc/internal/errors"
	"randalloc/ports"
)

// RunRepository records written reports in the runs table
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new SQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepository{db: db}
}

// runRow is the stored shape of a run; created_at is Unix milliseconds so both drivers agree
type runRow struct {
	ID           string        `db:"id"`
	CreatedAt    int64         `db:"created_at"`
	Seed         sql.NullInt64 `db:"seed"`
	Participants int           `db:"participants"`
	Groups       int           `db:"groups_count"`
	Format       string        `db:"format"`
	ReportPath   string        `db:"report_path"`
	Fingerprint  string        `db:"fingerprint"`
}

func toRow(r *run.Run) runRow {
	return runRow{
		ID:           r.ID.String(),
		CreatedAt:    r.CreatedAt.UTC().UnixMilli(),
		Seed:         r.Seed,
		Participants: r.Participants,
		Groups:       r.Groups,
		Format:       string(r.Format),
		ReportPath:   r.ReportPath,
		Fingerprint:  string(r.Fingerprint),
	}
}

func (row runRow) toRun() *run.Run {
	return &run.Run{
		ID:           core.RunID(row.ID),
		CreatedAt:    time.UnixMilli(row.CreatedAt),
		Seed:         row.Seed,
		Participants: row.Participants,
		Groups:       row.Groups,
		Format:       run.ReportFormat(row.Format),
		ReportPath:   row.ReportPath,
		Fingerprint:  core.AllocationFingerprint(row.Fingerprint),
	}
}

const runColumns = `id, created_at, seed, participants, groups_count, format, report_path, fingerprint`

// Create stores a new run
func (r *RunRepository) Create(ctx context.Context, rn *run.Run) error {
	if err := rn.Validate(); err != nil {
		return errors.ValidationError(err)
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (:id, :created_at, :seed, :participants, :groups_count, :format, :report_path, :fingerprint)
	`, toRow(rn))
	if err != nil {
		return errors.DatabaseError("failed to insert run", err)
	}
	return nil
}

// GetByID retrieves a run by its ID
func (r *RunRepository) GetByID(ctx context.Context, id core.RunID) (*run.Run, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+runColumns+` FROM runs WHERE id = ?`), id.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("run", id.String())
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to get run", err)
	}
	return row.toRun(), nil
}

// List returns up to limit runs, newest first. A limit below 1 returns every run.
func (r *RunRepository) List(ctx context.Context, limit int) ([]*run.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}

	runs := make([]*run.Run, len(rows))
	for i, row := range rows {
		runs[i] = row.toRun()
	}
	return runs, nil
}
