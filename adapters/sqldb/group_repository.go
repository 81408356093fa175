package sqldb

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"randalloc/domain/allocation"
	"randalloc/internal/errors"
	"randalloc/ports"
)

// GroupRepository keeps the group list in the group_definitions table, ordered by position
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new SQL group repository
func NewGroupRepository(db *sqlx.DB) ports.GroupRepository {
	return &GroupRepository{db: db}
}

// Add appends a definition after the current last position
func (r *GroupRepository) Add(ctx context.Context, group allocation.GroupDefinition) error {
	return r.AddAll(ctx, []allocation.GroupDefinition{group})
}

// AddAll appends definitions in one transaction; a duplicate name rolls back the whole batch
func (r *GroupRepository) AddAll(ctx context.Context, groups []allocation.GroupDefinition) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var last sql.NullInt64
	if err := tx.GetContext(ctx, &last, `SELECT MAX(position) FROM group_definitions`); err != nil {
		return errors.DatabaseError("failed to read group positions", err)
	}
	position := last.Int64

	for _, g := range groups {
		var exists int
		err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM group_definitions WHERE name = ?`), g.Name)
		if err != nil {
			return errors.DatabaseError("failed to check group name", err)
		}
		if exists > 0 {
			return allocation.NewDuplicateNameError(g.Name)
		}

		position++
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO group_definitions (name, size, position)
			VALUES (?, ?, ?)
		`), g.Name, g.Size, position)
		if err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to insert group %q", g.Name), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit groups", err)
	}
	return nil
}

// RemoveAt deletes the definition at the 0-based index of List order
func (r *GroupRepository) RemoveAt(ctx context.Context, index int) (allocation.GroupDefinition, error) {
	var removed allocation.GroupDefinition
	if index < 0 {
		return removed, fmt.Errorf("%w: index %d", allocation.ErrGroupNotFound, index)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return removed, errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, &removed, tx.Rebind(`
		SELECT name, size FROM group_definitions
		ORDER BY position
		LIMIT 1 OFFSET ?
	`), index)
	if stderrors.Is(err, sql.ErrNoRows) {
		return removed, fmt.Errorf("%w: index %d", allocation.ErrGroupNotFound, index)
	}
	if err != nil {
		return removed, errors.DatabaseError("failed to find group", err)
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM group_definitions WHERE name = ?`), removed.Name); err != nil {
		return removed, errors.DatabaseError(fmt.Sprintf("failed to delete group %q", removed.Name), err)
	}
	if err := tx.Commit(); err != nil {
		return removed, errors.DatabaseError("failed to commit group removal", err)
	}
	return removed, nil
}

// List returns definitions in insertion order
func (r *GroupRepository) List(ctx context.Context) ([]allocation.GroupDefinition, error) {
	groups := []allocation.GroupDefinition{}
	err := r.db.SelectContext(ctx, &groups, `
		SELECT name, size FROM group_definitions
		ORDER BY position
	`)
	if err != nil {
		return nil, errors.DatabaseError("failed to list groups", err)
	}
	return groups, nil
}

// Clear removes every definition
func (r *GroupRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM group_definitions`); err != nil {
		return errors.DatabaseError("failed to clear groups", err)
	}
	return nil
}
