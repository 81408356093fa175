// Package memory provides in-process repositories for embedding and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"randalloc/domain/allocation"
	"randalloc/domain/core"
	"randalloc/domain/run"
	"randalloc/ports"
)

var (
	_ ports.GroupRepository = (*GroupRepository)(nil)
	_ ports.RunRepository   = (*RunRepository)(nil)
)

// GroupRepository holds the group list in a slice
type GroupRepository struct {
	mu     sync.RWMutex
	groups []allocation.GroupDefinition
}

// NewGroupRepository creates an empty group list
func NewGroupRepository() *GroupRepository {
	return &GroupRepository{}
}

func (r *GroupRepository) Add(ctx context.Context, group allocation.GroupDefinition) error {
	return r.AddAll(ctx, []allocation.GroupDefinition{group})
}

func (r *GroupRepository) AddAll(ctx context.Context, groups []allocation.GroupDefinition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make(map[string]bool, len(r.groups)+len(groups))
	for _, g := range r.groups {
		names[g.Name] = true
	}
	for _, g := range groups {
		if names[g.Name] {
			return allocation.NewDuplicateNameError(g.Name)
		}
		names[g.Name] = true
	}

	r.groups = append(r.groups, groups...)
	return nil
}

func (r *GroupRepository) RemoveAt(ctx context.Context, index int) (allocation.GroupDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.groups) {
		return allocation.GroupDefinition{}, fmt.Errorf("%w: index %d", allocation.ErrGroupNotFound, index)
	}
	removed := r.groups[index]
	r.groups = append(r.groups[:index:index], r.groups[index+1:]...)
	return removed, nil
}

func (r *GroupRepository) List(ctx context.Context) ([]allocation.GroupDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]allocation.GroupDefinition, len(r.groups))
	copy(out, r.groups)
	return out, nil
}

func (r *GroupRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = nil
	return nil
}

// RunRepository keeps run history in a map keyed by ID
type RunRepository struct {
	mu   sync.RWMutex
	runs map[core.RunID]run.Run
}

// NewRunRepository creates an empty run history
func NewRunRepository() *RunRepository {
	return &RunRepository{runs: make(map[core.RunID]run.Run)}
}

func (r *RunRepository) Create(ctx context.Context, rn *run.Run) error {
	if err := rn.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[rn.ID]; ok {
		return fmt.Errorf("run %s already exists", rn.ID)
	}
	r.runs[rn.ID] = *rn
	return nil
}

func (r *RunRepository) GetByID(ctx context.Context, id core.RunID) (*run.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rn, ok := r.runs[id]
	if !ok {
		return nil, core.NewNotFoundError("run", id.String())
	}
	return &rn, nil
}

func (r *RunRepository) List(ctx context.Context, limit int) ([]*run.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*run.Run, 0, len(r.runs))
	for _, rn := range r.runs {
		rn := rn
		out = append(out, &rn)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
