package app

import (
	"context"
	stderrors "errors"
	"log/slog"

	"randalloc/domain/allocation"
	"randalloc/internal/errors"
	"randalloc/ports"
)

// GroupService maintains the ordered list of group definitions a randomization draws from
type GroupService struct {
	repo   ports.GroupRepository
	sheets ports.GroupSheetReader
	logger *slog.Logger
}

// NewGroupService creates a group service
func NewGroupService(repo ports.GroupRepository, sheets ports.GroupSheetReader) *GroupService {
	return &GroupService{
		repo:   repo,
		sheets: sheets,
		logger: slog.Default().With("component", "groups"),
	}
}

// AddGroup validates and appends a definition. A rejected definition leaves the list unchanged.
func (s *GroupService) AddGroup(ctx context.Context, name string, size int) (allocation.GroupDefinition, error) {
	group, err := allocation.NewGroupDefinition(name, size)
	if err != nil {
		return allocation.GroupDefinition{}, errors.ValidationError(err)
	}

	if err := s.repo.Add(ctx, group); err != nil {
		return allocation.GroupDefinition{}, classify(err, "failed to add group")
	}

	s.logger.Info("group added", "name", group.Name, "size", group.Size)
	return group, nil
}

// RemoveGroup deletes the definition at the 0-based index
func (s *GroupService) RemoveGroup(ctx context.Context, index int) (allocation.GroupDefinition, error) {
	removed, err := s.repo.RemoveAt(ctx, index)
	if err != nil {
		return allocation.GroupDefinition{}, classify(err, "failed to remove group")
	}

	s.logger.Info("group removed", "name", removed.Name, "index", index)
	return removed, nil
}

// ListGroups returns the definitions in insertion order
func (s *GroupService) ListGroups(ctx context.Context) ([]allocation.GroupDefinition, error) {
	groups, err := s.repo.List(ctx)
	if err != nil {
		return nil, classify(err, "failed to list groups")
	}
	return groups, nil
}

// ClearGroups empties the list
func (s *GroupService) ClearGroups(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return classify(err, "failed to clear groups")
	}
	s.logger.Info("group list cleared")
	return nil
}

// ImportGroups appends every definition in a group sheet. Nothing is added unless all rows
// are valid and none of the names are already in the list.
func (s *GroupService) ImportGroups(ctx context.Context, path string) ([]allocation.GroupDefinition, error) {
	rows, err := s.sheets.ReadGroups(ctx, path)
	if err != nil {
		if allocation.IsValidationError(err) {
			return nil, errors.ValidationError(err)
		}
		return nil, errors.IOError("failed to read group file", err)
	}

	groups, err := allocation.ValidateGroupList(rows)
	if err != nil {
		return nil, errors.ValidationError(err)
	}
	if len(groups) == 0 {
		return nil, errors.ValidationError(allocation.ErrNoGroups)
	}

	if err := s.repo.AddAll(ctx, groups); err != nil {
		return nil, classify(err, "failed to import groups")
	}

	s.logger.Info("groups imported", "path", path, "groups", len(groups))
	return groups, nil
}

// classify maps repository errors onto application error codes
func classify(err error, message string) error {
	switch {
	case allocation.IsValidationError(err):
		return errors.ValidationError(err)
	case stderrors.Is(err, allocation.ErrGroupNotFound):
		return errors.WithCode(errors.CodeNotFound, err)
	default:
		return errors.Wrap(err, message)
	}
}
