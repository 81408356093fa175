package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"randalloc/domain/allocation"
	"randalloc/domain/core"
	"randalloc/domain/run"
	"randalloc/internal/errors"
	"randalloc/ports"
)

// RandomizationService runs the engine over the current group list and persists the outcome
type RandomizationService struct {
	groups        ports.GroupRepository
	runs          ports.RunRepository
	randomizer    ports.Randomizer
	writers       map[run.ReportFormat]ports.ReportWriter
	readers       map[run.ReportFormat]ports.ReportReader
	defaultFormat run.ReportFormat
	historyLimit  int
	clock         core.Clock
	logger        *slog.Logger
}

// RandomizationOptions carries the defaults a service falls back to
type RandomizationOptions struct {
	DefaultFormat run.ReportFormat
	HistoryLimit  int
	Clock         core.Clock
}

// RandomizeRequest defines the inputs for one randomization
type RandomizeRequest struct {
	OutputDir string
	SeedText  string
	Format    run.ReportFormat // optional, the service default when empty
}

// RandomizeResponse is the outcome of a successful randomization
type RandomizeResponse struct {
	Result     *allocation.Result
	ReportPath string
	Run        *run.Run // nil when the history entry could not be stored
	// SeedWarning is set when seed text was given but rejected; the run then used no seed
	SeedWarning error
}

// VerifyResult compares a report with a fresh randomization of its recorded inputs
type VerifyResult struct {
	ReportPath    string
	Seed          allocation.Seed
	Participants  int
	Recorded      core.AllocationFingerprint
	Recomputed    core.AllocationFingerprint
	Match         bool
	FirstMismatch int // participant ID of the first differing row, 0 when none
}

// NewRandomizationService creates a randomization service
func NewRandomizationService(
	groups ports.GroupRepository,
	runs ports.RunRepository,
	randomizer ports.Randomizer,
	writers []ports.ReportWriter,
	readers map[run.ReportFormat]ports.ReportReader,
	opts RandomizationOptions,
) *RandomizationService {
	s := &RandomizationService{
		groups:        groups,
		runs:          runs,
		randomizer:    randomizer,
		writers:       make(map[run.ReportFormat]ports.ReportWriter, len(writers)),
		readers:       readers,
		defaultFormat: opts.DefaultFormat,
		historyLimit:  opts.HistoryLimit,
		clock:         opts.Clock,
		logger:        slog.Default().With("component", "randomize"),
	}
	for _, w := range writers {
		s.writers[w.Format()] = w
	}
	if s.defaultFormat == "" {
		s.defaultFormat = run.FormatXLSX
	}
	if s.historyLimit < 1 {
		s.historyLimit = 20
	}
	if s.clock == nil {
		s.clock = core.SystemClock
	}
	return s
}

// Randomize allocates the current group list and writes the report into req.OutputDir
func (s *RandomizationService) Randomize(ctx context.Context, req RandomizeRequest) (*RandomizeResponse, error) {
	if strings.TrimSpace(req.OutputDir) == "" {
		return nil, errors.PreconditionFailed(allocation.ErrNoOutputDir)
	}

	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load groups")
	}
	if len(groups) == 0 {
		return nil, errors.PreconditionFailed(allocation.ErrNoGroups)
	}

	format := req.Format
	if format == "" {
		format = s.defaultFormat
	}
	writer, ok := s.writers[format]
	if !ok {
		return nil, errors.ValidationError(fmt.Errorf("unsupported report format %q", format))
	}

	resp := &RandomizeResponse{}
	seed, seedErr := allocation.ParseSeed(req.SeedText)
	if seedErr != nil {
		s.logger.Warn("invalid seed, proceeding without one", "seed", req.SeedText, "error", seedErr)
		resp.SeedWarning = errors.ValidationError(seedErr)
	}

	result, err := s.randomizer.Randomize(ctx, groups, seed)
	if err != nil {
		if allocation.IsValidationError(err) {
			return nil, errors.ValidationError(err)
		}
		return nil, errors.Wrap(err, "randomization failed")
	}
	resp.Result = result

	at := s.clock()
	path, err := writer.Write(ctx, req.OutputDir, at, result)
	if err != nil {
		return nil, errors.IOError("failed to write report", err)
	}
	resp.ReportPath = path

	rn := run.NewRun(result, format, path, at)
	if err := s.runs.Create(ctx, rn); err != nil {
		// The report is already on disk; a missing history entry does not undo it.
		s.logger.Error("failed to record run", "path", path, "error", err)
	} else {
		resp.Run = rn
	}

	s.logger.Info("randomization written",
		"path", path,
		"participants", result.Total(),
		"groups", len(groups),
		"seed", result.Seed.String(),
	)
	return resp, nil
}

// Verify re-runs the randomization recorded in a report and compares the allocations
func (s *RandomizationService) Verify(ctx context.Context, path string) (*VerifyResult, error) {
	format, err := run.ParseReportFormat(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return nil, errors.ValidationError(err)
	}
	reader, ok := s.readers[format]
	if !ok {
		return nil, errors.ValidationError(fmt.Errorf("no reader for %s reports", format))
	}

	recorded, err := reader.Read(ctx, path)
	if err != nil {
		if allocation.IsValidationError(err) {
			return nil, errors.ValidationError(err)
		}
		return nil, errors.IOError("failed to read report", err)
	}
	if !recorded.Seed.IsSet() {
		return nil, errors.WithCode(errors.CodeValidationError, allocation.ErrUnverifiable)
	}
	if len(recorded.Groups) == 0 {
		return nil, errors.WithCode(errors.CodeValidationError,
			fmt.Errorf("%w: report has no group definitions", allocation.ErrUnverifiable))
	}

	recomputed, err := s.randomizer.Randomize(ctx, recorded.Groups, recorded.Seed)
	if err != nil {
		if allocation.IsValidationError(err) {
			return nil, errors.ValidationError(err)
		}
		return nil, errors.Wrap(err, "randomization failed")
	}

	vr := &VerifyResult{
		ReportPath:   path,
		Seed:         recorded.Seed,
		Participants: recorded.Total(),
		Recorded:     run.Fingerprint(recorded),
		Recomputed:   run.Fingerprint(recomputed),
	}
	vr.Match = vr.Recorded == vr.Recomputed
	if !vr.Match {
		vr.FirstMismatch = firstMismatch(recorded.Allocations, recomputed.Allocations)
	}

	s.logger.Info("report verified", "path", path, "match", vr.Match)
	return vr, nil
}

func firstMismatch(a, b []allocation.Record) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i].ParticipantID
		}
	}
	if len(a) > len(b) {
		return a[len(b)].ParticipantID
	}
	if len(b) > len(a) {
		return b[len(a)].ParticipantID
	}
	return 0
}

// History lists recorded runs, newest first. A limit below 1 uses the configured default.
func (s *RandomizationService) History(ctx context.Context, limit int) ([]*run.Run, error) {
	if limit < 1 {
		limit = s.historyLimit
	}
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	return runs, nil
}

// GetRun looks up one history entry by its ID
func (s *RandomizationService) GetRun(ctx context.Context, id string) (*run.Run, error) {
	runID, err := core.ParseRunID(id)
	if err != nil {
		return nil, errors.ValidationError(err)
	}
	rn, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		if core.IsNotFoundError(err) {
			return nil, errors.WithCode(errors.CodeNotFound, err)
		}
		return nil, errors.Wrap(err, "failed to get run")
	}
	return rn, nil
}
