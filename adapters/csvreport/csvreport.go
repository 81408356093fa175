// Package csvreport writes and reads the plain-text form of an allocation report: the allocation
// table plus sidecar files for the seed and the group definitions.
package csvreport

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"randalloc/domain/allocation"
	"randalloc/domain/run"
	"randalloc/ports"
)

const (
	primaryName = "RandomizationAllocation"
	seedName    = "RandomSeed"
	groupsName  = "Groups"

	colParticipantID = "Participant ID"
	colGroupName     = "Group Name"
	colRandomSeed    = "Random Seed"
	colSampleSize    = "Sample Size"
)

var (
	_ ports.ReportWriter = (*Writer)(nil)
	_ ports.ReportReader = (*Reader)(nil)
)

// Writer saves a result as three CSV files sharing a timestamp prefix
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates a CSV report writer
func NewWriter() *Writer {
	return &Writer{logger: slog.Default().With("component", "csvreport")}
}

// Format returns run.FormatCSV
func (w *Writer) Format() run.ReportFormat {
	return run.FormatCSV
}

// Write saves the allocation table and its sidecars, returning the allocation table path.
// If any file fails, the files already written are removed so no partial report remains.
func (w *Writer) Write(ctx context.Context, dir string, at time.Time, result *allocation.Result) (string, error) {
	path := filepath.Join(dir, run.ReportFileName(at, run.FormatCSV))

	allocRows := make([][]string, 0, len(result.Allocations)+1)
	allocRows = append(allocRows, []string{colParticipantID, colGroupName})
	for _, rec := range result.Allocations {
		allocRows = append(allocRows, []string{strconv.Itoa(rec.ParticipantID), rec.GroupName})
	}

	groupRows := make([][]string, 0, len(result.Groups)+1)
	groupRows = append(groupRows, []string{colGroupName, colSampleSize})
	for _, g := range result.Groups {
		groupRows = append(groupRows, []string{g.Name, strconv.Itoa(g.Size)})
	}

	files := []struct {
		path string
		rows [][]string
	}{
		{path, allocRows},
		{filepath.Join(dir, run.SidecarFileName(at, seedName, run.FormatCSV)), [][]string{{colRandomSeed}, {result.Seed.String()}}},
		{filepath.Join(dir, run.SidecarFileName(at, groupsName, run.FormatCSV)), groupRows},
	}

	var written []string
	for _, f := range files {
		if err := writeFile(f.path, f.rows); err != nil {
			w.removeAll(written)
			return "", err
		}
		written = append(written, f.path)
	}

	w.logger.Debug("csv report saved", "path", path, "rows", len(result.Allocations))
	return path, nil
}

func (w *Writer) removeAll(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil {
			w.logger.Warn("failed to remove partial report file", "path", p, "error", err)
		}
	}
}

func writeFile(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return file.Close()
}

// Reader loads CSV reports written by Writer
type Reader struct{}

// NewReader creates a CSV report reader
func NewReader() *Reader {
	return &Reader{}
}

// Read parses the allocation table at path and the sidecars next to it. The seed sidecar is
// required; the groups sidecar is optional.
func (r *Reader) Read(ctx context.Context, path string) (*allocation.Result, error) {
	seedPath, groupsPath, err := SidecarPaths(path)
	if err != nil {
		return nil, err
	}

	rows, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || !headerMatches(rows[0], colParticipantID, colGroupName) {
		return nil, fmt.Errorf("%s: expected %q, %q header", filepath.Base(path), colParticipantID, colGroupName)
	}

	result := &allocation.Result{Allocations: make([]allocation.Record, 0, len(rows)-1)}
	for i, row := range rows[1:] {
		if len(row) < 2 {
			return nil, fmt.Errorf("%s row %d: expected 2 columns", filepath.Base(path), i+2)
		}
		id, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid participant id %q", filepath.Base(path), i+2, row[0])
		}
		result.Allocations = append(result.Allocations, allocation.Record{ParticipantID: id, GroupName: row[1]})
	}

	seedRows, err := readFile(seedPath)
	if err != nil {
		return nil, err
	}
	if len(seedRows) < 2 || len(seedRows[1]) == 0 {
		return nil, fmt.Errorf("%s has no value", filepath.Base(seedPath))
	}
	if result.Seed, err = allocation.ParseSeedCell(seedRows[1][0]); err != nil {
		return nil, err
	}

	if _, statErr := os.Stat(groupsPath); statErr == nil {
		groupRows, err := readFile(groupsPath)
		if err != nil {
			return nil, err
		}
		for i, row := range groupRows {
			if i == 0 || len(row) < 2 {
				continue
			}
			size, err := strconv.Atoi(strings.TrimSpace(row[1]))
			if err != nil {
				return nil, fmt.Errorf("%s row %d: invalid sample size %q", filepath.Base(groupsPath), i+1, row[1])
			}
			result.Groups = append(result.Groups, allocation.GroupDefinition{Name: row[0], Size: size})
		}
	}

	return result, nil
}

// SidecarPaths derives the seed and groups file paths from an allocation table path
func SidecarPaths(path string) (seedPath, groupsPath string, err error) {
	dir, base := filepath.Split(path)
	suffix := primaryName + ".csv"
	if !strings.HasSuffix(base, suffix) {
		return "", "", fmt.Errorf("%s is not a %s file", base, suffix)
	}
	prefix := strings.TrimSuffix(base, suffix)
	return filepath.Join(dir, prefix+seedName+".csv"), filepath.Join(dir, prefix+groupsName+".csv"), nil
}

func readFile(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

func headerMatches(row []string, want ...string) bool {
	if len(row) < len(want) {
		return false
	}
	for i, w := range want {
		if !strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(row[i], "\ufeff")), w) {
			return false
		}
	}
	return true
}
