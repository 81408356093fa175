package csvreport

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"randalloc/domain/allocation"
)

var reportTime = time.Date(2025, 1, 4, 20, 12, 9, 0, time.Local)

func sampleResult(seed allocation.Seed) *allocation.Result {
	return &allocation.Result{
		Allocations: []allocation.Record{
			{ParticipantID: 1, GroupName: "B"},
			{ParticipantID: 2, GroupName: "A, with comma"},
			{ParticipantID: 3, GroupName: "A, with comma"},
		},
		Seed:   seed,
		Groups: []allocation.GroupDefinition{{Name: "A, with comma", Size: 2}, {Name: "B", Size: 1}},
	}
}

func TestWriter_Files(t *testing.T) {
	dir := t.TempDir()

	path, err := NewWriter().Write(context.Background(), dir, reportTime, sampleResult(allocation.SeedOf(42)))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2025_01_04 20_12_09 RandomizationAllocation.csv"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Participant ID,Group Name\n1,B\n2,\"A, with comma\"\n3,\"A, with comma\"\n", string(content))

	seed, err := os.ReadFile(filepath.Join(dir, "2025_01_04 20_12_09 RandomSeed.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Random Seed\n42\n", string(seed))

	groups, err := os.ReadFile(filepath.Join(dir, "2025_01_04 20_12_09 Groups.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Group Name,Sample Size\n\"A, with comma\",2\nB,1\n", string(groups))
}

func TestWriter_NoSeed(t *testing.T) {
	dir := t.TempDir()

	_, err := NewWriter().Write(context.Background(), dir, reportTime, sampleResult(allocation.NoSeed()))
	require.NoError(t, err)

	seed, err := os.ReadFile(filepath.Join(dir, "2025_01_04 20_12_09 RandomSeed.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Random Seed\nNo seed used\n", string(seed))
}

func TestWriter_MissingDirectory(t *testing.T) {
	_, err := NewWriter().Write(context.Background(), filepath.Join(t.TempDir(), "nope"), reportTime, sampleResult(allocation.NoSeed()))
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	original := sampleResult(allocation.SeedOf(9223372036854775807))

	path, err := NewWriter().Write(ctx, t.TempDir(), reportTime, original)
	require.NoError(t, err)

	read, err := NewReader().Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, original, read)
}

func TestReader_GroupsSidecarOptional(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	path, err := NewWriter().Write(ctx, dir, reportTime, sampleResult(allocation.NoSeed()))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "2025_01_04 20_12_09 Groups.csv")))

	read, err := NewReader().Read(ctx, path)
	require.NoError(t, err)
	assert.Len(t, read.Allocations, 3)
	assert.Empty(t, read.Groups)
}

func TestReader_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := NewReader().Read(ctx, filepath.Join(dir, "report.csv"))
	assert.ErrorContains(t, err, "RandomizationAllocation.csv")

	path, err := NewWriter().Write(ctx, dir, reportTime, sampleResult(allocation.SeedOf(7)))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "2025_01_04 20_12_09 RandomSeed.csv")))
	_, err = NewReader().Read(ctx, path)
	assert.ErrorContains(t, err, "RandomSeed.csv")
}

func TestSidecarPaths(t *testing.T) {
	seedPath, groupsPath, err := SidecarPaths(filepath.Join("out", "2025_01_04 20_12_09 RandomizationAllocation.csv"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "2025_01_04 20_12_09 RandomSeed.csv"), seedPath)
	assert.Equal(t, filepath.Join("out", "2025_01_04 20_12_09 Groups.csv"), groupsPath)
}

func TestWriter_SidecarFailureRemovesWrittenFiles(t *testing.T) {
	tests := []struct {
		name    string
		blocked string
	}{
		{"seed sidecar", "2025_01_04 20_12_09 RandomSeed.csv"},
		{"groups sidecar", "2025_01_04 20_12_09 Groups.csv"},
	}

	for _, tt := range tests {
		dir := t.TempDir()
		// A directory at the sidecar path makes creating the file fail
		require.NoError(t, os.Mkdir(filepath.Join(dir, tt.blocked), 0o755))

		_, err := NewWriter().Write(context.Background(), dir, reportTime, sampleResult(allocation.SeedOf(42)))
		require.Error(t, err, tt.name)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1, tt.name)
		assert.Equal(t, tt.blocked, entries[0].Name(), "%s: only the blocking directory may remain", tt.name)
	}
}
