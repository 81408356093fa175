package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"randalloc/domain/allocation"
)

func sampleResult(seed allocation.Seed) *allocation.Result {
	return &allocation.Result{
		Allocations: []allocation.Record{
			{ParticipantID: 1, GroupName: "Treatment"},
			{ParticipantID: 2, GroupName: "Control"},
			{ParticipantID: 3, GroupName: "Control"},
		},
		Seed:   seed,
		Groups: []allocation.GroupDefinition{{Name: "Control", Size: 2}, {Name: "Treatment", Size: 1}},
	}
}

var reportTime = time.Date(2025, 1, 4, 20, 12, 9, 0, time.Local)

func TestReportWriter_Layout(t *testing.T) {
	dir := t.TempDir()

	path, err := NewReportWriter().Write(context.Background(), dir, reportTime, sampleResult(allocation.SeedOf(42)))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2025_01_04 20_12_09 RandomizationAllocation.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetAllocation, SheetSeed, SheetGroups, SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetAllocation)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Participant ID", "Group Name"},
		{"1", "Treatment"},
		{"2", "Control"},
		{"3", "Control"},
	}, rows)

	seed, err := f.GetCellValue(SheetSeed, "A2")
	require.NoError(t, err)
	assert.Equal(t, "42", seed)
	header, err := f.GetCellValue(SheetSeed, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Random Seed", header)

	groups, err := f.GetRows(SheetGroups)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Group Name", "Sample Size"}, {"Control", "2"}, {"Treatment", "1"}}, groups)

	summaryRows, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, summaryRows, 3)
	assert.Equal(t, []string{"Group Name", "Count", "Share", "Mean ID", "Median ID"}, summaryRows[0])
	assert.Equal(t, "Control", summaryRows[1][0])
	assert.Equal(t, "2", summaryRows[1][1])
}

func TestReportWriter_NoSeedSentinel(t *testing.T) {
	path, err := NewReportWriter().Write(context.Background(), t.TempDir(), reportTime, sampleResult(allocation.NoSeed()))
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	seed, err := f.GetCellValue(SheetSeed, "A2")
	require.NoError(t, err)
	assert.Equal(t, "No seed used", seed)
}

func TestReportWriter_MissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := NewReportWriter().Write(context.Background(), dir, reportTime, sampleResult(allocation.SeedOf(1)))
	assert.Error(t, err)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "writer must not create the output directory")
}

func TestReportRoundTrip(t *testing.T) {
	ctx := context.Background()

	for _, seed := range []allocation.Seed{allocation.SeedOf(42), allocation.SeedOf(9223372036854775807), allocation.NoSeed()} {
		original := sampleResult(seed)
		path, err := NewReportWriter().Write(ctx, t.TempDir(), reportTime, original)
		require.NoError(t, err)

		read, err := NewReportReader().Read(ctx, path)
		require.NoError(t, err)

		assert.Equal(t, original.Allocations, read.Allocations)
		assert.Equal(t, original.Seed, read.Seed, "seed %s", seed)
		assert.Equal(t, original.Groups, read.Groups)
	}
}

func TestReportReader_WithoutGroupsSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", SheetAllocation))
	require.NoError(t, f.SetSheetRow(SheetAllocation, "A1", &[]interface{}{"Participant ID", "Group Name"}))
	require.NoError(t, f.SetSheetRow(SheetAllocation, "A2", &[]interface{}{1, "B"}))
	require.NoError(t, f.SetSheetRow(SheetAllocation, "A3", &[]interface{}{2, "A"}))
	_, err := f.NewSheet(SheetSeed)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(SheetSeed, "A1", &[]interface{}{"Random Seed"}))
	require.NoError(t, f.SetSheetRow(SheetSeed, "A2", &[]interface{}{"No seed used"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	result, err := NewReportReader().Read(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, result.Allocations, 2)
	assert.False(t, result.Seed.IsSet())
	assert.Empty(t, result.Groups)
}

func TestReportReader_MissingSeedSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", SheetAllocation))
	require.NoError(t, f.SetSheetRow(SheetAllocation, "A1", &[]interface{}{"Participant ID", "Group Name"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := NewReportReader().Read(context.Background(), path)
	assert.ErrorContains(t, err, SheetSeed)
}
