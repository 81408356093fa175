package excel

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"randalloc/domain/allocation"
	"randalloc/domain/run"
	"randalloc/internal/summary"
	"randalloc/ports"
)

// Ensure ReportWriter implements ports.ReportWriter
var _ ports.ReportWriter = (*ReportWriter)(nil)

// ReportWriter writes an allocation workbook with excelize
type ReportWriter struct {
	logger *slog.Logger
}

// NewReportWriter creates a new xlsx report writer
func NewReportWriter() *ReportWriter {
	return &ReportWriter{logger: slog.Default().With("component", "excel")}
}

// Format returns run.FormatXLSX
func (w *ReportWriter) Format() run.ReportFormat {
	return run.FormatXLSX
}

// Write saves the workbook into dir and returns its path
func (w *ReportWriter) Write(ctx context.Context, dir string, at time.Time, result *allocation.Result) (string, error) {
	path := filepath.Join(dir, run.ReportFileName(at, run.FormatXLSX))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetAllocation); err != nil {
		return "", err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return "", err
	}

	allocRows := make([][]interface{}, len(result.Allocations))
	for i, rec := range result.Allocations {
		allocRows[i] = []interface{}{rec.ParticipantID, rec.GroupName}
	}
	if err := writeTable(f, SheetAllocation, headerStyle, []string{ColParticipantID, ColGroupName}, allocRows); err != nil {
		return "", fmt.Errorf("failed to write %s sheet: %w", SheetAllocation, err)
	}

	if err := addSheet(f, SheetSeed); err != nil {
		return "", err
	}
	if err := writeTable(f, SheetSeed, headerStyle, []string{ColRandomSeed}, [][]interface{}{{seedCell(result.Seed)}}); err != nil {
		return "", fmt.Errorf("failed to write %s sheet: %w", SheetSeed, err)
	}

	if err := addSheet(f, SheetGroups); err != nil {
		return "", err
	}
	groupRows := make([][]interface{}, len(result.Groups))
	for i, g := range result.Groups {
		groupRows[i] = []interface{}{g.Name, g.Size}
	}
	if err := writeTable(f, SheetGroups, headerStyle, []string{ColGroupName, ColSampleSize}, groupRows); err != nil {
		return "", fmt.Errorf("failed to write %s sheet: %w", SheetGroups, err)
	}

	summaries, err := summary.Summarize(result)
	if err != nil {
		return "", err
	}
	if err := addSheet(f, SheetSummary); err != nil {
		return "", err
	}
	summaryRows := make([][]interface{}, len(summaries))
	for i, s := range summaries {
		summaryRows[i] = []interface{}{s.GroupName, s.Count, s.Share, s.MeanID, s.MedianID}
	}
	if err := writeTable(f, SheetSummary, headerStyle,
		[]string{ColGroupName, ColCount, ColShare, ColMeanID, ColMedianID}, summaryRows); err != nil {
		return "", fmt.Errorf("failed to write %s sheet: %w", SheetSummary, err)
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return "", err
	}

	w.logger.Debug("workbook saved", "path", path, "rows", len(allocRows))
	return path, nil
}

func addSheet(f *excelize.File, sheet string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create %s sheet: %w", sheet, err)
	}
	return nil
}

// writeTable writes a bold header row followed by data rows starting at A1
func writeTable(f *excelize.File, sheet string, headerStyle int, headers []string, rows [][]interface{}) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", lastCol, headerStyle); err != nil {
		return err
	}

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	firstCol, _ := excelize.ColumnNumberToName(1)
	endCol, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(sheet, firstCol, endCol, 18)
}

// seedCell returns the sentinel, a number, or text for seeds a spreadsheet number would round
func seedCell(seed allocation.Seed) interface{} {
	v, ok := seed.Value()
	if !ok {
		return allocation.NoSeedSentinel
	}
	if v > maxExactSeed || v < -maxExactSeed {
		return strconv.FormatInt(v, 10)
	}
	return v
}
