package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"randalloc/domain/allocation"
	"randalloc/ports"
)

// Ensure the readers implement their ports
var (
	_ ports.ReportReader     = (*ReportReader)(nil)
	_ ports.GroupSheetReader = (*DataReader)(nil)
)

// DataReader reads group definitions from Excel and CSV files
type DataReader struct {
	logger *slog.Logger
}

// NewDataReader creates a new group sheet reader
func NewDataReader() *DataReader {
	return &DataReader{logger: slog.Default().With("component", "excel")}
}

// ReadGroups reads a "Group Name" / "Sample Size" table. For workbooks the Groups sheet is used
// when present (so a previous report can be re-imported), otherwise the first sheet.
func (r *DataReader) ReadGroups(ctx context.Context, path string) ([]allocation.GroupDefinition, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("group file not found: %s: %w", path, err)
	}

	var data *SheetData
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		data, err = readCSVData(path)
	case ".xlsx":
		data, err = readGroupSheet(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	nameCol, err := findColumn(data.Headers, ColGroupName)
	if err != nil {
		return nil, err
	}
	sizeCol, err := findColumn(data.Headers, ColSampleSize)
	if err != nil {
		return nil, err
	}

	groups := make([]allocation.GroupDefinition, 0, len(data.Rows))
	for i, row := range data.Rows {
		name := row[nameCol]
		sizeText := row[sizeCol]
		if name == "" && sizeText == "" {
			continue
		}
		size, err := strconv.Atoi(sizeText)
		if err != nil {
			// Row numbers are 1-based and count the header
			return nil, fmt.Errorf("row %d: %w: %q is not an integer", i+2, allocation.ErrInvalidGroupSize, sizeText)
		}
		groups = append(groups, allocation.GroupDefinition{Name: name, Size: size})
	}

	r.logger.Debug("group sheet read", "path", path, "groups", len(groups))
	return groups, nil
}

func readGroupSheet(path string) (*SheetData, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := SheetGroups
	if !hasSheet(f, sheet) {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("sheet %s must have a header row", sheet)
	}
	return processRows(rows), nil
}

// readCSVData reads CSV data into structured format
func readCSVData(path string) (*SheetData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("CSV file must have a header row")
	}
	return processRows(rows), nil
}

// processRows converts raw string rows into SheetData keyed by trimmed header
func processRows(rows [][]string) *SheetData {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rowData := make(RawRowData, len(headers))
		for j, cell := range rows[i] {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &SheetData{Headers: headers, Rows: dataRows}
}

// findColumn matches a header case-insensitively and returns the header as written
func findColumn(headers []string, want string) (string, error) {
	for _, h := range headers {
		if strings.EqualFold(h, want) {
			return h, nil
		}
	}
	return "", fmt.Errorf("missing %q column (found %s)", want, strings.Join(headers, ", "))
}

func hasSheet(f *excelize.File, sheet string) bool {
	idx, err := f.GetSheetIndex(sheet)
	return err == nil && idx != -1
}

// ReportReader loads allocation workbooks written by ReportWriter
type ReportReader struct{}

// NewReportReader creates a new xlsx report reader
func NewReportReader() *ReportReader {
	return &ReportReader{}
}

// Read parses the allocation, seed and group sheets of a report. The Groups sheet is optional
// so two-sheet reports written before it existed can be read as well.
func (r *ReportReader) Read(ctx context.Context, path string) (*allocation.Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	allocRows, err := readSheet(f, SheetAllocation)
	if err != nil {
		return nil, err
	}
	data := processRows(allocRows)
	idCol, err := findColumn(data.Headers, ColParticipantID)
	if err != nil {
		return nil, err
	}
	nameCol, err := findColumn(data.Headers, ColGroupName)
	if err != nil {
		return nil, err
	}

	result := &allocation.Result{Allocations: make([]allocation.Record, 0, len(data.Rows))}
	for i, row := range data.Rows {
		id, err := strconv.Atoi(row[idCol])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid participant id %q", SheetAllocation, i+2, row[idCol])
		}
		result.Allocations = append(result.Allocations, allocation.Record{ParticipantID: id, GroupName: row[nameCol]})
	}

	seedRows, err := readSheet(f, SheetSeed)
	if err != nil {
		return nil, err
	}
	if len(seedRows) < 2 || len(seedRows[1]) == 0 {
		return nil, fmt.Errorf("%s sheet has no value", SheetSeed)
	}
	result.Seed, err = allocation.ParseSeedCell(seedRows[1][0])
	if err != nil {
		return nil, err
	}

	if hasSheet(f, SheetGroups) {
		groupRows, err := readSheet(f, SheetGroups)
		if err != nil {
			return nil, err
		}
		groups := processRows(groupRows)
		for i, row := range groups.Rows {
			size, err := strconv.Atoi(row[ColSampleSize])
			if err != nil {
				return nil, fmt.Errorf("%s row %d: invalid sample size %q", SheetGroups, i+2, row[ColSampleSize])
			}
			result.Groups = append(result.Groups, allocation.GroupDefinition{Name: row[ColGroupName], Size: size})
		}
	}

	return result, nil
}

func readSheet(f *excelize.File, sheet string) ([][]string, error) {
	if !hasSheet(f, sheet) {
		return nil, fmt.Errorf("report has no %s sheet", sheet)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet: %w", sheet, err)
	}
	return rows, nil
}
