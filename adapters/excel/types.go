package excel

// Sheet and column names shared by the writer and the reader. The first two sheets and their
// headers are the report layout users already rely on; Groups and Summary come after them.
const (
	SheetAllocation = "Randomization"
	SheetSeed       = "Random Seed"
	SheetGroups     = "Groups"
	SheetSummary    = "Summary"

	ColParticipantID = "Participant ID"
	ColGroupName     = "Group Name"
	ColRandomSeed    = "Random Seed"
	ColSampleSize    = "Sample Size"
	ColCount         = "Count"
	ColShare         = "Share"
	ColMeanID        = "Mean ID"
	ColMedianID      = "Median ID"
)

// RawRowData represents a row of raw sheet data as header -> cell text
type RawRowData map[string]string

// SheetData represents one sheet read as a header row plus data rows
type SheetData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// maxExactSeed is the largest magnitude a spreadsheet number holds without rounding (2^53)
const maxExactSeed = 1 << 53
