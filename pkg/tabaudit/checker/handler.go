package checker

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// MaxExamples caps how many offending cells a failure message cites.
const MaxExamples = 5

// LeafOp names a format-specific leaf operation a generic check delegates.
type LeafOp string

const (
	// OpDrawings detects embedded images, shapes and text boxes.
	OpDrawings LeafOp = "drawings"
	// OpMergedCells lists merged cell ranges.
	OpMergedCells LeafOp = "merged_cells"
	// OpHiddenRowsCols lists hidden rows and columns.
	OpHiddenRowsCols LeafOp = "hidden_rows_cols"
	// OpCellStyling lists visually styled cells.
	OpCellStyling LeafOp = "cell_styling"
)

// Support grades a handler's fidelity for one leaf operation.
type Support int

const (
	// SupportFull means the operation is fully inspectable.
	SupportFull Support = iota
	// SupportNone means the concept does not exist for the format; the
	// check auto-passes as not applicable.
	SupportNone
	// SupportUnavailable means the format has the concept but the reader
	// cannot inspect it; the check fails with an explicit caveat.
	SupportUnavailable
)

// AuxSheet is a non-main sheet offered to the Level-3 auxiliary-sheet
// checks: its name plus a bounded text preview.
type AuxSheet struct {
	Name    string
	Preview []string
}

// Handler is the per-format leaf of the checker: everything that needs a
// real workbook handle or format knowledge lives here, so the check bodies
// stay format-agnostic. Handlers are read-only and safe for concurrent use.
type Handler interface {
	// Format identifies the handled file format.
	Format() model.Format
	// Extensions returns the lowercase extensions (dot included) this
	// handler claims; the factory scans these in registration order.
	Extensions() []string
	// DescribeFormat returns the check_valid_file_format message,
	// including the fidelity caveat for degraded formats.
	DescribeFormat() string
	// Support grades the handler's fidelity for a leaf operation.
	Support(op LeafOp) Support
	// Drawings lists embedded objects (images, shapes, text boxes).
	Drawings() ([]string, error)
	// MergedRanges lists merged ranges intersecting grid rows
	// [startRow, endRow] (0-based, inclusive, indices into the loaded
	// grid). Handlers map grid rows to native sheet coordinates
	// themselves; callers never see sheet row numbers here.
	MergedRanges(sheet string, startRow, endRow int) ([]string, error)
	// HiddenRows lists hidden row numbers (1-based) of the sheet.
	HiddenRows(sheet string) ([]int, error)
	// HiddenColumns lists hidden column letters of the sheet.
	HiddenColumns(sheet string) ([]string, error)
	// StyledCells lists up to limit cells in rows [startRow, endRow]
	// whose visual styling could carry meaning (bold, color, fill, ...).
	StyledCells(sheet string, startRow, endRow, limit int) ([]string, error)
	// AuxiliarySheets returns every sheet except mainSheet with a
	// bounded preview, for the codebook/master/metadata checks.
	AuxiliarySheets(mainSheet string) []AuxSheet
	// NativeStructureIssues runs the format-native structural check and
	// returns its findings.
	NativeStructureIssues(tc *model.TableContext) ([]string, error)
	// Close releases the workbook handle.
	Close() error
}

// cellRef formats 1-based coordinates as an A1-style reference.
func cellRef(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Sprintf("R%dC%d", row, col)
	}
	return name
}

// columnLetter converts a 1-based column number to its letter form.
func columnLetter(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return strconv.Itoa(col)
	}
	return name
}

// platformDependentRe matches the JIS vendor glyphs that render differently
// (or not at all) across platforms: enclosed numerals, roman numerals and
// the circled/abbreviation symbols.
var platformDependentRe = regexp.MustCompile("[①-⑳⓪-⓿Ⅰ-Ⅻⅰ-ⅻ㊤㊥㊦㊧㊨㈱㈲㈹℡〒]")

// hasPlatformDependentChars reports whether s contains platform-dependent
// characters.
func hasPlatformDependentChars(s string) bool {
	return platformDependentRe.MatchString(s)
}

// numericLike reports whether s reads as a number (int or decimal, optional
// sign, grouping commas tolerated).
func numericLike(s string) bool {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// exampleList renders up to MaxExamples entries for a failure message,
// appending an ellipsis marker when truncated.
func exampleList(items []string) string {
	if len(items) <= MaxExamples {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:MaxExamples], ", ") + fmt.Sprintf(", ... (%d total)", len(items))
}
