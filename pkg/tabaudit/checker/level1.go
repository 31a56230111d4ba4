package checker

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// Messages shared by the Support-gated checks.
const (
	msgNotApplicable = "not applicable to this file format"
	msgUnavailable   = "cannot be verified automatically for legacy .xls; inspect manually"
)

// level1Capabilities binds the Level-1 capability set. Capability names
// match the external rule files.
func level1Capabilities(c *Checker) map[string]CheckFunc {
	return map[string]CheckFunc{
		"check_valid_file_format":                c.checkValidFileFormat,
		"check_no_images_or_objects":             c.checkNoImagesOrObjects,
		"check_one_table_per_sheet":              c.checkOneTablePerSheet,
		"check_no_hidden_rows_or_columns":        c.checkNoHiddenRowsOrColumns,
		"check_no_notes_outside_table":           c.checkNoNotesOutsideTable,
		"check_no_merged_cells":                  c.checkNoMergedCells,
		"check_no_format_based_semantics":        c.checkNoFormatBasedSemantics,
		"check_no_whitespace_formatting":         c.checkNoWhitespaceFormatting,
		"check_single_data_per_cell":             c.checkSingleDataPerCell,
		"check_no_platform_dependent_characters": c.checkNoPlatformDependentCharacters,
		"check_format_native_structure":          c.checkFormatNativeStructure,
	}
}

func (c *Checker) checkValidFileFormat(_ context.Context, _ *model.TableContext) (bool, string, error) {
	return true, c.handler.DescribeFormat(), nil
}

func (c *Checker) checkNoImagesOrObjects(_ context.Context, _ *model.TableContext) (bool, string, error) {
	switch c.handler.Support(OpDrawings) {
	case SupportNone:
		return true, msgNotApplicable, nil
	case SupportUnavailable:
		return false, "embedded objects " + msgUnavailable, nil
	}
	found, err := c.handler.Drawings()
	if err != nil {
		return false, "", err
	}
	if len(found) > 0 {
		return false, "embedded objects detected: " + exampleList(found), nil
	}
	return true, "no images, shapes or text boxes found", nil
}

// checkOneTablePerSheet looks for a second table inside the data region.
// Two signals, both format-independent: a run of two or more blank source
// rows splitting the data (blank rows were dropped at load, so they show as
// gaps in the source row numbers), and header-like rows far apart inside
// the data.
func (c *Checker) checkOneTablePerSheet(_ context.Context, tc *model.TableContext) (bool, string, error) {
	if tc.DataRowCount() < 3 {
		return true, "too little data to split into multiple tables", nil
	}

	gaps := 0
	for i := 1; i < len(tc.SourceRows); i++ {
		if tc.SourceRows[i]-tc.SourceRows[i-1] > 2 {
			gaps++
		}
	}
	if gaps > 0 {
		return false, fmt.Sprintf("data region is split by blank rows in %d place(s), suggesting multiple tables", gaps), nil
	}

	var headerLike []int
	for i, row := range tc.Data {
		nonBlank, numeric := 0, 0
		for _, cell := range row {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			nonBlank++
			if numericLike(cell) {
				numeric++
			}
		}
		if nonBlank >= 2 && float64(numeric)/float64(nonBlank) < 0.5 {
			headerLike = append(headerLike, i)
		}
	}
	for i := 1; i < len(headerLike); i++ {
		if headerLike[i]-headerLike[i-1] > 3 {
			return false, fmt.Sprintf(
				"header-like rows at data rows %d and %d suggest a second table",
				tc.DataSourceRow(headerLike[i-1]), tc.DataSourceRow(headerLike[i])), nil
		}
	}
	return true, "a single table per sheet", nil
}

func (c *Checker) checkNoHiddenRowsOrColumns(_ context.Context, tc *model.TableContext) (bool, string, error) {
	switch c.handler.Support(OpHiddenRowsCols) {
	case SupportNone:
		return true, msgNotApplicable, nil
	case SupportUnavailable:
		return false, "hidden rows and columns " + msgUnavailable, nil
	}
	rows, err := c.handler.HiddenRows(tc.SheetName)
	if err != nil {
		return false, "", err
	}
	cols, err := c.handler.HiddenColumns(tc.SheetName)
	if err != nil {
		return false, "", err
	}
	if len(rows) == 0 && len(cols) == 0 {
		return true, "no hidden rows or columns", nil
	}
	var parts []string
	if len(rows) > 0 {
		refs := make([]string, len(rows))
		for i, r := range rows {
			refs[i] = fmt.Sprintf("row %d", r)
		}
		parts = append(parts, exampleList(refs))
	}
	if len(cols) > 0 {
		refs := make([]string, len(cols))
		for i, col := range cols {
			refs[i] = "column " + col
		}
		parts = append(parts, exampleList(refs))
	}
	return false, "hidden rows/columns present: " + strings.Join(parts, "; "), nil
}

func (c *Checker) checkNoNotesOutsideTable(ctx context.Context, tc *model.TableContext) (bool, string, error) {
	var texts []string
	for _, region := range [][][]string{tc.UpperAnnotations, tc.LowerAnnotations} {
		for _, row := range region {
			for _, cell := range row {
				if s := strings.TrimSpace(cell); s != "" {
					texts = append(texts, s)
				}
			}
		}
	}
	if len(texts) == 0 {
		return true, "no notes or remarks outside the table", nil
	}

	prompt := fmt.Sprintf(`The following texts sit outside the table body of a spreadsheet.
Do they look like notes, remarks or explanations (as opposed to stray data)?
Answer with exactly one word: YES or NO.

%s`, strings.Join(texts[:min(len(texts), 10)], "\n"))
	verdict := c.judgeOrDefault(ctx, prompt, "YES")
	if strings.Contains(strings.ToUpper(verdict), "NO") {
		return true, "text outside the table was judged not to be annotation", nil
	}
	return false, "notes outside the table: " + exampleList(texts), nil
}

func (c *Checker) checkNoMergedCells(_ context.Context, tc *model.TableContext) (bool, string, error) {
	switch c.handler.Support(OpMergedCells) {
	case SupportNone:
		return true, msgNotApplicable, nil
	case SupportUnavailable:
		return false, "merged cells " + msgUnavailable, nil
	}
	start := 0
	if len(tc.RowIndices.HeaderRows) > 0 {
		start = tc.RowIndices.HeaderRows[0]
	}
	ranges, err := c.handler.MergedRanges(tc.SheetName, start, tc.RowIndices.DataEnd)
	if err != nil {
		return false, "", err
	}
	if len(ranges) > 0 {
		return false, "merged cells detected: " + exampleList(ranges), nil
	}
	return true, "no merged cells", nil
}

func (c *Checker) checkNoFormatBasedSemantics(_ context.Context, tc *model.TableContext) (bool, string, error) {
	switch c.handler.Support(OpCellStyling) {
	case SupportNone:
		return true, msgNotApplicable, nil
	case SupportUnavailable:
		return false, "cell styling " + msgUnavailable, nil
	}
	start := 0
	if len(tc.RowIndices.HeaderRows) > 0 {
		start = tc.RowIndices.HeaderRows[0]
	}
	flagged, err := c.handler.StyledCells(tc.SheetName, start, tc.RowIndices.DataEnd, 50)
	if err != nil {
		return false, "", err
	}
	if len(flagged) > 0 {
		return false, "visual styling may carry meaning: " + exampleList(flagged), nil
	}
	return true, "no formatting-based semantics detected", nil
}

func (c *Checker) checkNoWhitespaceFormatting(ctx context.Context, tc *model.TableContext) (bool, string, error) {
	var samples []string
	scan := func(rowIdx int, row []string) {
		for colIdx, cell := range row {
			if cell == "" {
				continue
			}
			if strings.Contains(cell, "　") ||
				strings.HasPrefix(cell, " ") || strings.HasSuffix(cell, " ") {
				samples = append(samples, fmt.Sprintf("%s: %q",
					cellRef(colIdx+1, rowIdx), strings.TrimSpace(cell)))
			}
		}
	}
	for i, row := range tc.Data {
		scan(tc.DataSourceRow(i), row)
		if len(samples) >= 10 {
			break
		}
	}
	if len(samples) == 0 {
		return true, "no layout-purpose whitespace found", nil
	}

	prompt := fmt.Sprintf(`The following spreadsheet cell values contain full-width or
leading/trailing spaces. Is whitespace being used for visual alignment
(padding, indentation) rather than as part of the value?
Answer with exactly one word: YES or NO.

%s`, strings.Join(samples, "\n"))
	verdict := c.judgeOrDefault(ctx, prompt, "YES")
	if strings.Contains(strings.ToUpper(verdict), "NO") {
		return true, "whitespace in values was judged not to be layout", nil
	}
	return false, "layout-purpose whitespace suspected: " + exampleList(samples), nil
}

// multiDatumRe matches separators that pack several values into one cell.
var multiDatumRe = regexp.MustCompile(`[\n,;/、；／]`)

func (c *Checker) checkSingleDataPerCell(_ context.Context, tc *model.TableContext) (bool, string, error) {
	var samples []string
	for i, row := range tc.Data {
		for colIdx, cell := range row {
			if cell != "" && multiDatumRe.MatchString(cell) {
				samples = append(samples, fmt.Sprintf("%s: %q",
					cellRef(colIdx+1, tc.DataSourceRow(i)), cell))
			}
		}
	}
	if len(samples) > 0 {
		return false, "cells holding more than one datum: " + exampleList(samples), nil
	}
	return true, "one datum per cell", nil
}

func (c *Checker) checkNoPlatformDependentCharacters(_ context.Context, tc *model.TableContext) (bool, string, error) {
	var samples []string
	for colIdx, label := range tc.Header.Labels {
		if hasPlatformDependentChars(label) {
			samples = append(samples, fmt.Sprintf("header %s: %q", columnLetter(colIdx+1), label))
		}
	}
	for i, row := range tc.Data {
		for colIdx, cell := range row {
			if hasPlatformDependentChars(cell) {
				samples = append(samples, fmt.Sprintf("%s: %q",
					cellRef(colIdx+1, tc.DataSourceRow(i)), cell))
			}
		}
	}
	if len(samples) > 0 {
		return false, "platform-dependent characters present: " + exampleList(samples), nil
	}
	return true, "no platform-dependent characters", nil
}

func (c *Checker) checkFormatNativeStructure(_ context.Context, tc *model.TableContext) (bool, string, error) {
	issues, err := c.handler.NativeStructureIssues(tc)
	if err != nil {
		return false, "", err
	}
	if len(issues) > 0 {
		return false, exampleList(issues), nil
	}
	return true, "file structure is sound for its format", nil
}
