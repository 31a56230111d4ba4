package checker

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// level2Capabilities binds the Level-2 capability set.
func level2Capabilities(c *Checker) map[string]CheckFunc {
	return map[string]CheckFunc{
		"check_numeric_columns_only":          c.checkNumericColumnsOnly,
		"check_separate_other_detail_columns": c.checkSeparateOtherDetailColumns,
		"check_no_missing_column_headers":     c.checkNoMissingColumnHeaders,
		"check_handling_of_missing_values":    c.checkHandlingOfMissingValues,
	}
}

// numericColumnThreshold is the share of numeric-looking values above which
// a column counts as a numeric column.
const numericColumnThreshold = 0.8

// checkNumericColumnsOnly flags columns that are clearly numeric but carry
// stray non-numeric values (units, footnote marks, "about 30" and friends).
func (c *Checker) checkNumericColumnsOnly(_ context.Context, tc *model.TableContext) (bool, string, error) {
	var problems []string
	for col := 0; col < tc.ColCount(); col++ {
		var values []string
		for _, v := range tc.Column(col) {
			if strings.TrimSpace(v) != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		numeric := 0
		for _, v := range values {
			if numericLike(v) {
				numeric++
			}
		}
		if float64(numeric)/float64(len(values)) < numericColumnThreshold || numeric == len(values) {
			continue
		}
		for _, v := range values {
			if !numericLike(v) {
				problems = append(problems, fmt.Sprintf("%q has non-numeric value %q",
					c.columnLabel(tc, col), v))
				break
			}
		}
	}
	if len(problems) > 0 {
		return false, "numeric columns contain non-numeric values: " + exampleList(problems), nil
	}
	return true, "numeric columns hold numbers only", nil
}

// checkSeparateOtherDetailColumns flags choice columns whose label suggests
// free-text "other" responses mixed in with the coded choices.
func (c *Checker) checkSeparateOtherDetailColumns(_ context.Context, tc *model.TableContext) (bool, string, error) {
	var problems []string
	for _, label := range tc.Header.Labels {
		lower := strings.ToLower(label)
		isOther := strings.Contains(label, "その他") || strings.Contains(lower, "other")
		isDetail := strings.Contains(label, "自由") || strings.Contains(label, "記述") ||
			strings.Contains(lower, "detail") || strings.Contains(lower, "free")
		if isOther && !isDetail {
			problems = append(problems, fmt.Sprintf("%q", label))
		}
	}
	if len(problems) > 0 {
		return false, "columns possibly mixing coded choices with free-text answers: " + exampleList(problems), nil
	}
	return true, "free-text details are separated from coded choices", nil
}

// unclearLabelRe matches label shapes that rarely explain their column:
// bare codes like "a1", "Q3", "ABC".
var unclearLabelRe = regexp.MustCompile(`^[A-Za-z]{1,3}[0-9]*$`)

// checkNoMissingColumnHeaders requires every column to carry a meaningful
// label. Placeholder and synthetic labels fail outright; short code-like
// labels are suspects confirmed (or cleared) by the semantic judge.
func (c *Checker) checkNoMissingColumnHeaders(ctx context.Context, tc *model.TableContext) (bool, string, error) {
	if tc.Header.Synthetic {
		return false, "column header could not be reconciled with the data; labels are positional fallbacks", nil
	}
	var missing, unclear []string
	for i, label := range tc.Header.Labels {
		if label == model.PlaceholderLabel {
			missing = append(missing, "column "+columnLetter(i+1))
			continue
		}
		if !unclearLabelRe.MatchString(label) {
			continue
		}
		prompt := fmt.Sprintf(`Is the following text a clear, self-explanatory column header
for a data table? Answer with exactly one word: CLEAR or UNCLEAR.

Header: %q`, label)
		verdict := c.judgeOrDefault(ctx, prompt, "UNCLEAR")
		if strings.Contains(strings.ToUpper(verdict), "UNCLEAR") {
			unclear = append(unclear, fmt.Sprintf("%q", label))
		}
	}
	if len(missing) == 0 && len(unclear) == 0 {
		return true, "every column has a meaningful header", nil
	}
	return false, "missing or unclear column headers: " + exampleList(append(missing, unclear...)), nil
}

// missingMarkers are the conventional explicit missing-value tokens.
var missingMarkers = map[string]bool{
	"-": true, "–": true, "－": true, "ー": true, "−": true,
	"N/A": true, "NA": true, "n/a": true, "na": true,
	"null": true, "NULL": true, "不明": true, "なし": true, "欠損": true,
}

// checkHandlingOfMissingValues requires a single explicit representation
// for missing data: unmarked blanks fail, and so does mixing several
// markers (or markers and blanks) within one column. Cells that exist only
// as loader padding of a short row are not blanks; ragged rows are the
// format-native structure check's finding.
func (c *Checker) checkHandlingOfMissingValues(_ context.Context, tc *model.TableContext) (bool, string, error) {
	var blankCols, mixedCols []string
	for col := 0; col < tc.ColCount(); col++ {
		tokens := map[string]bool{}
		blanks := false
		for row, cells := range tc.Data {
			if tc.CellPadded(row, col) {
				continue
			}
			v := ""
			if col < len(cells) {
				v = cells[col]
			}
			t := strings.TrimSpace(v)
			if t == "" {
				blanks = true
			} else if missingMarkers[t] {
				tokens[t] = true
			}
		}
		label := c.columnLabel(tc, col)
		switch {
		case blanks && len(tokens) > 0, len(tokens) > 1:
			mixedCols = append(mixedCols, fmt.Sprintf("%q", label))
		case blanks:
			blankCols = append(blankCols, fmt.Sprintf("%q", label))
		}
	}
	if len(mixedCols) > 0 {
		return false, "inconsistent missing-value representation in columns: " + exampleList(mixedCols), nil
	}
	if len(blankCols) > 0 {
		return false, "columns with unmarked blank cells (make missing values explicit): " + exampleList(blankCols), nil
	}
	return true, "missing values are represented consistently", nil
}

// columnLabel returns the header label for a column, or its letter when the
// header does not reach that far.
func (c *Checker) columnLabel(tc *model.TableContext, col int) string {
	if col >= 0 && col < len(tc.Header.Labels) {
		return tc.Header.Labels[col]
	}
	return "column " + columnLetter(col+1)
}
