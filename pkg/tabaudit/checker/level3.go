package checker

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// level3Capabilities binds the Level-3 capability set.
func level3Capabilities(c *Checker) map[string]CheckFunc {
	return map[string]CheckFunc{
		"check_code_format_for_choices":     c.checkCodeFormatForChoices,
		"check_codebook_exists":             c.checkCodebookExists,
		"check_question_master_exists":      c.checkQuestionMasterExists,
		"check_metadata_presence":           c.checkMetadataPresence,
		"check_long_format_if_many_columns": c.checkLongFormatIfManyColumns,
	}
}

// choiceCardinalityLimit is the distinct-value count below which a column
// is treated as a choice (categorical) column.
const choiceCardinalityLimit = 10

// checkCodeFormatForChoices wants categorical columns to carry numeric
// codes, with the labels kept in a codebook, rather than literal labels.
func (c *Checker) checkCodeFormatForChoices(_ context.Context, tc *model.TableContext) (bool, string, error) {
	if tc.DataRowCount() < choiceCardinalityLimit {
		return true, "too few rows to distinguish choice columns", nil
	}
	var literal []string
	for col := 0; col < tc.ColCount(); col++ {
		distinct := map[string]bool{}
		for _, v := range tc.Column(col) {
			if t := strings.TrimSpace(v); t != "" {
				distinct[t] = true
			}
		}
		if len(distinct) < 2 || len(distinct) >= choiceCardinalityLimit {
			continue
		}
		for v := range distinct {
			if !isDigits(v) {
				literal = append(literal, fmt.Sprintf("%q", c.columnLabel(tc, col)))
				break
			}
		}
	}
	if len(literal) > 0 {
		return false, "choice columns holding literal labels instead of codes: " + exampleList(literal), nil
	}
	return true, "choices are expressed as codes", nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// codeMappingRe matches codebook-style content such as "1=male" or
// "1：male".
var codeMappingRe = regexp.MustCompile(`(^|\s)1\s*[=：:]\s*\S`)

func (c *Checker) checkCodebookExists(ctx context.Context, tc *model.TableContext) (bool, string, error) {
	return c.findAuxiliarySheet(ctx, tc,
		"codebook (mapping of numeric codes to labels, e.g. 1=male, 2=female)",
		[]string{"code", "コード", "master", "マスタ"},
		codeMappingRe,
		"no codebook sheet found; provide the code mappings separately")
}

func (c *Checker) checkQuestionMasterExists(ctx context.Context, tc *model.TableContext) (bool, string, error) {
	return c.findAuxiliarySheet(ctx, tc,
		"question master (list of variable names, question texts and choices)",
		[]string{"question", "設問", "variable", "変数", "項目", "master", "マスタ"},
		nil,
		"no question/variable master sheet found")
}

func (c *Checker) checkMetadataPresence(ctx context.Context, tc *model.TableContext) (bool, string, error) {
	return c.findAuxiliarySheet(ctx, tc,
		"survey metadata (source, units, collection period, overview)",
		[]string{"meta", "メタ", "info", "情報", "概要", "readme", "出典"},
		nil,
		"no metadata sheet found")
}

// findAuxiliarySheet scans the non-main sheets for one matching a category,
// by name keyword or content shape, with the semantic judge as an optional
// tie-breaker on sheet content.
func (c *Checker) findAuxiliarySheet(ctx context.Context, tc *model.TableContext,
	category string, keywords []string, contentRe *regexp.Regexp, failMsg string) (bool, string, error) {

	sheets := c.handler.AuxiliarySheets(tc.SheetName)
	if len(sheets) == 0 {
		return false, failMsg, nil
	}
	for _, sheet := range sheets {
		lower := strings.ToLower(sheet.Name)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true, fmt.Sprintf("sheet %q looks like a %s", sheet.Name, category), nil
			}
		}
		if contentRe != nil {
			for _, line := range sheet.Preview {
				if contentRe.MatchString(line) {
					return true, fmt.Sprintf("sheet %q content matches a %s", sheet.Name, category), nil
				}
			}
		}
		if c.judge != nil && len(sheet.Preview) > 0 {
			prompt := fmt.Sprintf(`Below are the leading lines of spreadsheet sheet %q:

%s

Is this sheet a %s?
Answer with exactly one word: YES or NO.`,
				sheet.Name, strings.Join(sheet.Preview, "\n"), category)
			if verdict := c.judgeOrDefault(ctx, prompt, "NO"); strings.Contains(strings.ToUpper(verdict), "YES") {
				return true, fmt.Sprintf("sheet %q was judged to be a %s", sheet.Name, category), nil
			}
		}
	}
	return false, failMsg, nil
}

// wideColumnLimit is the column count from which a long (tidy) layout is
// expected instead of one column per variable.
const wideColumnLimit = 10

// longFormatLabels is the id/variable/value triple a long layout needs.
var longFormatLabels = [][]string{
	{"id", "variable", "value"},
	{"ID", "変数名", "値"},
}

func (c *Checker) checkLongFormatIfManyColumns(_ context.Context, tc *model.TableContext) (bool, string, error) {
	if tc.ColCount() < wideColumnLimit {
		return true, "column count is small; a long layout is not required", nil
	}
	have := map[string]bool{}
	for _, label := range tc.Header.Labels {
		have[strings.ToLower(strings.TrimSpace(label))] = true
	}
	for _, set := range longFormatLabels {
		found := true
		for _, want := range set {
			if !have[strings.ToLower(want)] {
				found = false
				break
			}
		}
		if found {
			return true, "table is in long (tidy) layout", nil
		}
	}
	return false, fmt.Sprintf(
		"wide layout with %d columns; prefer a long (id, variable, value) layout", tc.ColCount()), nil
}
