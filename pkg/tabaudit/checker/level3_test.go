package checker

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// auxHandler is a csvHandler that pretends the workbook has extra sheets.
type auxHandler struct {
	csvHandler
	sheets []AuxSheet
}

func (h *auxHandler) AuxiliarySheets(string) []AuxSheet { return h.sheets }

func choiceData(values []string) [][]string {
	rows := make([][]string, 12)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("r%d", i), values[i%len(values)]}
	}
	return rows
}

func TestCheckCodeFormatForChoices(t *testing.T) {
	c := testChecker(model.Level3, &csvHandler{}, nil)

	t.Run("numeric codes pass", func(t *testing.T) {
		tc := tableCtx([]string{"id", "sex"}, choiceData([]string{"1", "2"}))
		passed, _, err := c.checkCodeFormatForChoices(context.Background(), tc)
		require.NoError(t, err)
		assert.True(t, passed)
	})

	t.Run("literal labels fail", func(t *testing.T) {
		tc := tableCtx([]string{"id", "sex"}, choiceData([]string{"male", "female"}))
		passed, msg, err := c.checkCodeFormatForChoices(context.Background(), tc)
		require.NoError(t, err)
		assert.False(t, passed)
		assert.Contains(t, msg, "sex")
	})

	t.Run("small tables are skipped", func(t *testing.T) {
		tc := tableCtx([]string{"id", "sex"}, [][]string{{"r1", "male"}, {"r2", "female"}})
		passed, _, err := c.checkCodeFormatForChoices(context.Background(), tc)
		require.NoError(t, err)
		assert.True(t, passed)
	})
}

func TestAuxiliarySheetChecks(t *testing.T) {
	tc := tableCtx([]string{"id", "sex"}, [][]string{{"r1", "1"}})

	t.Run("no auxiliary sheets fails all three", func(t *testing.T) {
		c := testChecker(model.Level3, &csvHandler{}, nil)
		for _, fn := range []CheckFunc{
			c.checkCodebookExists, c.checkQuestionMasterExists, c.checkMetadataPresence,
		} {
			passed, _, err := fn(context.Background(), tc)
			require.NoError(t, err)
			assert.False(t, passed)
		}
	})

	t.Run("name keyword match", func(t *testing.T) {
		c := testChecker(model.Level3, &auxHandler{sheets: []AuxSheet{
			{Name: "コード表", Preview: []string{"sex 1=男性 2=女性"}},
		}}, nil)
		passed, msg, err := c.checkCodebookExists(context.Background(), tc)
		require.NoError(t, err)
		assert.True(t, passed)
		assert.Contains(t, msg, "コード表")
	})

	t.Run("content shape match", func(t *testing.T) {
		c := testChecker(model.Level3, &auxHandler{sheets: []AuxSheet{
			{Name: "Sheet2", Preview: []string{"sex 1=male 2=female"}},
		}}, nil)
		passed, _, err := c.checkCodebookExists(context.Background(), tc)
		require.NoError(t, err)
		assert.True(t, passed)
	})

	t.Run("judge tie-break", func(t *testing.T) {
		sheets := []AuxSheet{{Name: "Sheet2", Preview: []string{"survey overview and units"}}}
		c := testChecker(model.Level3, &auxHandler{sheets: sheets}, &stubJudge{reply: "YES"})
		passed, _, err := c.checkMetadataPresence(context.Background(), tc)
		require.NoError(t, err)
		assert.True(t, passed)

		c = testChecker(model.Level3, &auxHandler{sheets: sheets}, nil)
		passed, _, err = c.checkMetadataPresence(context.Background(), tc)
		require.NoError(t, err)
		assert.False(t, passed)
	})
}

func TestCheckLongFormatIfManyColumns(t *testing.T) {
	c := testChecker(model.Level3, &csvHandler{}, nil)

	t.Run("narrow tables pass", func(t *testing.T) {
		tc := tableCtx([]string{"id", "sex", "age"}, [][]string{{"1", "2", "34"}})
		passed, _, err := c.checkLongFormatIfManyColumns(context.Background(), tc)
		require.NoError(t, err)
		assert.True(t, passed)
	})

	t.Run("wide table fails", func(t *testing.T) {
		labels := make([]string, 12)
		row := make([]string, 12)
		for i := range labels {
			labels[i] = fmt.Sprintf("q%d", i+1)
			row[i] = "1"
		}
		tc := tableCtx(labels, [][]string{row})
		passed, msg, err := c.checkLongFormatIfManyColumns(context.Background(), tc)
		require.NoError(t, err)
		assert.False(t, passed)
		assert.Contains(t, msg, "12 columns")
	})

	t.Run("long layout passes despite width", func(t *testing.T) {
		labels := []string{"id", "variable", "value", "a", "b", "c", "d", "e", "f", "g", "h"}
		row := make([]string, len(labels))
		tc := tableCtx(labels, [][]string{row})
		passed, _, err := c.checkLongFormatIfManyColumns(context.Background(), tc)
		require.NoError(t, err)
		assert.True(t, passed)
	})
}
