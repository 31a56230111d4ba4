package checker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

func TestCheckNumericColumnsOnly(t *testing.T) {
	c := testChecker(model.Level2, &csvHandler{}, nil)

	t.Run("clean numeric column passes", func(t *testing.T) {
		tc := tableCtx([]string{"name", "count"}, [][]string{
			{"a", "10"}, {"b", "1,200"}, {"c", "3.5"},
		})
		passed, _, err := c.checkNumericColumnsOnly(context.Background(), tc)
		require.NoError(t, err)
		assert.True(t, passed)
	})

	t.Run("stray unit in a numeric column fails", func(t *testing.T) {
		tc := tableCtx([]string{"name", "count"}, [][]string{
			{"a", "10"}, {"b", "20"}, {"c", "30"}, {"d", "40"}, {"e", "約50"},
		})
		passed, msg, err := c.checkNumericColumnsOnly(context.Background(), tc)
		require.NoError(t, err)
		assert.False(t, passed)
		assert.Contains(t, msg, "約50")
	})

	t.Run("text column is not a numeric column", func(t *testing.T) {
		tc := tableCtx([]string{"name"}, [][]string{{"a"}, {"b"}, {"c"}})
		passed, _, err := c.checkNumericColumnsOnly(context.Background(), tc)
		require.NoError(t, err)
		assert.True(t, passed)
	})
}

func TestCheckSeparateOtherDetailColumns(t *testing.T) {
	c := testChecker(model.Level2, &csvHandler{}, nil)

	passed, msg, err := c.checkSeparateOtherDetailColumns(context.Background(),
		tableCtx([]string{"回答", "その他"}, nil))
	require.NoError(t, err)
	assert.False(t, passed)
	assert.Contains(t, msg, "その他")

	passed, _, err = c.checkSeparateOtherDetailColumns(context.Background(),
		tableCtx([]string{"回答", "その他（自由記述）"}, nil))
	require.NoError(t, err)
	assert.True(t, passed)

	passed, _, err = c.checkSeparateOtherDetailColumns(context.Background(),
		tableCtx([]string{"answer", "other detail"}, nil))
	require.NoError(t, err)
	assert.True(t, passed)
}

func TestCheckNoMissingColumnHeaders(t *testing.T) {
	t.Run("synthetic header fails", func(t *testing.T) {
		c := testChecker(model.Level2, &csvHandler{}, nil)
		tc := tableCtx([]string{"col_1", "col_2"}, [][]string{{"a", "b"}})
		tc.Header.Synthetic = true
		passed, msg, err := c.checkNoMissingColumnHeaders(context.Background(), tc)
		require.NoError(t, err)
		assert.False(t, passed)
		assert.Contains(t, msg, "positional")
	})

	t.Run("placeholder label fails", func(t *testing.T) {
		c := testChecker(model.Level2, &csvHandler{}, nil)
		tc := tableCtx([]string{"name", model.PlaceholderLabel}, [][]string{{"a", "b"}})
		passed, msg, err := c.checkNoMissingColumnHeaders(context.Background(), tc)
		require.NoError(t, err)
		assert.False(t, passed)
		assert.Contains(t, msg, "column B")
	})

	t.Run("code-like label fails without a judge", func(t *testing.T) {
		c := testChecker(model.Level2, &csvHandler{}, nil)
		tc := tableCtx([]string{"name", "Q3"}, [][]string{{"a", "b"}})
		passed, msg, err := c.checkNoMissingColumnHeaders(context.Background(), tc)
		require.NoError(t, err)
		assert.False(t, passed)
		assert.Contains(t, msg, "Q3")
	})

	t.Run("judge can clear a code-like label", func(t *testing.T) {
		c := testChecker(model.Level2, &csvHandler{}, &stubJudge{reply: "CLEAR"})
		tc := tableCtx([]string{"name", "Q3"}, [][]string{{"a", "b"}})
		passed, _, err := c.checkNoMissingColumnHeaders(context.Background(), tc)
		require.NoError(t, err)
		assert.True(t, passed)
	})

	t.Run("descriptive labels pass", func(t *testing.T) {
		c := testChecker(model.Level2, &csvHandler{}, nil)
		tc := tableCtx([]string{"respondent name", "age in years"}, [][]string{{"a", "1"}})
		passed, _, err := c.checkNoMissingColumnHeaders(context.Background(), tc)
		require.NoError(t, err)
		assert.True(t, passed)
	})
}

func TestCheckHandlingOfMissingValues(t *testing.T) {
	c := testChecker(model.Level2, &csvHandler{}, nil)

	t.Run("consistent marker passes", func(t *testing.T) {
		tc := tableCtx([]string{"score"}, [][]string{{"10"}, {"-"}, {"30"}})
		passed, _, err := c.checkHandlingOfMissingValues(context.Background(), tc)
		require.NoError(t, err)
		assert.True(t, passed)
	})

	t.Run("unmarked blanks fail", func(t *testing.T) {
		tc := tableCtx([]string{"score"}, [][]string{{"10"}, {""}, {"30"}})
		passed, msg, err := c.checkHandlingOfMissingValues(context.Background(), tc)
		require.NoError(t, err)
		assert.False(t, passed)
		assert.Contains(t, msg, "blank")
	})

	t.Run("mixed blanks and markers fail", func(t *testing.T) {
		tc := tableCtx([]string{"score"}, [][]string{{"10"}, {""}, {"N/A"}})
		passed, msg, err := c.checkHandlingOfMissingValues(context.Background(), tc)
		require.NoError(t, err)
		assert.False(t, passed)
		assert.Contains(t, msg, "inconsistent")
	})

	t.Run("loader padding is not a blank", func(t *testing.T) {
		// Second row was one cell short before padding; its trailing cell
		// is structural, not a missing value.
		tc := tableCtx([]string{"name", "score"}, [][]string{
			{"ann", "10"},
			{"bob", ""},
		})
		tc.DataWidths = []int{2, 1}
		passed, _, err := c.checkHandlingOfMissingValues(context.Background(), tc)
		require.NoError(t, err)
		assert.True(t, passed)
	})

	t.Run("genuine blank in a full-width row still fails", func(t *testing.T) {
		tc := tableCtx([]string{"name", "score"}, [][]string{
			{"ann", "10"},
			{"bob", ""},
		})
		tc.DataWidths = []int{2, 2}
		passed, _, err := c.checkHandlingOfMissingValues(context.Background(), tc)
		require.NoError(t, err)
		assert.False(t, passed)
	})

	t.Run("two different markers fail", func(t *testing.T) {
		tc := tableCtx([]string{"score"}, [][]string{{"-"}, {"N/A"}, {"30"}})
		passed, msg, err := c.checkHandlingOfMissingValues(context.Background(), tc)
		require.NoError(t, err)
		assert.False(t, passed)
		assert.Contains(t, msg, "inconsistent")
	})
}
