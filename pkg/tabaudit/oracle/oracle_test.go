package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/tabaudit-go/pkg/tabaudit/model"
)

// stubCompleter returns canned responses without any network.
type stubCompleter struct {
	response string
	err      error
	prompts  []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func TestParseProposalFenced(t *testing.T) {
	raw := "Here is the structure:\n```json\n" +
		`{"header_rows": [3, 4], "data_start": 5, "data_end": 29, "annotation_rows": [1, 30]}` +
		"\n```\n"

	p, err := ParseProposal(raw)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, p.HeaderRows)
	assert.Equal(t, 4, p.DataStart)
	assert.Equal(t, 28, p.DataEnd)
	assert.Equal(t, []int{0, 29}, p.AnnotationRows)
}

func TestParseProposalBareJSON(t *testing.T) {
	p, err := ParseProposal(`{"header_rows": [1], "data_start": 2, "data_end": 6}`)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, p.HeaderRows)
	assert.Equal(t, 1, p.DataStart)
	assert.Equal(t, 5, p.DataEnd)
	assert.Empty(t, p.AnnotationRows)
}

func TestParseProposalMissingFieldsStayUnset(t *testing.T) {
	p, err := ParseProposal(`{"header_rows": [1]}`)
	require.NoError(t, err)
	assert.Equal(t, model.Unset, p.DataStart)
	assert.Equal(t, model.Unset, p.DataEnd)
}

func TestParseProposalGarbage(t *testing.T) {
	_, err := ParseProposal("the header is probably row three")
	require.Error(t, err)
}

func TestProposeStructureRecoversFromBadResponse(t *testing.T) {
	o := New(&stubCompleter{response: "no json here"}, nil)
	p := o.ProposeStructure(context.Background(), model.SheetGrid{Name: "S"})
	assert.Equal(t, model.EmptyProposal(), p)
}

func TestProposeStructureRecoversFromCompleterError(t *testing.T) {
	o := New(&stubCompleter{err: errors.New("boom")}, nil)
	p := o.ProposeStructure(context.Background(), model.SheetGrid{Name: "S"})
	assert.Equal(t, model.EmptyProposal(), p)
}

func sheet(name string, rows ...[]string) model.SheetGrid {
	return model.SheetGrid{Name: name, Rows: rows}
}

func TestSelectMainSheet(t *testing.T) {
	wb := &model.Workbook{Sheets: []model.SheetGrid{
		sheet("Notes", []string{"about this file"}),
		sheet("Data", []string{"id", "name"}),
	}}

	o := New(&stubCompleter{response: "The main table is Data."}, nil)
	name, err := o.SelectMainSheet(context.Background(), wb)
	require.NoError(t, err)
	assert.Equal(t, "Data", name)
}

func TestSelectMainSheetFallsBackToFirst(t *testing.T) {
	wb := &model.Workbook{Sheets: []model.SheetGrid{
		sheet("One", []string{"a"}),
		sheet("Two", []string{"b"}),
	}}

	o := New(&stubCompleter{response: "Something unrelated"}, nil)
	name, err := o.SelectMainSheet(context.Background(), wb)
	require.NoError(t, err)
	assert.Equal(t, "One", name)
}

func TestSelectMainSheetSingleSheetSkipsOracle(t *testing.T) {
	wb := &model.Workbook{Sheets: []model.SheetGrid{sheet("Only", []string{"x"})}}
	stub := &stubCompleter{}
	o := New(stub, nil)

	name, err := o.SelectMainSheet(context.Background(), wb)
	require.NoError(t, err)
	assert.Equal(t, "Only", name)
	assert.Empty(t, stub.prompts)
}

func TestPreviewBounded(t *testing.T) {
	var rows [][]string
	for i := 0; i < 30; i++ {
		rows = append(rows, []string{"r"})
	}
	out := Preview(model.SheetGrid{Rows: rows})
	assert.Contains(t, out, "...")
	// 10 head + ellipsis + 10 tail lines.
	assert.Equal(t, 21, len(splitLines(out)))
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func TestClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "secret"})
	out, err := c.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestClientCompleteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "hello")
	require.Error(t, err)
}

func TestClientCompleteUnconfigured(t *testing.T) {
	c := NewClient(ClientConfig{})
	_, err := c.Complete(context.Background(), "hello")
	require.Error(t, err)
}
