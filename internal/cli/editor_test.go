package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Veraticus/novatax/internal/ledger"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/service"
	"github.com/Veraticus/novatax/internal/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPredictor struct {
	err   error
	calls []string
	rate  float64
	mu    sync.Mutex
}

func (s *stubPredictor) PredictRate(_ context.Context, _, description string, _ model.Category) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, description)
	return s.rate, s.err
}

func newTestEditor(input string, predictor service.TaxPredictor) (*Editor, *ledger.Ledger, *bytes.Buffer) {
	uc := model.UserContext{UserID: "u1", Jurisdiction: "Saudi Arabia", DisplayCurrency: "SAR"}
	l := ledger.New(uc, tax.DefaultResolver())
	var out bytes.Buffer
	e := NewEditor(l, predictor, NewPrompter(strings.NewReader(input), &out), &out, nil)
	return e, l, &out
}

func TestEditor_BuildAndSave(t *testing.T) {
	input := strings.Join([]string{
		"set 1 qty 2",
		"set 1 price 100",
		"add food",
		"set 2 price 10",
		"done",
	}, "\n") + "\n"

	e, l, out := newTestEditor(input, nil)

	save, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, save)

	require.Equal(t, 2, l.Len())
	totals := l.Totals()
	assert.InDelta(t, 210, totals.Subtotal, 1e-9)
	assert.InDelta(t, 31.5, totals.TaxTotal, 1e-9)
	assert.Contains(t, out.String(), "SAR 241.50")
}

func TestEditor_Prediction(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantRate float64
		wantMsg  bool
	}{
		{name: "applied", wantRate: 0.05, wantMsg: true},
		{name: "failure keeps resolved rate", err: errors.New("offline"), wantRate: 0.15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			predictor := &stubPredictor{rate: 0.05, err: tt.err}
			input := "set 1 desc Consulting hours\nset 1 price 100\ndone\n"
			e, l, out := newTestEditor(input, predictor)

			save, err := e.Run(context.Background())
			require.NoError(t, err)
			assert.True(t, save)

			assert.Equal(t, []string{"Consulting hours"}, predictor.calls)
			lines := l.Lines()
			require.Len(t, lines, 1)
			assert.InDelta(t, tt.wantRate, lines[0].TaxRate, 1e-9)
			assert.Equal(t, tt.wantMsg, strings.Contains(out.String(), "Predicted 5%"))
		})
	}
}

func TestEditor_RemoveAndReset(t *testing.T) {
	e, l, _ := newTestEditor("add services\nrm 1\nquit\n", nil)

	save, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, save)
	require.Equal(t, 1, l.Len())
	assert.Equal(t, model.CategoryServices, l.Lines()[0].Category)

	e, l, _ = newTestEditor("add\nset 2 price 40\nreset\nquit\n", nil)
	_, err = e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())
	assert.Zero(t, l.Totals().GrandTotal)

	// Removing the only line leaves a blank one in its place.
	e, l, _ = newTestEditor("rm 1\nquit\n", nil)
	_, err = e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, l.Len())
}

func TestEditor_SaveBlankLedger(t *testing.T) {
	e, l, _ := newTestEditor("done\n", nil)

	save, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, save)
	require.Equal(t, 1, l.Len())
	assert.Zero(t, l.Totals().GrandTotal)
}

func TestEditor_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "unknown command", input: "frobnicate\nquit\n", want: "Unknown command"},
		{name: "bad line number", input: "add\nset 5 qty 1\nquit\n", want: "line item not found"},
		{name: "bad field", input: "add\nset 1 total 9\nquit\n", want: "unknown line item field"},
		{name: "missing value", input: "add\nset 1\nquit\n", want: "usage: set"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, out := newTestEditor(tt.input, nil)

			save, err := e.Run(context.Background())
			require.NoError(t, err)
			assert.False(t, save)
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestEditor_InputClosedDiscards(t *testing.T) {
	e, _, _ := newTestEditor("add\n", nil)

	save, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, save)
}
