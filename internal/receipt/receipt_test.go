package receipt

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/novatax/internal/ledger"
	"github.com/Veraticus/novatax/internal/llm"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/tax"
)

type fakeGenerator struct {
	err   error
	reply string
	last  llm.Request
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, req llm.Request, v any) error {
	f.last = req
	if f.err != nil {
		return f.err
	}
	return llm.DecodeJSON(f.reply, v)
}

// pngHeader is enough for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestScan(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		err     error
		want    Receipt
		wantErr error
	}{
		{
			name:  "full receipt",
			reply: `{"merchant":" Panda Market ","date":"2026-02-14","total":57.5,"category":"food"}`,
			want: Receipt{
				Merchant: "Panda Market",
				Date:     mustDate(t, "2026-02-14"),
				Category: model.CategoryFood,
				Total:    57.5,
			},
		},
		{
			name:  "unknown category and bad date",
			reply: "```json\n{\"merchant\":\"Shop\",\"date\":\"14/02/2026\",\"total\":10,\"category\":\"toys\"}\n```",
			want:  Receipt{Merchant: "Shop", Category: model.CategoryGoods, Total: 10},
		},
		{
			name:    "missing total",
			reply:   `{"merchant":"Shop"}`,
			wantErr: ErrInvalidTotal,
		},
		{
			name:    "negative total",
			reply:   `{"total":-3}`,
			wantErr: ErrInvalidTotal,
		},
		{
			name:    "collaborator unavailable",
			err:     errors.New("quota exceeded"),
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{reply: tt.reply, err: tt.err}
			s := NewScanner(gen, 0, nil)

			got, err := s.Scan(context.Background(), pngHeader, "", "Saudi Arabia")
			switch {
			case tt.err != nil:
				require.ErrorIs(t, err, tt.err)
				return
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			require.Len(t, gen.last.Attachments, 1)
			assert.Equal(t, "image/png", gen.last.Attachments[0].MIMEType)
			assert.Contains(t, gen.last.Prompt, "Saudi Arabia")
		})
	}
}

func TestScan_RejectsNonImages(t *testing.T) {
	s := NewScanner(&fakeGenerator{}, 0, nil)

	_, err := s.Scan(context.Background(), nil, "", "Germany")
	require.ErrorIs(t, err, ErrEmptyImage)

	_, err = s.Scan(context.Background(), []byte("%PDF-1.7 receipt"), "", "Germany")
	require.ErrorIs(t, err, ErrNotAnImage)
}

func TestApply(t *testing.T) {
	uc := model.UserContext{UserID: "u1", Jurisdiction: "Germany", DisplayCurrency: "EUR"}
	l := ledger.New(uc, tax.DefaultResolver())
	l.AddLine(model.CategoryServices)
	require.Equal(t, 2, l.Len())

	meta := Apply(l, Receipt{Merchant: "Bäckerei", Category: model.CategoryFood, Total: 12.4})

	lines := l.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, ScannedDescription, lines[0].Description)
	assert.Equal(t, model.CategoryFood, lines[0].Category)
	assert.Zero(t, lines[0].TaxRate)
	assert.InDelta(t, 12.4, l.Totals().GrandTotal, 1e-9)
	assert.Equal(t, "Bäckerei", meta.Description)
	assert.Equal(t, model.TypeExpense, meta.Type)
}

func TestApply_ZeroTotalKeepsLines(t *testing.T) {
	l := ledger.New(model.UserContext{UserID: "u1"}, tax.DefaultResolver())
	l.AddLine(model.CategoryGoods)

	Apply(l, Receipt{Merchant: "Unknown"})
	assert.Equal(t, 2, l.Len())
}

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}
