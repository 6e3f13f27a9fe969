package tax

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/llm"
	"github.com/Veraticus/novatax/internal/model"
)

type fakeGenerator struct {
	err   error
	reply string
	delay time.Duration
	calls int
	last  llm.Request
	mu    sync.Mutex
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, req llm.Request, v any) error {
	f.mu.Lock()
	f.calls++
	f.last = req
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.err != nil {
		return f.err
	}
	return llm.DecodeJSON(f.reply, v)
}

func newTestPredictor(t *testing.T, gen *fakeGenerator, timeout time.Duration) *Predictor {
	t.Helper()
	p, err := NewPredictor(gen, PredictorConfig{Timeout: timeout}, nil)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestPredictRate(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		err     error
		want    float64
		wantErr error
	}{
		{name: "fraction", reply: `{"taxRate": 0.05}`, want: 0.05},
		{name: "percentage is normalized", reply: `{"taxRate": 15}`, want: 0.15},
		{name: "zero rated", reply: `{"taxRate": 0}`, want: 0},
		{name: "missing field", reply: `{"rate": 0.1}`, wantErr: common.ErrMalformedResponse},
		{name: "out of range", reply: `{"taxRate": 250}`, wantErr: ErrRateOutOfRange},
		{name: "negative", reply: `{"taxRate": -0.1}`, wantErr: ErrRateOutOfRange},
		{name: "prose", reply: `about five percent`, wantErr: common.ErrMalformedResponse},
		{name: "collaborator down", err: common.ErrCollaboratorUnavailable, wantErr: common.ErrCollaboratorUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{reply: tt.reply, err: tt.err}
			p := newTestPredictor(t, gen, time.Second)

			got, err := p.PredictRate(context.Background(), "United Arab Emirates", "Medjool dates 1kg", model.CategoryFood)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.Contains(t, gen.last.Prompt, "United Arab Emirates")
			assert.Contains(t, gen.last.Prompt, "Medjool dates 1kg")
			assert.Contains(t, gen.last.Prompt, "Food")
		})
	}
}

func TestPredictRate_EmptyDescription(t *testing.T) {
	gen := &fakeGenerator{reply: `{"taxRate": 0.1}`}
	p := newTestPredictor(t, gen, time.Second)

	_, err := p.PredictRate(context.Background(), "France", "   ", model.CategoryGoods)
	require.ErrorIs(t, err, ErrNoDescription)
	assert.Zero(t, gen.calls)
}

func TestPredictRate_Timeout(t *testing.T) {
	gen := &fakeGenerator{reply: `{"taxRate": 0.1}`, delay: time.Second}
	p := newTestPredictor(t, gen, 20*time.Millisecond)

	start := time.Now()
	_, err := p.PredictRate(context.Background(), "France", "Baguette", model.CategoryFood)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestPredictRate_CachesSuccess(t *testing.T) {
	gen := &fakeGenerator{reply: `{"taxRate": 0.055}`}
	p := newTestPredictor(t, gen, time.Second)
	ctx := context.Background()

	first, err := p.PredictRate(ctx, "France", "Croissant", model.CategoryFood)
	require.NoError(t, err)
	p.cache.Wait()

	second, err := p.PredictRate(ctx, "france", "  CROISSANT ", model.CategoryFood)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, gen.calls)

	_, err = p.PredictRate(ctx, "France", "Croissant", model.CategoryGoods)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
}

func TestNewPredictor_RequiresCollaborator(t *testing.T) {
	_, err := NewPredictor(nil, PredictorConfig{}, nil)
	require.ErrorIs(t, err, common.ErrMissingConfig)
}
