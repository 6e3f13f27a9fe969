package ledger

import (
	"context"
	"fmt"

	"github.com/Veraticus/novatax/internal/metrics"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/service"
)

// PredictionOutcome reports what happened to one rate prediction.
type PredictionOutcome struct {
	Err       error
	LineID    string
	Rate      float64
	Applied   bool
	Discarded bool
}

type predictionTicket struct {
	jurisdiction string
	description  string
	category     model.Category
	gen          uint64
	seq          uint64
}

// PredictLine asks predictor for a rate for the line's description and applies
// it if the ledger still holds the same line, unchanged, in the same
// generation, and no newer prediction for the line was requested. On failure
// the line keeps its current rate.
func (l *Ledger) PredictLine(ctx context.Context, predictor service.TaxPredictor, id string) PredictionOutcome {
	ticket, err := l.beginPrediction(id)
	if err != nil {
		return PredictionOutcome{LineID: id, Err: err}
	}

	rate, err := predictor.PredictRate(ctx, ticket.jurisdiction, ticket.description, ticket.category)
	return l.finishPrediction(id, ticket, rate, err)
}

// PredictLineAsync runs PredictLine in a goroutine. The channel receives
// exactly one outcome and is then closed.
func (l *Ledger) PredictLineAsync(ctx context.Context, predictor service.TaxPredictor, id string) <-chan PredictionOutcome {
	out := make(chan PredictionOutcome, 1)

	ticket, err := l.beginPrediction(id)
	if err != nil {
		out <- PredictionOutcome{LineID: id, Err: err}
		close(out)
		return out
	}

	go func() {
		defer close(out)
		rate, err := predictor.PredictRate(ctx, ticket.jurisdiction, ticket.description, ticket.category)
		out <- l.finishPrediction(id, ticket, rate, err)
	}()
	return out
}

// Pending reports whether a prediction for the line is in flight.
func (l *Ledger) Pending(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.pending[id]
	return ok
}

func (l *Ledger) beginPrediction(id string) (predictionTicket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(id)
	if i < 0 {
		return predictionTicket{}, fmt.Errorf("%w: %s", ErrLineNotFound, id)
	}

	l.seq[id]++
	t := predictionTicket{
		jurisdiction: l.uc.Jurisdiction,
		description:  l.lines[i].Description,
		category:     l.lines[i].Category,
		gen:          l.gen,
		seq:          l.seq[id],
	}
	l.pending[id] = t.seq
	return t, nil
}

func (l *Ledger) finishPrediction(id string, t predictionTicket, rate float64, predErr error) PredictionOutcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := PredictionOutcome{LineID: id, Rate: rate, Err: predErr}

	if l.gen == t.gen && l.pending[id] == t.seq {
		delete(l.pending, id)
	}
	if predErr != nil {
		return out
	}

	i := l.index(id)
	if l.closed || l.gen != t.gen || l.seq[id] != t.seq || i < 0 ||
		l.lines[i].Description != t.description || l.lines[i].Category != t.category {
		metrics.TaxPredictions.WithLabelValues(metrics.OutcomeDiscarded).Inc()
		out.Discarded = true
		return out
	}

	l.lines[i].TaxRate = rate
	out.Applied = true
	return out
}
