package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/ledger"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/service"
)

const editorHelp = `Commands:
  add [category]             append a blank line (Goods, Services, Food, Digital, Exempt)
  set <n> <field> <value>    edit line n; fields: desc, cat, qty, price
  rm <n>                     remove line n
  show                       print the ledger
  reset                      clear all lines
  done                       save the transaction
  quit                       discard and exit`

// Editor is an interactive line item session over a ledger. Setting a
// description starts a background rate prediction when a predictor is set.
type Editor struct {
	ledger    *ledger.Ledger
	predictor service.TaxPredictor
	prompter  *Prompter
	writer    io.Writer
	logger    *slog.Logger
	inflight  []<-chan ledger.PredictionOutcome
}

// NewEditor creates an editor. predictor may be nil.
func NewEditor(l *ledger.Ledger, predictor service.TaxPredictor, prompter *Prompter, writer io.Writer, logger *slog.Logger) *Editor {
	return &Editor{
		ledger:    l,
		predictor: predictor,
		prompter:  prompter,
		writer:    writer,
		logger:    common.LoggerOrDefault(logger),
	}
}

// Run reads commands until the user saves or quits. It reports whether the
// ledger should be committed. Pending predictions are awaited before saving.
func (e *Editor) Run(ctx context.Context) (bool, error) {
	e.println(editorHelp)

	for {
		e.drain(ctx, false)

		line, err := e.prompter.Ask(ctx, "invoice")
		if err != nil {
			if errors.Is(err, ErrInputClosed) {
				return false, nil
			}
			return false, err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "help", "?":
			e.println(editorHelp)
		case "show", "ls":
			e.show()
		case "add":
			category := model.DefaultCategory
			if len(fields) > 1 {
				category = model.ParseCategory(fields[1])
			}
			e.ledger.AddLine(category)
			e.show()
		case "set":
			if err := e.set(ctx, fields[1:]); err != nil {
				e.println(FormatError(err.Error()))
				continue
			}
			e.show()
		case "rm", "remove":
			if err := e.remove(fields[1:]); err != nil {
				e.println(FormatError(err.Error()))
				continue
			}
			e.show()
		case "reset":
			e.ledger.Reset()
			e.show()
		case "done", "save":
			e.drain(ctx, true)
			return true, nil
		case "quit", "q", "exit":
			return false, nil
		default:
			e.println(FormatError(fmt.Sprintf("Unknown command %q. Type 'help'.", fields[0])))
		}
	}
}

func (e *Editor) set(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: set <n> <field> <value>")
	}

	id, err := e.lineID(args[0])
	if err != nil {
		return err
	}
	field, err := ledger.ParseField(args[1])
	if err != nil {
		return err
	}
	value := strings.Join(args[2:], " ")

	if _, err := e.ledger.UpdateLine(id, field, value); err != nil {
		return err
	}

	if field == ledger.FieldDescription && value != "" && e.predictor != nil {
		e.inflight = append(e.inflight, e.ledger.PredictLineAsync(ctx, e.predictor, id))
	}
	return nil
}

func (e *Editor) remove(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rm <n>")
	}
	id, err := e.lineID(args[0])
	if err != nil {
		return err
	}
	return e.ledger.RemoveLine(id)
}

func (e *Editor) lineID(arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	lines := e.ledger.Lines()
	if err != nil || n < 1 || n > len(lines) {
		return "", fmt.Errorf("%w: %s", ledger.ErrLineNotFound, arg)
	}
	return lines[n-1].ID, nil
}

// drain reports finished predictions. With wait set it blocks until every
// prediction has finished or ctx ends.
func (e *Editor) drain(ctx context.Context, wait bool) {
	remaining := e.inflight[:0]
	for _, ch := range e.inflight {
		var (
			outcome ledger.PredictionOutcome
			done    bool
		)
		if wait {
			select {
			case outcome, done = <-ch:
			case <-ctx.Done():
			}
		} else {
			select {
			case outcome, done = <-ch:
			default:
			}
		}
		if !done {
			remaining = append(remaining, ch)
			continue
		}
		e.report(outcome)
	}
	e.inflight = remaining
}

func (e *Editor) report(outcome ledger.PredictionOutcome) {
	switch {
	case outcome.Applied:
		if line, ok := e.ledger.Line(outcome.LineID); ok {
			e.println(FormatInfo(fmt.Sprintf("%s Predicted %s for %q", RobotIcon, formatPercent(outcome.Rate), line.Description)))
		}
	case outcome.Err != nil:
		e.logger.Debug("rate prediction dropped", "line_id", outcome.LineID, "error", outcome.Err)
	}
}

func (e *Editor) show() {
	code := e.ledger.Context().DisplayCurrency
	e.println(RenderLines(e.ledger.Lines(), code, e.ledger.Pending))
	e.println(RenderTotals(e.ledger.Totals(), code))
}

func (e *Editor) println(s string) {
	if _, err := fmt.Fprintln(e.writer, s); err != nil {
		e.logger.Warn("Failed to write output", "error", err)
	}
}
