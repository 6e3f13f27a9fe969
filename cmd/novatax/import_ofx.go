package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Veraticus/novatax/internal/cli"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/ofx"
	"github.com/Veraticus/novatax/internal/service"
	"github.com/spf13/cobra"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import bank transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX files exported from your bank. Credits
become income and debits become expenses, with source Bank. Re-importing the
same statement does not create duplicates.

Examples:
  novatax import-ofx ~/Downloads/alrajhi_march.ofx
  novatax import-ofx ~/Downloads/*.qfx --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	parser := ofx.NewParser(slog.Default())
	seen := make(map[string]bool)
	var all []model.Transaction

	for _, path := range files {
		txns, err := parseOFXFile(ctx, parser, path)
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		added := 0
		for _, txn := range txns {
			if !seen[txn.ID] {
				seen[txn.ID] = true
				all = append(all, txn)
				added++
			}
		}
		writeLine(out, fmt.Sprintf("  %s: %d transactions (%d duplicates)", filepath.Base(path), added, len(txns)-added))
	}

	if len(all) == 0 {
		writeLine(out, cli.FormatWarning("No transactions found in any file."))
		return nil
	}

	if dryRun {
		writeLine(out, cli.RenderTransactions(all, all[0].OriginalCurrency))
		writeLine(out, cli.FormatInfo("Dry run complete, no data saved."))
		return nil
	}

	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	added, skipped, err := importTransactions(ctx, a.repo, a.cfg.UserID, all, out)
	if err != nil {
		return err
	}

	writeLine(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions, %d already present.", added, skipped)))
	return nil
}

func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

func parseOFXFile(ctx context.Context, parser *ofx.Parser, path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(ctx, f)
}

// importTransactions appends txns oldest first so the newest ends up at the
// head of the list. Transactions already stored are skipped.
func importTransactions(ctx context.Context, store service.TransactionStore, userID string, txns []model.Transaction, progress io.Writer) (added, skipped int, err error) {
	existing := make(map[string]bool)
	for _, txn := range store.LoadAll(ctx, userID) {
		existing[txn.ID] = true
	}

	ordered := make([]model.Transaction, len(txns))
	copy(ordered, txns)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date.Time)
	})

	bar := cli.NewProgressBar(progress, len(ordered), "Importing transactions...")
	for _, txn := range ordered {
		if err := ctx.Err(); err != nil {
			return added, skipped, err
		}
		if existing[txn.ID] {
			skipped++
		} else {
			if err := store.Append(ctx, userID, txn); err != nil {
				return added, skipped, fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
			}
			added++
		}
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
	return added, skipped, nil
}
