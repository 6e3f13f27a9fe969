package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/novatax/internal/cli"
	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/service"
	"github.com/spf13/cobra"
)

func wipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete every transaction of the active user",
		Long: `Wipe removes all of the active user's transactions from the hosted
datastore and then from the local cache. If the hosted datastore cannot be
reached nothing is deleted.

This is a destructive operation.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			force, _ := cmd.Flags().GetBool("force")

			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return runWipe(ctx, a.repo, a.cfg.UserID, force, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")

	return cmd
}

// checkedLoader is implemented by stores that can tell an empty list from an
// unreadable one.
type checkedLoader interface {
	LoadAllChecked(ctx context.Context, userID string) ([]model.Transaction, error)
}

func runWipe(ctx context.Context, store service.TransactionStore, userID string, force bool, in io.Reader, out io.Writer) error {
	count, known := countTransactions(ctx, store, userID)
	if known && count == 0 {
		writeLine(out, "No transactions found. Nothing to wipe.")
		return nil
	}

	if !force {
		warning := fmt.Sprintf("This will delete %d transactions for %s.", count, userID)
		if !known {
			warning = fmt.Sprintf("Transactions for %s could not be counted; every stored transaction will be deleted.", userID)
		}
		writeLine(out, cli.FormatWarning(warning))
		ok, err := cli.NewPrompter(in, out).Confirm(ctx, "Are you sure you want to continue?")
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if !ok {
			writeLine(out, "Wipe canceled.")
			return nil
		}
	}

	if err := store.WipeAll(ctx, userID); err != nil {
		return common.NewUserError("Nothing was deleted", err)
	}

	if !known {
		writeLine(out, cli.FormatSuccess("Deleted all transactions."))
		return nil
	}
	writeLine(out, cli.FormatSuccess(fmt.Sprintf("Deleted %d transactions.", count)))
	return nil
}

func countTransactions(ctx context.Context, store service.TransactionStore, userID string) (int, bool) {
	checked, ok := store.(checkedLoader)
	if !ok {
		return len(store.LoadAll(ctx, userID)), true
	}
	txns, err := checked.LoadAllChecked(ctx, userID)
	if err != nil {
		slog.Warn("Could not count transactions before wipe", "user_id", userID, "error", err)
		return 0, false
	}
	return len(txns), true
}
