package main

import (
	"fmt"
	"os"

	"github.com/Veraticus/novatax/internal/cli"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/receipt"
	"github.com/Veraticus/novatax/internal/workspace"
	"github.com/spf13/cobra"
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Read a receipt photo into a new expense",
		Long: `Send a receipt image to the AI collaborator and turn the merchant, date,
total and category it reads into an expense ledger. The ledger is shown for
confirmation before it is saved.`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}

	cmd.Flags().String("status", "paid", "payment status (paid, credit)")
	cmd.Flags().String("classification", "business", "classification (business, private, mixed)")
	cmd.Flags().BoolP("yes", "y", false, "save without asking")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	image, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	flags, err := metaFromFlags(cmd)
	if err != nil {
		return err
	}

	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	collaborator, err := a.collaborator(ctx)
	if err != nil {
		return err
	}

	profile := a.profile(ctx)
	uc := profile.Context()

	writeLine(out, cli.FormatInfo(fmt.Sprintf("%s Reading receipt...", cli.RobotIcon)))
	scanned, err := receipt.NewScanner(collaborator, a.cfg.LLM.Timeout, a.logger).Scan(ctx, image, "", profile.Country)
	if err != nil {
		return fmt.Errorf("failed to scan receipt: %w", err)
	}

	ws := workspace.New(a.repo, a.resolver, a.logger)
	if err := ws.SwitchUser(ctx, uc); err != nil {
		return err
	}

	l := ws.Ledger()
	meta := receipt.Apply(l, scanned)
	meta.Status = flags.Status
	meta.Classification = flags.Classification

	if l.Len() == 0 {
		writeLine(out, cli.FormatWarning("No total found on the receipt. Nothing to save."))
		return nil
	}

	merchant := scanned.Merchant
	if merchant == "" {
		merchant = "unknown merchant"
	}
	writeLine(out, cli.FormatTitle(fmt.Sprintf("Receipt from %s %s", merchant, scanned.Date)))
	writeLine(out, cli.RenderLines(l.Lines(), uc.DisplayCurrency, nil))
	writeLine(out, cli.RenderTotals(l.Totals(), uc.DisplayCurrency))

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		ok, err := cli.NewPrompter(cmd.InOrStdin(), out).Confirm(ctx, "Save this expense?")
		if err != nil {
			return err
		}
		if !ok {
			writeLine(out, cli.FormatInfo("Discarded."))
			return nil
		}
	}

	txn, err := ws.Commit(ctx, meta)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	writeLine(out, cli.FormatSuccess(fmt.Sprintf("Saved expense %q", txn.Description)))
	writeLine(out, cli.RenderTransactions([]model.Transaction{txn}, txn.OriginalCurrency))
	return nil
}
