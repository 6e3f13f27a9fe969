package main

import (
	"fmt"

	"github.com/Veraticus/novatax/internal/cli"
	"github.com/Veraticus/novatax/internal/invoice"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/service"
	"github.com/Veraticus/novatax/internal/workspace"
	"github.com/spf13/cobra"
)

func invoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Compose a sale or expense line by line",
		Long: `Open an interactive ledger for the active user. Each line's tax rate is
resolved from the user's jurisdiction; setting a description asks the AI
collaborator for a more specific rate in the background.

Examples:
  novatax invoice --type income --description "Website build"
  novatax invoice --type expense --status credit --no-predict`,
		RunE: runInvoice,
	}

	cmd.Flags().String("type", "expense", "transaction type (income, expense)")
	cmd.Flags().String("description", "", "transaction description")
	cmd.Flags().String("date", "", "transaction date, YYYY-MM-DD (default today)")
	cmd.Flags().String("status", "paid", "payment status (paid, credit)")
	cmd.Flags().String("classification", "business", "classification (business, private, mixed)")
	cmd.Flags().Bool("no-predict", false, "disable AI tax rate prediction")

	return cmd
}

func runInvoice(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	meta, err := metaFromFlags(cmd)
	if err != nil {
		return err
	}

	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	profile := a.profile(ctx)
	ws := workspace.New(a.repo, a.resolver, a.logger)
	if err := ws.SwitchUser(ctx, profile.Context()); err != nil {
		return err
	}

	var predictor service.TaxPredictor
	if noPredict, _ := cmd.Flags().GetBool("no-predict"); !noPredict {
		p, err := a.predictor(ctx)
		if err != nil {
			a.logger.Warn("Rate prediction disabled", "error", err)
		} else {
			defer p.Close()
			predictor = p
		}
	}

	out := cmd.OutOrStdout()
	writeLine(out, cli.FormatTitle(fmt.Sprintf("New %s for %s (%s, %s)", meta.Type, profile.Name, profile.Country, profile.Context().DisplayCurrency)))

	interrupts := cli.NewInterruptHandler(out)
	ctx, stop := interrupts.HandleInterrupts(ctx, "Unsaved lines were discarded.")
	defer stop()

	editor := cli.NewEditor(ws.Ledger(), predictor, cli.NewPrompter(cmd.InOrStdin(), out), out, a.logger)
	save, err := editor.Run(ctx)
	if err != nil {
		if interrupts.WasInterrupted() {
			return nil
		}
		return err
	}
	if !save {
		writeLine(out, cli.FormatInfo("Discarded."))
		return nil
	}

	txn, err := ws.Commit(ctx, meta)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	writeLine(out, cli.FormatSuccess(fmt.Sprintf("Saved %s %q", txn.Type, txn.Description)))
	writeLine(out, cli.RenderTransactions([]model.Transaction{txn}, txn.OriginalCurrency))
	return nil
}

// metaFromFlags reads the transaction fields shared by invoice and scan.
func metaFromFlags(cmd *cobra.Command) (invoice.Meta, error) {
	var meta invoice.Meta

	if cmd.Flags().Lookup("type") != nil {
		typ, _ := cmd.Flags().GetString("type")
		meta.Type = model.ParseTransactionType(typ)
	}
	if cmd.Flags().Lookup("description") != nil {
		meta.Description, _ = cmd.Flags().GetString("description")
	}
	if cmd.Flags().Lookup("date") != nil {
		if s, _ := cmd.Flags().GetString("date"); s != "" {
			d, err := model.ParseDate(s)
			if err != nil {
				return invoice.Meta{}, err
			}
			meta.Date = d
		}
	}
	if cmd.Flags().Lookup("status") != nil {
		s, _ := cmd.Flags().GetString("status")
		meta.Status = model.ParseStatus(s)
	}
	if cmd.Flags().Lookup("classification") != nil {
		c, _ := cmd.Flags().GetString("classification")
		meta.Classification = model.ParseClassification(c)
	}
	return meta, nil
}
