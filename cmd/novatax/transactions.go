package main

import (
	"fmt"

	"github.com/Veraticus/novatax/internal/cli"
	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txns", "ls"},
		Short:   "List the active user's transactions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")
			display, _ := cmd.Flags().GetString("currency")

			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			profile := a.profile(ctx)
			if display == "" {
				display = profile.Context().DisplayCurrency
			}

			txns := a.repo.LoadAll(ctx, profile.ID)
			total := len(txns)
			if limit > 0 && limit < total {
				txns = txns[:limit]
			}

			out := cmd.OutOrStdout()
			writeLine(out, cli.FormatTitle(fmt.Sprintf("Transactions for %s", profile.Name)))
			writeLine(out, cli.RenderTransactions(txns, display))
			if len(txns) < total {
				writeLine(out, cli.SubtleStyle.Render(fmt.Sprintf("Showing %d of %d. Use --limit 0 to show all.", len(txns), total)))
			}
			return nil
		},
	}

	cmd.Flags().IntP("limit", "n", 20, "maximum transactions to show (0 for all)")
	cmd.Flags().String("currency", "", "display currency (default: profile display currency)")

	return cmd
}
