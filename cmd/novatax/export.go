package main

import (
	"fmt"

	"github.com/Veraticus/novatax/internal/cli"
	"github.com/Veraticus/novatax/internal/config"
	"github.com/Veraticus/novatax/internal/export"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions and line items to an Excel workbook",
		Example: `  novatax export --output ~/Documents/novatax-2026.xlsx --from 2026-01-01 --to 2026-12-31
  novatax export --currency SAR --no-format`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			dr, err := dateRangeFromFlags(cmd)
			if err != nil {
				return err
			}

			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			profile := a.profile(ctx)

			cfg := export.DefaultConfig()
			if path, _ := cmd.Flags().GetString("output"); path != "" {
				cfg.Path = config.ExpandPath(path)
			}
			cfg.Currency = profile.Context().DisplayCurrency
			if code, _ := cmd.Flags().GetString("currency"); code != "" {
				cfg.Currency = code
			}
			if noFormat, _ := cmd.Flags().GetBool("no-format"); noFormat {
				cfg.EnableFormatting = false
			}

			writer, err := export.NewWriter(cfg, a.logger)
			if err != nil {
				return err
			}

			data := export.BuildTabData(a.repo.LoadAll(ctx, profile.ID), cfg.Currency, dr)
			if err := writer.Write(ctx, data); err != nil {
				return err
			}

			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d transactions to %s", len(data.Transactions), cfg.Path)))
			return nil
		},
	}

	addDateRangeFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "output .xlsx path (default: novatax-transactions.xlsx)")
	cmd.Flags().String("currency", "", "currency for amounts (default: profile display currency)")
	cmd.Flags().Bool("no-format", false, "skip header styling and number formats")

	return cmd
}
