package main

import (
	"fmt"

	"github.com/Veraticus/novatax/internal/cli"
	"github.com/Veraticus/novatax/internal/dashboard"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/Veraticus/novatax/internal/service"
	"github.com/spf13/cobra"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income, expenses and tax liability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			dr, err := dateRangeFromFlags(cmd)
			if err != nil {
				return err
			}
			display, _ := cmd.Flags().GetString("currency")
			monthly, _ := cmd.Flags().GetBool("monthly")

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

			out := cmd.OutOrStdout()
			writeLine(out, cli.FormatTitle(fmt.Sprintf("Summary for %s", profile.Name)))
			writeLine(out, cli.RenderSummary(dashboard.Summarize(txns, display, dr)))

			if monthly {
				inRange := make([]model.Transaction, 0, len(txns))
				for _, txn := range txns {
					if dr.Contains(txn.Date.Time) {
						inRange = append(inRange, txn)
					}
				}
				writeLine(out, cli.RenderMonthly(dashboard.Monthly(inRange, display), display))
			}
			return nil
		},
	}

	addDateRangeFlags(cmd)
	cmd.Flags().String("currency", "", "display currency (default: profile display currency)")
	cmd.Flags().Bool("monthly", false, "include a month by month breakdown")

	return cmd
}

func addDateRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "start date, YYYY-MM-DD (inclusive)")
	cmd.Flags().String("to", "", "end date, YYYY-MM-DD (inclusive)")
}

func dateRangeFromFlags(cmd *cobra.Command) (service.DateRange, error) {
	var dr service.DateRange

	if s, _ := cmd.Flags().GetString("from"); s != "" {
		d, err := model.ParseDate(s)
		if err != nil {
			return dr, err
		}
		dr.Start = d.Time
	}
	if s, _ := cmd.Flags().GetString("to"); s != "" {
		d, err := model.ParseDate(s)
		if err != nil {
			return dr, err
		}
		dr.End = d.Time
	}
	if !dr.Start.IsZero() && !dr.End.IsZero() && dr.End.Before(dr.Start) {
		return dr, fmt.Errorf("--to %s is before --from %s", dr.End.Format(model.DateLayout), dr.Start.Format(model.DateLayout))
	}
	return dr, nil
}
