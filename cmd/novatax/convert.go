package main

import (
	"fmt"
	"strconv"

	"github.com/Veraticus/novatax/internal/currency"
	"github.com/spf13/cobra"
)

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <amount> <from> <to>",
		Short: "Convert an amount between currencies using the static USD table",
		Example: `  novatax convert 100 USD SAR
  novatax convert 2500 eur aed`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			from, to := args[1], args[2]
			for _, code := range []string{from, to} {
				if _, ok := currency.Parse(code); !ok {
					return fmt.Errorf("unknown currency %q (known: %v)", code, currency.Known())
				}
			}

			result := currency.Convert(amount, from, to)
			writeLine(cmd.OutOrStdout(), fmt.Sprintf("%s = %s", currency.Format(amount, from), currency.Format(result, to)))
			return nil
		},
	}
}
