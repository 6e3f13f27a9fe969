package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Veraticus/novatax/internal/cli"
	"github.com/Veraticus/novatax/internal/config"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func rateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rate [jurisdiction] [category]",
		Short: "Look up the tax rate for a jurisdiction and item category",
		Long: `Resolve the tax rate from the jurisdiction table. Unknown jurisdictions
use the default jurisdiction. With --describe, the AI collaborator is asked
for a rate specific to the item description.

Examples:
  novatax rate Germany Food
  novatax rate "Saudi Arabia" Services --describe "Legal consultation"
  novatax rate --list`,
		Args: cobra.MaximumNArgs(2),
		RunE: runRate,
	}

	cmd.Flags().String("describe", "", "item description for AI rate prediction")
	cmd.Flags().Bool("list", false, "list every known jurisdiction")

	return cmd
}

func runRate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	resolver, err := cfg.Resolver()
	if err != nil {
		return err
	}

	if list, _ := cmd.Flags().GetBool("list"); list {
		t := table.New().Headers("Jurisdiction", "Standard", "Reduced")
		for _, p := range resolver.Jurisdictions() {
			t.Row(p.Jurisdiction, percent(p.StandardRate), percent(p.ReducedRate))
		}
		writeLine(out, t.Render())
		return nil
	}

	jurisdiction := cfg.Tax.DefaultJurisdiction
	if len(args) > 0 {
		jurisdiction = args[0]
	}
	category := model.DefaultCategory
	if len(args) > 1 {
		category = model.ParseCategory(args[1])
	}

	rate := resolver.ResolveRate(jurisdiction, category)
	resolved := resolver.Profile(jurisdiction).Jurisdiction
	if !resolver.Known(jurisdiction) {
		writeLine(out, cli.FormatWarning(fmt.Sprintf("%q is not in the rate table, using %s.", jurisdiction, resolved)))
	}
	writeLine(out, fmt.Sprintf("%s, %s: %s", resolved, category, cli.BoldStyle.Render(percent(rate))))

	describe, _ := cmd.Flags().GetString("describe")
	if strings.TrimSpace(describe) == "" {
		return nil
	}

	a := &app{cfg: cfg, resolver: resolver, logger: slog.Default()}
	predictor, err := a.predictor(ctx)
	if err != nil {
		return err
	}
	defer predictor.Close()

	predicted, err := predictor.PredictRate(ctx, jurisdiction, describe, category)
	if err != nil {
		writeLine(out, cli.FormatWarning("Prediction unavailable, keep the resolved rate."))
		a.logger.Debug("Rate prediction failed", "error", err)
		return nil
	}
	writeLine(out, cli.FormatInfo(fmt.Sprintf("%s Predicted for %q: %s", cli.RobotIcon, describe, percent(predicted))))
	return nil
}

func percent(rate float64) string {
	return strconv.FormatFloat(rate*100, 'f', 2, 64) + "%"
}
