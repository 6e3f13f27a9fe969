package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/novatax/internal/cli"
	"github.com/Veraticus/novatax/internal/currency"
	"github.com/Veraticus/novatax/internal/model"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage user profiles",
	}

	cmd.AddCommand(profileListCmd())
	cmd.AddCommand(profileSetCmd())

	return cmd
}

func profileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			profiles := a.repo.LoadProfiles(ctx)
			out := cmd.OutOrStdout()
			if len(profiles) == 0 {
				writeLine(out, cli.SubtleStyle.Render("No profiles saved. Create one with 'novatax profile set'."))
				return nil
			}

			t := table.New().Headers("", "ID", "Name", "Country", "Base", "Display", "Filing")
			for _, p := range profiles {
				active := ""
				if p.ID == a.cfg.UserID {
					active = "*"
				}
				uc := p.Context()
				t.Row(active, p.ID, p.Name, p.Country, p.BaseCurrency, uc.DisplayCurrency, string(p.FilingFrequency))
			}
			writeLine(out, t.Render())
			return nil
		},
	}
}

func profileSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Create or update a profile",
		Example: `  novatax profile set aisha --name "Aisha Al-Harbi" --country "Saudi Arabia" --zakat
  novatax profile set acme --display-currency EUR`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			profile := model.UserProfile{ID: args[0], Name: args[0], Language: "en", FilingFrequency: model.FilingQuarterly}
			for _, p := range a.repo.LoadProfiles(ctx) {
				if p.ID == args[0] {
					profile = p
				}
			}

			if err := applyProfileFlags(cmd, &profile, a.cfg.Tax.DefaultJurisdiction); err != nil {
				return err
			}

			if err := a.repo.SaveProfile(ctx, profile); err != nil {
				return fmt.Errorf("failed to save profile: %w", err)
			}
			writeLine(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved profile %s (%s, %s)", profile.ID, profile.Country, profile.BaseCurrency)))
			return nil
		},
	}

	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("country", "", "tax jurisdiction")
	cmd.Flags().String("base-currency", "", "base currency (default: the country's currency)")
	cmd.Flags().String("display-currency", "", "display currency (default: base currency)")
	cmd.Flags().String("language", "", "preferred language")
	cmd.Flags().String("business-type", "", "business type")
	cmd.Flags().String("filing", "", "filing frequency (monthly, quarterly, annual)")
	cmd.Flags().Float64("annual-income", 0, "expected annual income")
	cmd.Flags().Bool("zakat", false, "enable zakat calculation")
	cmd.Flags().Bool("gosi", false, "enable GOSI contributions")

	return cmd
}

func applyProfileFlags(cmd *cobra.Command, p *model.UserProfile, defaultCountry string) error {
	flags := cmd.Flags()

	if flags.Changed("name") {
		p.Name, _ = flags.GetString("name")
	}
	if flags.Changed("country") {
		p.Country, _ = flags.GetString("country")
	}
	if p.Country == "" {
		p.Country = defaultCountry
	}
	if flags.Changed("base-currency") {
		code, _ := flags.GetString("base-currency")
		parsed, ok := currency.Parse(code)
		if !ok {
			return fmt.Errorf("unknown currency %q", code)
		}
		p.BaseCurrency = parsed.String()
	}
	if p.BaseCurrency == "" || (flags.Changed("country") && !flags.Changed("base-currency")) {
		p.BaseCurrency = currency.ForJurisdiction(p.Country).String()
	}
	if flags.Changed("display-currency") {
		code, _ := flags.GetString("display-currency")
		parsed, ok := currency.Parse(code)
		if !ok {
			return fmt.Errorf("unknown currency %q", code)
		}
		p.DisplayCurrency = parsed.String()
	}
	if flags.Changed("language") {
		p.Language, _ = flags.GetString("language")
	}
	if flags.Changed("business-type") {
		p.BusinessType, _ = flags.GetString("business-type")
	}
	if flags.Changed("filing") {
		s, _ := flags.GetString("filing")
		f, err := parseFiling(s)
		if err != nil {
			return err
		}
		p.FilingFrequency = f
	}
	if flags.Changed("annual-income") {
		p.AnnualIncome, _ = flags.GetFloat64("annual-income")
	}
	if flags.Changed("zakat") {
		p.ZakatEnabled, _ = flags.GetBool("zakat")
	}
	if flags.Changed("gosi") {
		p.GosiEnabled, _ = flags.GetBool("gosi")
	}
	return nil
}

func parseFiling(s string) (model.FilingFrequency, error) {
	for _, f := range []model.FilingFrequency{model.FilingMonthly, model.FilingQuarterly, model.FilingAnnual} {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filing frequency %q", s)
}
