package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/novatax/internal/cli"
	"github.com/Veraticus/novatax/internal/reports"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate AI reports for the active user",
	}

	cmd.AddCommand(auditReportCmd())
	cmd.AddCommand(salaryReportCmd())
	cmd.AddCommand(cryptoReportCmd())
	cmd.AddCommand(feasibilityReportCmd())

	return cmd
}

// runReport opens the app, builds the report service and prints whatever gen
// returns. A failed report prints the kind's fallback text instead.
func runReport(cmd *cobra.Command, kind reports.Kind, gen func(ctx context.Context, a *app, svc *reports.Service) (string, error)) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	collaborator, err := a.collaborator(ctx)
	if err != nil {
		return err
	}

	writeLine(out, cli.FormatInfo(fmt.Sprintf("%s Generating %s report...", cli.RobotIcon, kind)))

	text, err := gen(ctx, a, reports.New(collaborator, a.logger))
	if err != nil {
		a.logger.Warn("Report generation failed", "kind", kind, "error", err)
		writeLine(out, cli.FormatError(kind.Fallback()))
		return nil
	}

	writeLine(out, cli.RenderBox(cli.ChartIcon+" "+cases.Title(language.English).String(string(kind))+" report", text))
	return nil
}

func auditReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Tax compliance audit of the user's transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, reports.KindAudit, func(ctx context.Context, a *app, svc *reports.Service) (string, error) {
				profile := a.profile(ctx)
				return svc.Audit(ctx, profile, a.repo.LoadAll(ctx, profile.ID))
			})
		},
	}
}

func salaryReportCmd() *cobra.Command {
	var req reports.SalaryRequest
	var level string

	cmd := &cobra.Command{
		Use:   "salary",
		Short: "Estimate market salary for a position",
		Example: `  novatax report salary --title "Backend Engineer" --level senior --country "United Arab Emirates" --experience 8`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Level = parseSalaryLevel(level)
			return runReport(cmd, reports.KindSalary, func(ctx context.Context, a *app, svc *reports.Service) (string, error) {
				profile := a.profile(ctx)
				if req.Country == "" {
					req.Country = profile.Country
				}
				return svc.Salary(ctx, req, profile.Context().DisplayCurrency)
			})
		},
	}

	cmd.Flags().StringVar(&req.JobTitle, "title", "", "job title")
	cmd.Flags().StringVar(&level, "level", "mid", "seniority (junior, mid, senior, expert)")
	cmd.Flags().StringVar(&req.Country, "country", "", "country (default: profile country)")
	cmd.Flags().IntVar(&req.Experience, "experience", 0, "years of experience")
	cmd.Flags().IntVar(&req.Age, "age", 0, "age")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func parseSalaryLevel(s string) reports.SalaryLevel {
	for _, l := range []reports.SalaryLevel{reports.LevelJunior, reports.LevelMid, reports.LevelSenior, reports.LevelExpert} {
		if strings.EqualFold(s, string(l)) {
			return l
		}
	}
	return reports.LevelMid
}

func cryptoReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crypto <assets.json|->",
		Short: "Tax analysis of a crypto portfolio",
		Long: `Analyze a crypto portfolio read from a JSON file (or - for stdin):

  [{"symbol": "BTC", "name": "Bitcoin", "network": "Bitcoin", "balance": 0.5, "valueUsd": 32000}]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assets, err := readAssets(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return runReport(cmd, reports.KindCrypto, func(ctx context.Context, a *app, svc *reports.Service) (string, error) {
				return svc.Crypto(ctx, a.profile(ctx), assets)
			})
		},
	}
	return cmd
}

func readAssets(stdin io.Reader, path string) ([]reports.CryptoAsset, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open portfolio: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var assets []reports.CryptoAsset
	if err := json.NewDecoder(r).Decode(&assets); err != nil {
		return nil, fmt.Errorf("failed to parse portfolio: %w", err)
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("portfolio is empty")
	}
	return assets, nil
}

func feasibilityReportCmd() *cobra.Command {
	var req reports.FeasibilityRequest

	cmd := &cobra.Command{
		Use:   "feasibility",
		Short: "Feasibility study for a planned project",
		Example: `  novatax report feasibility --industry "Specialty coffee" --capital 250000 --revenue 40000 --employees 6 \
    --description "Drive-through cafe on a commuter road"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd, reports.KindFeasibility, func(ctx context.Context, a *app, svc *reports.Service) (string, error) {
				return svc.Feasibility(ctx, req, a.profile(ctx))
			})
		},
	}

	cmd.Flags().StringVar(&req.Industry, "industry", "", "industry or sector")
	cmd.Flags().StringVar(&req.Description, "description", "", "project description")
	cmd.Flags().Float64Var(&req.Capital, "capital", 0, "starting capital")
	cmd.Flags().Float64Var(&req.Revenue, "revenue", 0, "expected monthly revenue")
	cmd.Flags().IntVar(&req.Employees, "employees", 0, "planned headcount")
	_ = cmd.MarkFlagRequired("industry")

	return cmd
}
