// Package reports produces the AI written reports: compliance audit, salary
// estimate, crypto tax analysis and feasibility study. Each returns Markdown.
package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/novatax/internal/common"
	"github.com/Veraticus/novatax/internal/currency"
	"github.com/Veraticus/novatax/internal/llm"
	"github.com/Veraticus/novatax/internal/model"
)

// ErrEmptyReport is returned when the collaborator answers with no text.
var ErrEmptyReport = errors.New("report generation returned no content")

// Kind names a report.
type Kind string

// Report kinds.
const (
	KindAudit       Kind = "audit"
	KindSalary      Kind = "salary"
	KindCrypto      Kind = "crypto"
	KindFeasibility Kind = "feasibility"
)

// Fallback is the text shown in place of a report that could not be generated.
func (k Kind) Fallback() string {
	switch k {
	case KindAudit:
		return "Failed to generate audit report. Please check your API key."
	case KindSalary:
		return "Failed to generate salary estimate."
	case KindCrypto:
		return "Failed to analyze crypto portfolio."
	case KindFeasibility:
		return "Failed to generate feasibility study."
	}
	return "Failed to generate report."
}

// FeasibilityModel is the reasoning model used for feasibility studies.
const (
	FeasibilityModel          = "gemini-2.5-pro"
	FeasibilityThinkingBudget = 2048
)

// Generator is the part of the AI collaborator reports need.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (llm.Response, error)
}

// SalaryLevel is the seniority of the position being estimated.
type SalaryLevel string

// Salary levels.
const (
	LevelJunior SalaryLevel = "Junior"
	LevelMid    SalaryLevel = "Mid"
	LevelSenior SalaryLevel = "Senior"
	LevelExpert SalaryLevel = "Expert"
)

// SalaryRequest describes the position to estimate.
type SalaryRequest struct {
	JobTitle   string      `json:"jobTitle"`
	Level      SalaryLevel `json:"level"`
	Country    string      `json:"country"`
	Experience int         `json:"experience"`
	Age        int         `json:"age"`
}

// FeasibilityRequest describes a planned project.
type FeasibilityRequest struct {
	Industry    string  `json:"industry"`
	Description string  `json:"description"`
	Capital     float64 `json:"capital"`
	Revenue     float64 `json:"revenue"`
	Employees   int     `json:"employees"`
}

// CryptoAsset is one holding of a crypto portfolio.
type CryptoAsset struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Network  string  `json:"network"`
	Balance  float64 `json:"balance"`
	ValueUSD float64 `json:"valueUsd"`
}

// Service generates reports.
type Service struct {
	ai     Generator
	logger *slog.Logger
}

// New creates a report service.
func New(ai Generator, logger *slog.Logger) *Service {
	return &Service{ai: ai, logger: common.LoggerOrDefault(logger)}
}

// Audit analyzes the user's transactions for tax compliance, Zakat and anomalies.
func (s *Service) Audit(ctx context.Context, user model.UserProfile, txns []model.Transaction) (string, error) {
	var b strings.Builder
	for _, t := range txns {
		fmt.Fprintf(&b, "- %s: %s (%v %s) [%s]\n", t.Date, t.Description, t.Amount, t.OriginalCurrency, t.Category)
	}

	prompt := fmt.Sprintf(`You are an international accounting and taxation expert (NovaTax AI).
Analyze the following financial data for a user in %[1]s.

User Profile:
- Annual Income: %[2]s
- Zakat Enabled: %[3]t
- GOSI (Social Security) Enabled: %[4]t
- Filing Frequency: %[5]s

Recent Transactions:
%[6]s
Task:
1. Analyze VAT/Tax compliance based on %[1]s rules.
2. Calculate estimated Zakat (2.5%%) if enabled.
3. Check for anomalies in transactions.
4. Provide financial health recommendations.

Format the output in clear Markdown with headers, bullet points, and bold text for key figures.`,
		user.Country,
		currency.Format(user.AnnualIncome, user.BaseCurrency),
		user.ZakatEnabled,
		user.GosiEnabled,
		user.FilingFrequency,
		b.String())

	return s.generate(ctx, KindAudit, llm.Request{Prompt: prompt})
}

// Salary estimates gross and net pay for a position, in userCurrency.
func (s *Service) Salary(ctx context.Context, req SalaryRequest, userCurrency string) (string, error) {
	prompt := fmt.Sprintf(`You are a global HR and payroll expert. Estimate the salary for the following position in %s.

Job Details:
- Title: %s
- Level: %s
- Experience: %d years
- Age: %d

Task:
Provide a detailed salary breakdown including:
1. Annual Gross Salary range (in %s).
2. Estimated deductions (Income Tax, Social Security/GOSI).
3. Net Monthly Salary.
4. Market comparison (Low/Avg/High).

Format as a professional Markdown summary.`,
		req.Country, req.JobTitle, req.Level, req.Experience, req.Age, currency.Normalize(userCurrency))

	return s.generate(ctx, KindSalary, llm.Request{Prompt: prompt})
}

// Crypto summarizes a portfolio and the crypto tax rules of the user's country.
func (s *Service) Crypto(ctx context.Context, user model.UserProfile, assets []CryptoAsset) (string, error) {
	var b strings.Builder
	for _, a := range assets {
		fmt.Fprintf(&b, "- %s (%s): %v coins (~%s)\n", a.Name, a.Symbol, a.Balance, currency.Format(a.ValueUSD, "USD"))
	}

	prompt := fmt.Sprintf(`You are an expert in international tax and crypto accounting.
User Country: %[1]s

Portfolio:
%[2]s
Task:
1. Summarize total portfolio value.
2. Explain general crypto tax rules for %[1]s (e.g. Capital Gains Tax).
3. Identify potential risks (volatility, concentration).
4. Recommend tax saving strategies.

Output in Markdown.`, user.Country, b.String())

	return s.generate(ctx, KindCrypto, llm.Request{Prompt: prompt})
}

// Feasibility runs a feasibility study on the reasoning model.
func (s *Service) Feasibility(ctx context.Context, req FeasibilityRequest, user model.UserProfile) (string, error) {
	display := user.Context().DisplayCurrency
	prompt := fmt.Sprintf(`You are a global financial and feasibility expert. Conduct a feasibility study for a new project in %[1]s.

Project Details:
- Industry: %[2]s
- Capital Available: %[3]s
- Est. Annual Revenue: %[4]s
- Headcount: %[5]d employees
- Description: %[6]s
- Local Factors: Zakat (%[7]t), GOSI (%[8]t)

Task:
1. Executive Summary.
2. Financial Viability (ROI, Break-even analysis).
3. Regulatory Checklist for %[1]s (Licenses, Saudization/Localization if applicable).
4. Risk Assessment (High/Medium/Low).
5. Actionable Recommendations.

Format using Markdown with clear sections.`,
		user.Country,
		req.Industry,
		currency.Format(req.Capital, display),
		currency.Format(req.Revenue, display),
		req.Employees,
		req.Description,
		user.ZakatEnabled,
		user.GosiEnabled)

	return s.generate(ctx, KindFeasibility, llm.Request{
		Prompt:         prompt,
		Model:          FeasibilityModel,
		ThinkingBudget: FeasibilityThinkingBudget,
	})
}

func (s *Service) generate(ctx context.Context, kind Kind, req llm.Request) (string, error) {
	s.logger.Debug("Generating report", "kind", kind)

	resp, err := s.ai.Generate(ctx, req)
	if err != nil {
		s.logger.Warn("Report generation failed", "kind", kind, "error", err)
		return "", fmt.Errorf("%s report: %w", kind, err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("%s report: %w", kind, ErrEmptyReport)
	}
	return text, nil
}
