package tax

import "github.com/Veraticus/novatax/internal/model"

// DefaultJurisdiction is used when a jurisdiction is missing from the table.
const DefaultJurisdiction = "United States"

// builtinProfiles are headline consumption tax rates. Reduced rates apply to
// food; countries without a reduced band repeat the standard rate.
var builtinProfiles = []model.JurisdictionTaxProfile{
	{Jurisdiction: "United States", StandardRate: 0.07, ReducedRate: 0.03},
	{Jurisdiction: "Saudi Arabia", StandardRate: 0.15, ReducedRate: 0.15},
	{Jurisdiction: "United Arab Emirates", StandardRate: 0.05, ReducedRate: 0.05},
	{Jurisdiction: "Bahrain", StandardRate: 0.10, ReducedRate: 0.10},
	{Jurisdiction: "Oman", StandardRate: 0.05, ReducedRate: 0.05},
	{Jurisdiction: "Qatar", StandardRate: 0, ReducedRate: 0},
	{Jurisdiction: "Kuwait", StandardRate: 0, ReducedRate: 0},
	{Jurisdiction: "Egypt", StandardRate: 0.14, ReducedRate: 0.05},
	{Jurisdiction: "Jordan", StandardRate: 0.16, ReducedRate: 0.04},
	{Jurisdiction: "Turkey", StandardRate: 0.20, ReducedRate: 0.01},
	{Jurisdiction: "United Kingdom", StandardRate: 0.20, ReducedRate: 0.05},
	{Jurisdiction: "Ireland", StandardRate: 0.23, ReducedRate: 0.135},
	{Jurisdiction: "Germany", StandardRate: 0.19, ReducedRate: 0.07},
	{Jurisdiction: "France", StandardRate: 0.20, ReducedRate: 0.055},
	{Jurisdiction: "Spain", StandardRate: 0.21, ReducedRate: 0.10},
	{Jurisdiction: "Italy", StandardRate: 0.22, ReducedRate: 0.10},
	{Jurisdiction: "Netherlands", StandardRate: 0.21, ReducedRate: 0.09},
	{Jurisdiction: "Sweden", StandardRate: 0.25, ReducedRate: 0.12},
	{Jurisdiction: "Switzerland", StandardRate: 0.081, ReducedRate: 0.026},
	{Jurisdiction: "Canada", StandardRate: 0.05, ReducedRate: 0},
	{Jurisdiction: "Mexico", StandardRate: 0.16, ReducedRate: 0},
	{Jurisdiction: "Brazil", StandardRate: 0.17, ReducedRate: 0.07},
	{Jurisdiction: "Australia", StandardRate: 0.10, ReducedRate: 0},
	{Jurisdiction: "New Zealand", StandardRate: 0.15, ReducedRate: 0.15},
	{Jurisdiction: "Japan", StandardRate: 0.10, ReducedRate: 0.08},
	{Jurisdiction: "South Korea", StandardRate: 0.10, ReducedRate: 0},
	{Jurisdiction: "China", StandardRate: 0.13, ReducedRate: 0.09},
	{Jurisdiction: "India", StandardRate: 0.18, ReducedRate: 0.05},
	{Jurisdiction: "Singapore", StandardRate: 0.09, ReducedRate: 0.09},
	{Jurisdiction: "Malaysia", StandardRate: 0.08, ReducedRate: 0},
	{Jurisdiction: "Indonesia", StandardRate: 0.11, ReducedRate: 0},
	{Jurisdiction: "South Africa", StandardRate: 0.15, ReducedRate: 0},
	{Jurisdiction: "Nigeria", StandardRate: 0.075, ReducedRate: 0},
	{Jurisdiction: "Kenya", StandardRate: 0.16, ReducedRate: 0},
}
