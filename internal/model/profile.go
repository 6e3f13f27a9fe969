package model

// FilingFrequency is how often a user files tax returns.
type FilingFrequency string

// Filing frequency constants.
const (
	FilingMonthly   FilingFrequency = "Monthly"
	FilingQuarterly FilingFrequency = "Quarterly"
	FilingAnnual    FilingFrequency = "Annual"
)

// UserProfile describes a tenant. It is owned by onboarding and only read here.
type UserProfile struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Country         string          `json:"country"`
	BaseCurrency    string          `json:"baseCurrency"`
	DisplayCurrency string          `json:"displayCurrency"`
	Language        string          `json:"language"`
	BusinessType    string          `json:"businessType,omitempty"`
	FilingFrequency FilingFrequency `json:"filingFrequency"`
	AnnualIncome    float64         `json:"annualIncome"`
	ZakatEnabled    bool            `json:"zakatEnabled"`
	GosiEnabled     bool            `json:"gosiEnabled"`
}

// Context derives the explicit computation context for the profile.
func (p UserProfile) Context() UserContext {
	display := p.DisplayCurrency
	if display == "" {
		display = p.BaseCurrency
	}
	return UserContext{
		UserID:          p.ID,
		Jurisdiction:    p.Country,
		DisplayCurrency: display,
		Language:        p.Language,
	}
}

// UserContext is the active user, jurisdiction, currency and language passed
// into ledger, resolver and store operations.
type UserContext struct {
	UserID          string
	Jurisdiction    string
	DisplayCurrency string
	Language        string
}
