package model

// JurisdictionTaxProfile holds the sales tax rates of one jurisdiction.
// The exempt rate is always zero.
type JurisdictionTaxProfile struct {
	Jurisdiction string  `json:"jurisdiction" mapstructure:"jurisdiction"`
	StandardRate float64 `json:"standardRate" mapstructure:"standard"`
	ReducedRate  float64 `json:"reducedRate" mapstructure:"reduced"`
}

// RateFor returns the rate the profile applies to a category.
func (p JurisdictionTaxProfile) RateFor(c Category) float64 {
	switch c {
	case CategoryFood:
		return p.ReducedRate
	case CategoryExempt:
		return 0
	default:
		return p.StandardRate
	}
}
