package model

// LineItem is one editable row of an invoice or expense entry.
// LineTotal is always Quantity × UnitPrice and is never edited directly.
type LineItem struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Quantity    float64  `json:"quantity"`
	UnitPrice   float64  `json:"unitPrice"`
	TaxRate     float64  `json:"taxRate"`
	LineTotal   float64  `json:"total"`
}

// Tax returns the tax owed on the line.
func (l LineItem) Tax() float64 {
	return l.LineTotal * l.TaxRate
}
