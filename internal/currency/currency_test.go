package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Code
	}{
		{"SAR", "SAR"},
		{" eur ", "EUR"},
		{"USDT", USD},
		{"", USD},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		from   string
		to     string
		want   float64
	}{
		{"same currency", 42, "EUR", "EUR", 42},
		{"usd to sar", 100, "USD", "SAR", 375},
		{"sar to usd", 375, "SAR", "USD", 100},
		{"cross rate", 375, "SAR", "EUR", 92},
		{"unknown source is usd", 10, "XXX", "AED", 36.7},
		{"unknown target is usd", 3.67, "AED", "???", 1},
		{"zero", 0, "JPY", "GBP", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Convert(tt.amount, tt.from, tt.to), 1e-9)
		})
	}
}

func TestForJurisdiction(t *testing.T) {
	assert.Equal(t, Code("SAR"), ForJurisdiction("Saudi Arabia"))
	assert.Equal(t, Code("GBP"), ForJurisdiction("United Kingdom"))
	assert.Equal(t, Code("EUR"), ForJurisdiction("Germany"))
	assert.Equal(t, USD, ForJurisdiction("Atlantis"))
}

func TestKnownIsSortedAndIncludesBase(t *testing.T) {
	codes := Known()
	assert.Contains(t, codes, USD)
	for i := 1; i < len(codes); i++ {
		assert.Less(t, string(codes[i-1]), string(codes[i]))
	}
	for _, c := range codes {
		assert.Positive(t, Rate(c))
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "SAR 12,500.00", Format(12500, "sar"))
	assert.Equal(t, "USD 0.50", Format(0.5, "???"))
	assert.Equal(t, "EUR -1,234,567.89", Format(-1234567.891, "EUR"))
}
