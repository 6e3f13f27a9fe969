// Package model defines the core domain models used throughout the application.
package model

import "strings"

// Classification records whether a transaction is business or personal spend.
type Classification string

// Classification constants.
const (
	ClassificationBusiness Classification = "Business"
	ClassificationPrivate  Classification = "Private"
	ClassificationMixed    Classification = "Mixed"
)

// Valid reports whether c is a known classification.
func (c Classification) Valid() bool {
	switch c {
	case ClassificationBusiness, ClassificationPrivate, ClassificationMixed:
		return true
	}
	return false
}

// ParseClassification falls back to ClassificationBusiness for unknown input.
func ParseClassification(s string) Classification {
	for _, c := range []Classification{ClassificationBusiness, ClassificationPrivate, ClassificationMixed} {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c
		}
	}
	return ClassificationBusiness
}
