package model

import "strings"

// Category is the tax category of a line item.
type Category string

const (
	// CategoryGoods is physical goods taxed at the standard rate.
	CategoryGoods Category = "Goods"
	// CategoryServices is services taxed at the standard rate.
	CategoryServices Category = "Services"
	// CategoryFood is food and groceries taxed at the reduced rate.
	CategoryFood Category = "Food"
	// CategoryDigital is digital goods taxed at the standard rate.
	CategoryDigital Category = "Digital"
	// CategoryExempt is never taxed.
	CategoryExempt Category = "Exempt"
)

// DefaultCategory is used for blank lines and unknown category names.
const DefaultCategory = CategoryGoods

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryGoods, CategoryServices, CategoryFood, CategoryDigital, CategoryExempt}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGoods, CategoryServices, CategoryFood, CategoryDigital, CategoryExempt:
		return true
	}
	return false
}

// ParseCategory maps a free-form name onto a Category, case-insensitively.
// Unknown names fall back to DefaultCategory.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c
		}
	}
	return DefaultCategory
}
