package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
	Stock int
}

// CanFulfil reports whether the product holds at least quantity units.
func (p Product) CanFulfil(quantity int) bool {
	return p.Stock >= quantity
}
