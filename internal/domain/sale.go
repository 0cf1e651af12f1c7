package domain

import "github.com/shopspring/decimal"

// Sale is a recorded checkout. Timestamp is the caller-supplied ISO-8601
// string and Total is stored as given.
type Sale struct {
	ID        int64
	Timestamp string
	Total     decimal.Decimal
	Lines     []SaleLine
}

type SaleLine struct {
	ID          int64
	SaleID      int64
	ProductID   int64
	ProductName string
	Quantity    int
	Subtotal    decimal.Decimal
}

// LinesSubtotal sums the subtotals of the loaded lines.
func (s Sale) LinesSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range s.Lines {
		sum = sum.Add(l.Subtotal)
	}
	return sum
}

type SaleStats struct {
	Count        int64
	TotalRevenue decimal.Decimal
	PerDay       []DayStats
}

type DayStats struct {
	Day     string
	Count   int64
	Revenue decimal.Decimal
}
