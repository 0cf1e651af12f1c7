package dto

import (
	"github.com/shopspring/decimal"

	"stockpos/internal/domain"
)

type CreateSaleRequest struct {
	Timestamp string            `json:"timestamp"`
	Total     decimal.Decimal   `json:"total"`
	Lines     []SaleLineRequest `json:"lines" validate:"dive"`
}

// SaleLineRequest keeps subtotal as a pointer because zero is a valid
// subtotal and must still be sent.
type SaleLineRequest struct {
	ProductID int64            `json:"productId"`
	Quantity  int              `json:"quantity"`
	Subtotal  *decimal.Decimal `json:"subtotal" validate:"required"`
}

// ToDomainLines maps request lines in their original order.
func (r CreateSaleRequest) ToDomainLines() []domain.SaleLine {
	lines := make([]domain.SaleLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.SaleLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
		}
		if l.Subtotal != nil {
			lines[i].Subtotal = *l.Subtotal
		}
	}
	return lines
}

type SaleResponse struct {
	ID        int64              `json:"id"`
	Timestamp string             `json:"timestamp"`
	Total     float64            `json:"total"`
	Lines     []SaleLineResponse `json:"lines,omitempty"`
}

type SaleLineResponse struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName,omitempty"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

func NewSaleResponse(s domain.Sale) SaleResponse {
	resp := SaleResponse{
		ID:        s.ID,
		Timestamp: s.Timestamp,
		Total:     s.Total.InexactFloat64(),
	}

	for _, l := range s.Lines {
		resp.Lines = append(resp.Lines, SaleLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Subtotal:    l.Subtotal.InexactFloat64(),
		})
	}

	return resp
}

func NewSaleListResponse(sales []domain.Sale) []SaleResponse {
	out := make([]SaleResponse, len(sales))
	for i, s := range sales {
		out[i] = NewSaleResponse(s)
	}
	return out
}

type SaleStatsResponse struct {
	Count        int64              `json:"count"`
	TotalRevenue float64            `json:"totalRevenue"`
	PerDay       []DayStatsResponse `json:"perDay"`
}

type DayStatsResponse struct {
	Day     string  `json:"day"`
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

func NewSaleStatsResponse(st domain.SaleStats) SaleStatsResponse {
	resp := SaleStatsResponse{
		Count:        st.Count,
		TotalRevenue: st.TotalRevenue.InexactFloat64(),
		PerDay:       make([]DayStatsResponse, len(st.PerDay)),
	}

	for i, d := range st.PerDay {
		resp.PerDay[i] = DayStatsResponse{
			Day:     d.Day,
			Count:   d.Count,
			Revenue: d.Revenue.InexactFloat64(),
		}
	}

	return resp
}
