package dto

import (
	"github.com/shopspring/decimal"

	"stockpos/internal/domain"
)

// ProductRequest keeps stock as a pointer so a missing stock is told apart
// from zero. Range checks happen in the service.
type ProductRequest struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock *int            `json:"stock" validate:"required"`
}

type StockRequest struct {
	Stock *int `json:"stock" validate:"required"`
}

type ProductResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

func NewProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price.InexactFloat64(),
		Stock: p.Stock,
	}
}

func NewProductListResponse(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = NewProductResponse(p)
	}
	return out
}
