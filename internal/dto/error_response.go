package dto

import (
	"time"

	apperrors "stockpos/internal/errors"
)

type ErrorResponse struct {
	TraceID   string                       `json:"traceId"`
	Status    int                          `json:"status"`
	Code      string                       `json:"code"`
	Message   string                       `json:"message"`
	Details   []apperrors.ValidationDetail `json:"details,omitempty"`
	Stock     *StockErrorDetails           `json:"stock,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
}

type StockErrorDetails struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}
