package commons

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"stockpos/internal/dto"
	apperrors "stockpos/internal/errors"
)

func WriteJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func WriteValidationError(w http.ResponseWriter, logger *zap.Logger, traceID string, message string, details ...apperrors.ValidationDetail) {
	WriteJSON(w, logger, http.StatusBadRequest, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    http.StatusBadRequest,
		Code:      "VALIDATION_ERROR",
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

// WriteError maps a typed application error to its HTTP status. Anything
// untyped is logged and reported as INTERNAL_ERROR without its message.
func WriteError(w http.ResponseWriter, logger *zap.Logger, traceID string, err error) {
	resp := dto.ErrorResponse{
		TraceID:   traceID,
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
	}

	if ve, ok := apperrors.IsValidationError(err); ok {
		WriteValidationError(w, logger, traceID, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		resp.Status, resp.Code = http.StatusNotFound, "NOT_FOUND"
		WriteJSON(w, logger, resp.Status, resp)
		return
	}

	if ise, ok := apperrors.IsInsufficientStockError(err); ok {
		resp.Status, resp.Code = http.StatusConflict, "INSUFFICIENT_STOCK"
		resp.Stock = &dto.StockErrorDetails{
			ProductID:   ise.ProductID,
			ProductName: ise.ProductName,
			Requested:   ise.Requested,
			Available:   ise.Available,
		}
		WriteJSON(w, logger, resp.Status, resp)
		return
	}

	if _, ok := apperrors.IsReferentialIntegrityError(err); ok {
		resp.Status, resp.Code = http.StatusConflict, "REFERENTIAL_INTEGRITY"
		WriteJSON(w, logger, resp.Status, resp)
		return
	}

	if _, ok := apperrors.IsDeadlockError(err); ok {
		resp.Status, resp.Code = http.StatusServiceUnavailable, "DEADLOCK"
		WriteJSON(w, logger, resp.Status, resp)
		return
	}

	logger.Error("unexpected error", zap.String("traceId", traceID), zap.Error(err))
	resp.Status, resp.Code = http.StatusInternalServerError, "INTERNAL_ERROR"
	resp.Message = "an unexpected error occurred"
	WriteJSON(w, logger, resp.Status, resp)
}
