package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockpos/internal/commons"
	"stockpos/internal/domain"
	"stockpos/internal/dto"
	apperrors "stockpos/internal/errors"
	"stockpos/internal/validation"
)

type CreateSaleUseCase interface {
	Create(ctx context.Context, timestamp string, total decimal.Decimal, lines []domain.SaleLine) (*domain.Sale, error)
}

type Service interface {
	List(ctx context.Context) ([]domain.Sale, error)
	ListByDatePrefix(ctx context.Context, prefix string) ([]domain.Sale, error)
	Get(ctx context.Context, id int64) (*domain.Sale, error)
	Delete(ctx context.Context, id int64) error
	GetStats(ctx context.Context) (domain.SaleStats, error)
}

type Controller struct {
	createUseCase CreateSaleUseCase
	svc           Service
	logger        *zap.Logger
}

func NewController(createUseCase CreateSaleUseCase, svc Service, logger *zap.Logger) *Controller {
	return &Controller{
		createUseCase: createUseCase,
		svc:           svc,
		logger:        logger,
	}
}

func (c *Controller) RegisterRoutes(r chi.Router) {
	r.Route("/sales", func(r chi.Router) {
		r.Get("/", c.List)
		r.Post("/", c.Create)
		r.Get("/stats", c.Stats)
		r.Get("/{id}", c.Get)
		r.Delete("/{id}", c.Delete)
	})
}

func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		commons.WriteValidationError(w, logger, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	if err := validation.ValidateRequest(req); err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	sale, err := c.createUseCase.Create(r.Context(), req.Timestamp, req.Total, req.ToDomainLines())
	if err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusCreated, dto.NewSaleResponse(*sale))
}

// List returns every sale, or only those whose timestamp starts with the
// date query parameter when it is set.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	var (
		sales []domain.Sale
		err   error
	)
	if prefix := r.URL.Query().Get("date"); prefix != "" {
		sales, err = c.svc.ListByDatePrefix(r.Context(), prefix)
	} else {
		sales, err = c.svc.List(r.Context())
	}
	if err != nil {
		commons.WriteError(w, c.logger, traceID, err)
		return
	}

	commons.WriteJSON(w, c.logger, http.StatusOK, dto.NewSaleListResponse(sales))
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	id, ok := c.parseID(w, r, traceID)
	if !ok {
		return
	}

	sale, err := c.svc.Get(r.Context(), id)
	if err != nil {
		commons.WriteError(w, c.logger, traceID, err)
		return
	}

	commons.WriteJSON(w, c.logger, http.StatusOK, dto.NewSaleResponse(*sale))
}

func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	id, ok := c.parseID(w, r, traceID)
	if !ok {
		return
	}

	if err := c.svc.Delete(r.Context(), id); err != nil {
		commons.WriteError(w, c.logger, traceID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) Stats(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	st, err := c.svc.GetStats(r.Context())
	if err != nil {
		commons.WriteError(w, c.logger, traceID, err)
		return
	}

	commons.WriteJSON(w, c.logger, http.StatusOK, dto.NewSaleStatsResponse(st))
}

// parseID rejects ids that are not integers. Zero and negative ids reach the
// store and come back as not found.
func (c *Controller) parseID(w http.ResponseWriter, r *http.Request, traceID string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		commons.WriteValidationError(w, c.logger, traceID, "invalid id", apperrors.ValidationDetail{
			Field:   "id",
			Message: "id must be an integer",
		})
		return 0, false
	}
	return id, true
}
