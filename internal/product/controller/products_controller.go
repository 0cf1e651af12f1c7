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

type Service interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, name string, price decimal.Decimal, stock int) (*domain.Product, error)
	Update(ctx context.Context, id int64, name string, price decimal.Decimal, stock int) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	SetStock(ctx context.Context, id int64, stock int) error
}

type SearchUseCase interface {
	Search(ctx context.Context, substring string) ([]dto.ProductResponse, error)
}

type Controller struct {
	svc    Service
	search SearchUseCase
	logger *zap.Logger
}

func NewController(svc Service, search SearchUseCase, logger *zap.Logger) *Controller {
	return &Controller{
		svc:    svc,
		search: search,
		logger: logger,
	}
}

func (c *Controller) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", c.List)
		r.Post("/", c.Create)
		r.Get("/search", c.Search)
		r.Get("/{id}", c.Get)
		r.Put("/{id}", c.Update)
		r.Delete("/{id}", c.Delete)
		r.Put("/{id}/stock", c.SetStock)
	})
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	products, err := c.svc.List(r.Context())
	if err != nil {
		commons.WriteError(w, c.logger, traceID, err)
		return
	}

	commons.WriteJSON(w, c.logger, http.StatusOK, dto.NewProductListResponse(products))
}

func (c *Controller) Search(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	products, err := c.search.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		commons.WriteError(w, c.logger, traceID, err)
		return
	}

	commons.WriteJSON(w, c.logger, http.StatusOK, products)
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	id, ok := c.parseID(w, r, traceID)
	if !ok {
		return
	}

	p, err := c.svc.Get(r.Context(), id)
	if err != nil {
		commons.WriteError(w, c.logger, traceID, err)
		return
	}

	commons.WriteJSON(w, c.logger, http.StatusOK, dto.NewProductResponse(*p))
}

func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.ProductRequest
	if !c.decode(w, r, traceID, &req) {
		return
	}

	p, err := c.svc.Create(r.Context(), req.Name, req.Price, *req.Stock)
	if err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusCreated, dto.NewProductResponse(*p))
}

func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, ok := c.parseID(w, r, traceID)
	if !ok {
		return
	}

	var req dto.ProductRequest
	if !c.decode(w, r, traceID, &req) {
		return
	}

	p, err := c.svc.Update(r.Context(), id, req.Name, req.Price, *req.Stock)
	if err != nil {
		commons.WriteError(w, logger, traceID, err)
		return
	}

	commons.WriteJSON(w, logger, http.StatusOK, dto.NewProductResponse(*p))
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

func (c *Controller) SetStock(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	id, ok := c.parseID(w, r, traceID)
	if !ok {
		return
	}

	var req dto.StockRequest
	if !c.decode(w, r, traceID, &req) {
		return
	}

	if err := c.svc.SetStock(r.Context(), id, *req.Stock); err != nil {
		commons.WriteError(w, c.logger, traceID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseID rejects ids that are not integers. Zero and negative ids are passed
// on so that lookups report them as not found.
func (c *Controller) parseID(w http.ResponseWriter, r *http.Request, traceID string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		c.logger.Warn("invalid product id in path", zap.String("traceId", traceID), zap.String("id", chi.URLParam(r, "id")))
		commons.WriteValidationError(w, c.logger, traceID, "invalid id", apperrors.ValidationDetail{
			Field:   "id",
			Message: "id must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

// decode reads the JSON body into v and checks its required fields.
func (c *Controller) decode(w http.ResponseWriter, r *http.Request, traceID string, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		c.logger.Warn("invalid JSON body", zap.String("traceId", traceID), zap.Error(err))
		commons.WriteValidationError(w, c.logger, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return false
	}

	if err := validation.ValidateRequest(v); err != nil {
		commons.WriteError(w, c.logger, traceID, err)
		return false
	}
	return true
}
