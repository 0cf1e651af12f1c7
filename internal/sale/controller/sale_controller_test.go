package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stockpos/internal/domain"
	"stockpos/internal/dto"
	apperrors "stockpos/internal/errors"
)

type mockCreateUseCase struct {
	CreateFunc func(ctx context.Context, timestamp string, total decimal.Decimal, lines []domain.SaleLine) (*domain.Sale, error)
}

func (m *mockCreateUseCase) Create(ctx context.Context, timestamp string, total decimal.Decimal, lines []domain.SaleLine) (*domain.Sale, error) {
	return m.CreateFunc(ctx, timestamp, total, lines)
}

type mockService struct {
	ListFunc             func(ctx context.Context) ([]domain.Sale, error)
	ListByDatePrefixFunc func(ctx context.Context, prefix string) ([]domain.Sale, error)
	GetFunc              func(ctx context.Context, id int64) (*domain.Sale, error)
	DeleteFunc           func(ctx context.Context, id int64) error
	GetStatsFunc         func(ctx context.Context) (domain.SaleStats, error)
}

func (m *mockService) List(ctx context.Context) ([]domain.Sale, error) {
	return m.ListFunc(ctx)
}

func (m *mockService) ListByDatePrefix(ctx context.Context, prefix string) ([]domain.Sale, error) {
	return m.ListByDatePrefixFunc(ctx, prefix)
}

func (m *mockService) Get(ctx context.Context, id int64) (*domain.Sale, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockService) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockService) GetStats(ctx context.Context) (domain.SaleStats, error) {
	return m.GetStatsFunc(ctx)
}

func newTestRouter(uc CreateSaleUseCase, svc Service) http.Handler {
	r := chi.NewRouter()
	NewController(uc, svc, zap.NewNop()).RegisterRoutes(r)
	return r
}

func TestCreate_Returns201WithLines(t *testing.T) {
	uc := &mockCreateUseCase{
		CreateFunc: func(ctx context.Context, timestamp string, total decimal.Decimal, lines []domain.SaleLine) (*domain.Sale, error) {
			require.Len(t, lines, 1)
			assert.Equal(t, int64(1), lines[0].ProductID)
			assert.Equal(t, 2, lines[0].Quantity)
			lines[0].ID, lines[0].SaleID, lines[0].ProductName = 1, 1, "Widget"
			return &domain.Sale{ID: 1, Timestamp: timestamp, Total: total, Lines: lines}, nil
		},
	}

	body := `{"timestamp":"2024-01-01T10:00:00Z","total":19.98,"lines":[{"productId":1,"quantity":2,"subtotal":19.98}]}`
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body))
	rec := httptest.NewRecorder()

	newTestRouter(uc, &mockService{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.SaleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, 19.98, resp.Total)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, "Widget", resp.Lines[0].ProductName)
}

func TestCreate_InsufficientStockIsConflict(t *testing.T) {
	uc := &mockCreateUseCase{
		CreateFunc: func(ctx context.Context, timestamp string, total decimal.Decimal, lines []domain.SaleLine) (*domain.Sale, error) {
			return nil, apperrors.NewInsufficientStockError(1, "Widget", 9, 8)
		},
	}

	body := `{"timestamp":"2024-01-01T10:00:00Z","total":89.91,"lines":[{"productId":1,"quantity":9,"subtotal":89.91}]}`
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body))
	rec := httptest.NewRecorder()

	newTestRouter(uc, &mockService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Code)
	require.NotNil(t, resp.Stock)
	assert.Equal(t, 8, resp.Stock.Available)
}

func TestCreate_DeadlockIsUnavailable(t *testing.T) {
	uc := &mockCreateUseCase{
		CreateFunc: func(ctx context.Context, timestamp string, total decimal.Decimal, lines []domain.SaleLine) (*domain.Sale, error) {
			return nil, apperrors.NewDeadlockError("max retries exceeded")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(`{"timestamp":"x","total":1,"lines":[]}`))
	rec := httptest.NewRecorder()

	newTestRouter(uc, &mockService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestList_WithDateFilter(t *testing.T) {
	svc := &mockService{
		ListByDatePrefixFunc: func(ctx context.Context, prefix string) ([]domain.Sale, error) {
			assert.Equal(t, "2024-01-01", prefix)
			return []domain.Sale{{ID: 1, Timestamp: "2024-01-01T10:00:00Z", Total: decimal.NewFromInt(5)}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/sales?date=2024-01-01", nil)
	rec := httptest.NewRecorder()

	newTestRouter(&mockCreateUseCase{}, svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []dto.SaleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
}

func TestList_WithoutFilter(t *testing.T) {
	svc := &mockService{
		ListFunc: func(ctx context.Context) ([]domain.Sale, error) {
			return []domain.Sale{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/sales", nil)
	rec := httptest.NewRecorder()

	newTestRouter(&mockCreateUseCase{}, svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestStats_EmptyPerDayIsArray(t *testing.T) {
	svc := &mockService{
		GetStatsFunc: func(ctx context.Context) (domain.SaleStats, error) {
			return domain.SaleStats{TotalRevenue: decimal.Zero, PerDay: []domain.DayStats{}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/sales/stats", nil)
	rec := httptest.NewRecorder()

	newTestRouter(&mockCreateUseCase{}, svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0,"totalRevenue":0,"perDay":[]}`, rec.Body.String())
}

func TestGet_NotFound(t *testing.T) {
	svc := &mockService{
		GetFunc: func(ctx context.Context, id int64) (*domain.Sale, error) {
			return nil, apperrors.NewNotFoundError("sale with id 3 not found")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/sales/3", nil)
	rec := httptest.NewRecorder()

	newTestRouter(&mockCreateUseCase{}, svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDelete_NoContent(t *testing.T) {
	svc := &mockService{
		DeleteFunc: func(ctx context.Context, id int64) error {
			assert.Equal(t, int64(3), id)
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/sales/3", nil)
	rec := httptest.NewRecorder()

	newTestRouter(&mockCreateUseCase{}, svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreate_MissingSubtotal(t *testing.T) {
	uc := &mockCreateUseCase{
		CreateFunc: func(ctx context.Context, timestamp string, total decimal.Decimal, lines []domain.SaleLine) (*domain.Sale, error) {
			t.Fatal("sale must not be recorded without every subtotal")
			return nil, nil
		},
	}

	body := `{"timestamp":"2024-01-01T10:00:00Z","total":10,"lines":[{"productId":1,"quantity":1,"subtotal":10},{"productId":2,"quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body))
	rec := httptest.NewRecorder()

	newTestRouter(uc, &mockService{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "lines[1].subtotal", resp.Details[0].Field)
	assert.Equal(t, "lines[1].subtotal is required", resp.Details[0].Message)
}

func TestCreate_ZeroSubtotalIsAValue(t *testing.T) {
	uc := &mockCreateUseCase{
		CreateFunc: func(ctx context.Context, timestamp string, total decimal.Decimal, lines []domain.SaleLine) (*domain.Sale, error) {
			require.Len(t, lines, 1)
			assert.True(t, lines[0].Subtotal.IsZero())
			return &domain.Sale{ID: 1, Timestamp: timestamp, Total: total, Lines: lines}, nil
		},
	}

	body := `{"timestamp":"2024-01-01T10:00:00Z","total":1,"lines":[{"productId":1,"quantity":1,"subtotal":0}]}`
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body))
	rec := httptest.NewRecorder()

	newTestRouter(uc, &mockService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestNonPositiveID_IsNotFound(t *testing.T) {
	var ids []int64
	svc := &mockService{
		GetFunc: func(ctx context.Context, id int64) (*domain.Sale, error) {
			ids = append(ids, id)
			return nil, apperrors.NewNotFoundError("sale not found")
		},
		DeleteFunc: func(ctx context.Context, id int64) error {
			ids = append(ids, id)
			return apperrors.NewNotFoundError("sale not found")
		},
	}
	router := newTestRouter(&mockCreateUseCase{}, svc)

	for _, r := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/sales/0", nil),
		httptest.NewRequest(http.MethodDelete, "/sales/-2", nil),
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, []int64{0, -2}, ids)
}

func TestGet_NonIntegerID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/sales/abc", nil)
	rec := httptest.NewRecorder()

	newTestRouter(&mockCreateUseCase{}, &mockService{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
