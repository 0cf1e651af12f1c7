package usecase

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockpos/internal/domain"
	apperrors "stockpos/internal/errors"
	"stockpos/internal/storage"
)

type SaleCreator interface {
	Create(ctx context.Context, timestamp string, total decimal.Decimal, lines []domain.SaleLine) (*domain.Sale, error)
}

type CreateSaleUseCase struct {
	svc              SaleCreator
	logger           *zap.Logger
	maxRetryAttempts int
	sleep            func(time.Duration)
}

func NewCreateSaleUseCase(svc SaleCreator, logger *zap.Logger, maxRetryAttempts int) *CreateSaleUseCase {
	if maxRetryAttempts < 1 {
		maxRetryAttempts = 1
	}
	return &CreateSaleUseCase{
		svc:              svc,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
		sleep:            time.Sleep,
	}
}

// Create records the sale, retrying from scratch when MySQL aborts the
// transaction with a deadlock or lock wait timeout. Each attempt is a fresh,
// complete unit of work, so a retry never sees a half-written sale.
func (uc *CreateSaleUseCase) Create(ctx context.Context, timestamp string, total decimal.Decimal, lines []domain.SaleLine) (*domain.Sale, error) {
	uc.logger.Info("create sale started", zap.String("timestamp", timestamp), zap.Int("lineCount", len(lines)))

	for attempt := 1; attempt <= uc.maxRetryAttempts; attempt++ {
		sale, err := uc.svc.Create(ctx, timestamp, total, lines)
		if err == nil {
			return sale, nil
		}

		if !storage.IsDeadlock(err) {
			return nil, err
		}

		if attempt == uc.maxRetryAttempts {
			break
		}

		uc.logger.Warn("deadlock detected, retrying",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", uc.maxRetryAttempts),
			zap.Error(err),
		)
		uc.sleep(backoff(attempt))
	}

	return nil, apperrors.NewDeadlockError("max retries exceeded")
}

const (
	baseBackoff   = 100 * time.Millisecond
	backoffJitter = 0.2
)

// backoff grows linearly from baseBackoff per attempt with ±20% jitter.
func backoff(attempt int) time.Duration {
	base := time.Duration(attempt) * baseBackoff
	jitter := 1 - backoffJitter + rand.Float64()*2*backoffJitter
	return time.Duration(float64(base) * jitter)
}

// MaxDuration is the longest Create can run once a sale has its turn: every
// attempt using its full transaction timeout plus the largest backoff between
// attempts. It returns 0 when txTimeout is not positive, since attempts are
// then unbounded.
func MaxDuration(txTimeout time.Duration, maxRetryAttempts int) time.Duration {
	if txTimeout <= 0 {
		return 0
	}
	if maxRetryAttempts < 1 {
		maxRetryAttempts = 1
	}

	total := time.Duration(maxRetryAttempts) * txTimeout
	for attempt := 1; attempt < maxRetryAttempts; attempt++ {
		total += time.Duration(float64(time.Duration(attempt)*baseBackoff) * (1 + backoffJitter))
	}
	return total
}
