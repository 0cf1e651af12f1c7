package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockpos/internal/domain"
	apperrors "stockpos/internal/errors"
	"stockpos/internal/storage"
	"stockpos/internal/validation"
)

type TransactionManager interface {
	InTx(ctx context.Context, opts *sql.TxOptions, fn func(storage.Executor) error) error
}

// ProductStock is the slice of the catalog a sale needs. Stock is only ever
// written through it.
type ProductStock interface {
	GetForUpdate(ctx context.Context, tx storage.Executor, id int64) (*domain.Product, error)
	SetStockTx(ctx context.Context, tx storage.Executor, id int64, stock int) error
}

type SaleRepository interface {
	Insert(ctx context.Context, tx storage.Executor, sale domain.Sale) (int64, error)
	FindAll(ctx context.Context) ([]domain.Sale, error)
	FindByTimestampPrefix(ctx context.Context, prefix string) ([]domain.Sale, error)
	FindByID(ctx context.Context, id int64) (*domain.Sale, error)
	Delete(ctx context.Context, id int64) error
}

type SaleLineRepository interface {
	Insert(ctx context.Context, tx storage.Executor, line domain.SaleLine) (int64, error)
	FindBySaleID(ctx context.Context, saleID int64) ([]domain.SaleLine, error)
}

type StatsAggregator interface {
	Compute(ctx context.Context) (domain.SaleStats, error)
}

type SaleService struct {
	txm       TransactionManager
	products  ProductStock
	sales     SaleRepository
	lines     SaleLineRepository
	stats     StatsAggregator
	logger    *zap.Logger
	txTimeout time.Duration

	// turn serializes Create so one sale's check-then-decrement never
	// interleaves with another's. It holds one token; a caller that gives
	// up while waiting for it never starts its sale.
	turn chan struct{}
}

func NewSaleService(
	txm TransactionManager,
	products ProductStock,
	sales SaleRepository,
	lines SaleLineRepository,
	stats StatsAggregator,
	logger *zap.Logger,
	txTimeout time.Duration,
) *SaleService {
	return &SaleService{
		txm:       txm,
		products:  products,
		sales:     sales,
		lines:     lines,
		stats:     stats,
		logger:    logger,
		txTimeout: txTimeout,
		turn:      make(chan struct{}, 1),
	}
}

// Create records a sale and decrements stock for every line as one unit of
// work. Lines are processed in the order given, so two lines for the same
// product are checked against the stock left by the earlier one. Any failure
// rolls back the header and every line written so far.
//
// Cancelling ctx while the sale waits behind another one abandons it. Once
// started, the transaction is not cut short by cancellation of ctx; it ends
// in commit or rollback, bounded by the configured transaction timeout.
func (s *SaleService) Create(ctx context.Context, timestamp string, total decimal.Decimal, lines []domain.SaleLine) (*domain.Sale, error) {
	header := validation.SaleHeaderInput{
		Timestamp: timestamp,
		Total:     total,
		Lines:     make([]validation.SaleLineInput, len(lines)),
	}
	for i, l := range lines {
		header.Lines[i] = lineInput(l)
	}
	if err := validation.ValidateSaleHeader(header); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case s.turn <- struct{}{}:
	case <-ctx.Done():
		s.logger.Warn("sale abandoned while waiting for its turn", zap.String("timestamp", timestamp), zap.Error(ctx.Err()))
		return nil, ctx.Err()
	}
	defer func() { <-s.turn }()

	txCtx := context.WithoutCancel(ctx)
	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(txCtx, s.txTimeout)
		defer cancel()
	}

	sale := domain.Sale{Timestamp: timestamp, Total: total}

	err := s.txm.InTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead}, func(tx storage.Executor) error {
		id, err := s.sales.Insert(txCtx, tx, sale)
		if err != nil {
			return err
		}
		sale.ID = id

		sale.Lines = make([]domain.SaleLine, 0, len(lines))
		for i, line := range lines {
			recorded, err := s.recordLine(txCtx, tx, id, i, line)
			if err != nil {
				return err
			}
			sale.Lines = append(sale.Lines, *recorded)
		}

		return nil
	})
	if err != nil {
		s.logger.Warn("sale rolled back", zap.String("timestamp", timestamp), zap.Int("lineCount", len(lines)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("sale committed",
		zap.Int64("saleId", sale.ID),
		zap.String("total", sale.Total.String()),
		zap.Int("lineCount", len(sale.Lines)),
	)

	return &sale, nil
}

func (s *SaleService) recordLine(ctx context.Context, tx storage.Executor, saleID int64, index int, line domain.SaleLine) (*domain.SaleLine, error) {
	if err := validation.ValidateSaleLine(index, lineInput(line)); err != nil {
		return nil, err
	}

	product, err := s.products.GetForUpdate(ctx, tx, line.ProductID)
	if err != nil {
		return nil, err
	}

	if !product.CanFulfil(line.Quantity) {
		return nil, apperrors.NewInsufficientStockError(product.ID, product.Name, line.Quantity, product.Stock)
	}

	line.SaleID = saleID
	line.ProductName = product.Name

	lineID, err := s.lines.Insert(ctx, tx, line)
	if err != nil {
		return nil, err
	}
	line.ID = lineID

	if err := s.products.SetStockTx(ctx, tx, product.ID, product.Stock-line.Quantity); err != nil {
		return nil, err
	}

	s.logger.Debug("sale line recorded",
		zap.Int64("saleId", saleID),
		zap.Int64("productId", product.ID),
		zap.Int("quantity", line.Quantity),
		zap.Int("stockLeft", product.Stock-line.Quantity),
	)

	return &line, nil
}

func (s *SaleService) List(ctx context.Context) ([]domain.Sale, error) {
	return s.sales.FindAll(ctx)
}

func (s *SaleService) ListByDatePrefix(ctx context.Context, prefix string) ([]domain.Sale, error) {
	return s.sales.FindByTimestampPrefix(ctx, prefix)
}

// Get returns the sale with its lines. A committed sale always has at least
// one line, and reads never see a sale whose transaction is still open.
func (s *SaleService) Get(ctx context.Context, id int64) (*domain.Sale, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lines, err := s.lines.FindBySaleID(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.Lines = lines

	return sale, nil
}

// Delete removes a sale and, by cascade, its lines. Stock is not restored.
func (s *SaleService) Delete(ctx context.Context, id int64) error {
	if err := s.sales.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("sale deleted", zap.Int64("saleId", id))
	return nil
}

func (s *SaleService) GetStats(ctx context.Context) (domain.SaleStats, error) {
	return s.stats.Compute(ctx)
}

func lineInput(l domain.SaleLine) validation.SaleLineInput {
	return validation.SaleLineInput{
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		Subtotal:  l.Subtotal,
	}
}
