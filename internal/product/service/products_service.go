package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockpos/internal/domain"
	"stockpos/internal/storage"
	"stockpos/internal/validation"
)

type Repository interface {
	FindAll(ctx context.Context) ([]domain.Product, error)
	SearchByName(ctx context.Context, substring string) ([]domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByIDForUpdate(ctx context.Context, tx storage.Executor, id int64) (*domain.Product, error)
	Insert(ctx context.Context, p domain.Product) (int64, error)
	Update(ctx context.Context, p domain.Product) error
	UpdateStock(ctx context.Context, tx storage.Executor, id int64, stock int) error
	Delete(ctx context.Context, id int64) error
}

// ProductService owns the catalog. It is the only component that writes
// product stock.
type ProductService struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.FindAll(ctx)
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ProductService) Search(ctx context.Context, substring string) ([]domain.Product, error) {
	return s.repo.SearchByName(ctx, substring)
}

func (s *ProductService) Create(ctx context.Context, name string, price decimal.Decimal, stock int) (*domain.Product, error) {
	in := validation.ProductInput{
		Name:  validation.NormalizeName(name),
		Price: price,
		Stock: stock,
	}
	if err := validation.ValidateProduct(in); err != nil {
		return nil, err
	}

	p := domain.Product{Name: in.Name, Price: in.Price, Stock: in.Stock}

	id, err := s.repo.Insert(ctx, p)
	if err != nil {
		s.logger.Error("failed to create product", zap.String("name", p.Name), zap.Error(err))
		return nil, err
	}
	p.ID = id

	s.logger.Info("product created", zap.Int64("productId", id), zap.String("name", p.Name), zap.Int("stock", p.Stock))
	return &p, nil
}

func (s *ProductService) Update(ctx context.Context, id int64, name string, price decimal.Decimal, stock int) (*domain.Product, error) {
	in := validation.ProductInput{
		Name:  validation.NormalizeName(name),
		Price: price,
		Stock: stock,
	}
	if err := validation.ValidateProduct(in); err != nil {
		return nil, err
	}

	p := domain.Product{ID: id, Name: in.Name, Price: in.Price, Stock: in.Stock}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("product updated", zap.Int64("productId", id), zap.Int("stock", p.Stock))
	return &p, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to delete product", zap.Int64("productId", id), zap.Error(err))
		return err
	}

	s.logger.Info("product deleted", zap.Int64("productId", id))
	return nil
}

func (s *ProductService) SetStock(ctx context.Context, id int64, stock int) error {
	return s.SetStockTx(ctx, nil, id, stock)
}

// SetStockTx is SetStock inside the caller's unit of work. A nil tx runs the
// write on its own.
func (s *ProductService) SetStockTx(ctx context.Context, tx storage.Executor, id int64, stock int) error {
	if err := validation.ValidateStock(validation.StockInput{Stock: stock}); err != nil {
		return err
	}

	if err := s.repo.UpdateStock(ctx, tx, id, stock); err != nil {
		return err
	}

	s.logger.Debug("product stock set", zap.Int64("productId", id), zap.Int("stock", stock))
	return nil
}

// GetForUpdate loads a product and holds its row lock until tx ends.
func (s *ProductService) GetForUpdate(ctx context.Context, tx storage.Executor, id int64) (*domain.Product, error) {
	return s.repo.FindByIDForUpdate(ctx, tx, id)
}
