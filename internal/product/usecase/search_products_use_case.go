package usecase

import (
	"context"

	"go.uber.org/zap"

	"stockpos/internal/domain"
	"stockpos/internal/dto"
)

type Service interface {
	Search(ctx context.Context, substring string) ([]domain.Product, error)
}

type SearchUseCase struct {
	service Service
	logger  *zap.Logger
}

func NewSearchUseCase(service Service, logger *zap.Logger) *SearchUseCase {
	return &SearchUseCase{
		service: service,
		logger:  logger,
	}
}

// Search returns the products whose name contains substring, ordered by name.
// An empty substring matches every product. The result is never nil.
func (uc *SearchUseCase) Search(ctx context.Context, substring string) ([]dto.ProductResponse, error) {
	found, err := uc.service.Search(ctx, substring)
	if err != nil {
		return nil, err
	}

	uc.logger.Debug("product search",
		zap.String("query", substring),
		zap.Int("matches", len(found)),
	)

	return dto.NewProductListResponse(found), nil
}
