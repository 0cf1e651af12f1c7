package sale

import (
	"go.uber.org/zap"

	"stockpos/internal/config"
	"stockpos/internal/sale/controller"
	"stockpos/internal/sale/repository"
	"stockpos/internal/sale/service"
	"stockpos/internal/sale/usecase"
	"stockpos/internal/stats"
	"stockpos/internal/storage"
)

// NewModule wires the sale flow. products is the catalog service; it is the
// only stock writer the sale service is given.
func NewModule(store *storage.Store, products service.ProductStock, cfg config.SaleConfig, logger *zap.Logger) *controller.Controller {
	saleRepo := repository.NewMySQLSaleRepository(store)
	lineRepo := repository.NewMySQLSaleLineRepository(store)

	svc := service.NewSaleService(
		store,
		products,
		saleRepo,
		lineRepo,
		stats.NewAggregator(saleRepo),
		logger,
		cfg.TxTimeout,
	)

	uc := usecase.NewCreateSaleUseCase(svc, logger, cfg.MaxRetryAttempts)

	return controller.NewController(uc, svc, logger)
}
