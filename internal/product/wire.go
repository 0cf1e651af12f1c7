package product

import (
	"go.uber.org/zap"

	"stockpos/internal/product/controller"
	"stockpos/internal/product/repository"
	"stockpos/internal/product/service"
	"stockpos/internal/product/usecase"
	"stockpos/internal/storage"
)

type Module struct {
	Service    *service.ProductService
	Controller *controller.Controller
}

func NewModule(store *storage.Store, logger *zap.Logger) *Module {
	repo := repository.NewMySQLRepository(store)
	svc := service.NewService(repo, logger)
	search := usecase.NewSearchUseCase(svc, logger)
	return &Module{
		Service:    svc,
		Controller: controller.NewController(svc, search, logger),
	}
}
