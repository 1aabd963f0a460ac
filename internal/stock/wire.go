package stock

import (
	"database/sql"

	"go.uber.org/zap"

	"fogon/internal/config"
	"fogon/internal/stock/controller"
	"fogon/internal/stock/repository"
	"fogon/internal/stock/service"
	"fogon/internal/stock/usecase"
)

type Module struct {
	Controller *controller.StockController
	Service    *service.LedgerService
}

func NewModule(db *sql.DB, cfg *config.Config, logger *zap.Logger, invalidator usecase.CacheInvalidator) *Module {
	store := repository.NewMySQLLedgerStore(db)
	svc := service.NewLedgerService(store, logger, cfg.Stock.TxTimeout)
	uc := usecase.NewLedgerUseCase(svc, invalidator, logger, cfg.Stock.MaxRetryAttempts)
	ctrl := controller.NewStockController(uc, logger)

	return &Module{
		Controller: ctrl,
		Service:    svc,
	}
}
