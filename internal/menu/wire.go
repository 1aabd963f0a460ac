package menu

import (
	"database/sql"

	"go.uber.org/zap"

	"fogon/internal/config"
	"fogon/internal/menu/cache"
	"fogon/internal/menu/controller"
	"fogon/internal/menu/repository"
	"fogon/internal/menu/service"
)

type Module struct {
	Controller *controller.MenuController
	Service    *service.MenuService
	Cache      *cache.Cache
}

// NewCache builds the snapshot cache over the MySQL blob store. It is built
// separately from the rest of the module so the stock module can take the
// invalidator before the menu service exists.
func NewCache(db *sql.DB, cfg *config.Config, logger *zap.Logger) *cache.Cache {
	store := repository.NewMySQLSnapshotStore(db)
	return cache.New(store, cfg.Menu.CacheTTL, cfg.Menu.SnapshotVersion, logger)
}

func NewModule(db *sql.DB, logger *zap.Logger, menuCache *cache.Cache, ledger service.StockLedger) *Module {
	catalogRepo := repository.NewMySQLCatalogRepository(db)
	productRepo := repository.NewMySQLProductRepository(db)
	categoryRepo := repository.NewMySQLCategoryRepository(db)

	svc := service.NewMenuService(catalogRepo, productRepo, categoryRepo, ledger, menuCache, logger)
	ctrl := controller.NewMenuController(svc, logger)

	return &Module{
		Controller: ctrl,
		Service:    svc,
		Cache:      menuCache,
	}
}
