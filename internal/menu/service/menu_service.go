package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fogon/internal/domain"
	"fogon/internal/dto"
	apperrors "fogon/internal/errors"
	"fogon/internal/menu/cache"
)

// actorBackOffice marks ledger entries created by catalog edits rather than
// explicit stock operations.
const actorBackOffice = "back-office"

type CatalogRepository interface {
	FindAllProducts(ctx context.Context) ([]domain.Product, error)
	FindAllCategories(ctx context.Context) ([]domain.Category, error)
	FindAllCombos(ctx context.Context) ([]domain.Combo, error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Product, error)
	Insert(ctx context.Context, p domain.Product) (int, error)
	Update(ctx context.Context, id int, updates dto.ProductUpdates) error
	Delete(ctx context.Context, id int) error
}

type CategoryRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Category, error)
	Insert(ctx context.Context, c domain.Category) (int, error)
	Update(ctx context.Context, id int, updates dto.CategoryUpdates) error
	Delete(ctx context.Context, id int) error
	CountProducts(ctx context.Context, categoryID int) (int, error)
}

// StockLedger is the only path a catalog edit may change stock by: the edit
// becomes an ADJUSTMENT movement, so counter and ledger cannot drift.
type StockLedger interface {
	AdjustStockTo(ctx context.Context, productID int, target int, actor string, reference string) (*domain.StockMovement, error)
}

type MenuCache interface {
	Load(ctx context.Context) (*cache.Snapshot, error)
	IsValid(snapshot *cache.Snapshot) bool
	Save(ctx context.Context, products []dto.ProductView, categories []dto.CategoryView, combos []dto.ComboView) (*cache.Snapshot, error)
	Invalidate(ctx context.Context) error
}

// MenuService orchestrates the derived menu: it serves cached views, rebuilds
// them from the durable store, and invalidates the cache on every catalog
// mutation.
type MenuService struct {
	catalogRepo  CatalogRepository
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	ledger       StockLedger
	cache        MenuCache
	logger       *zap.Logger
}

func NewMenuService(
	catalogRepo CatalogRepository,
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	ledger StockLedger,
	menuCache MenuCache,
	logger *zap.Logger,
) *MenuService {
	return &MenuService{
		catalogRepo:  catalogRepo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		ledger:       ledger,
		cache:        menuCache,
		logger:       logger,
	}
}

func (s *MenuService) GetMenu(ctx context.Context, filters dto.MenuFilters, forceRefresh bool) (*dto.MenuView, error) {
	var snapshot *cache.Snapshot

	if forceRefresh {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("cache invalidation on forced refresh failed", zap.Error(err))
		}
	} else {
		loaded, err := s.cache.Load(ctx)
		if err != nil {
			s.logger.Warn("cache load failed, treating as miss", zap.Error(err))
		} else {
			snapshot = loaded
		}
		if snapshot != nil && s.cache.IsValid(snapshot) {
			return applyFilters(snapshot, filters, true), nil
		}
	}

	fresh, err := s.rebuild(ctx)
	if err != nil {
		// Staleness is preferred over unavailability: an expired snapshot
		// still beats a hard failure when the store is unreachable.
		if snapshot == nil {
			if loaded, loadErr := s.cache.Load(ctx); loadErr == nil {
				snapshot = loaded
			}
		}
		if snapshot != nil {
			s.logger.Warn("serving stale menu snapshot, store fetch failed", zap.Error(err))
			return applyFilters(snapshot, filters, true), nil
		}
		return nil, err
	}

	return applyFilters(fresh, filters, false), nil
}

func (s *MenuService) rebuild(ctx context.Context) (*cache.Snapshot, error) {
	products, err := s.catalogRepo.FindAllProducts(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("fetching products", err)
	}
	categories, err := s.catalogRepo.FindAllCategories(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("fetching categories", err)
	}
	combos, err := s.catalogRepo.FindAllCombos(ctx)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("fetching combos", err)
	}

	productViews, categoryViews, comboViews := BuildViews(products, categories, combos)

	snapshot, err := s.cache.Save(ctx, productViews, categoryViews, comboViews)
	if err != nil {
		// The derived data is in hand; a failed save only costs the next
		// reader a recomputation.
		s.logger.Warn("saving menu snapshot failed", zap.Error(err))
		snapshot = &cache.Snapshot{
			Products:   productViews,
			Categories: categoryViews,
			Combos:     comboViews,
		}
	}

	s.logger.Info("menu recomputed",
		zap.Int("products", len(productViews)),
		zap.Int("categories", len(categoryViews)),
		zap.Int("combos", len(comboViews)),
	)

	return snapshot, nil
}

func (s *MenuService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductView, error) {
	if err := validateCreateProduct(req); err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.FindByID(ctx, req.CategoryID); err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("category %d does not exist", req.CategoryID),
				apperrors.ValidationDetail{Field: "categoryId", Message: "unknown category"},
			)
		}
		return nil, err
	}

	p := domain.Product{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		CostPrice:    req.CostPrice,
		StockOnHand:  req.StockOnHand,
		MinimumStock: req.MinimumStock,
		CategoryID:   req.CategoryID,
		IsActive:     true,
		Available:    true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.Available != nil {
		p.Available = *req.Available
	}

	id, err := s.productRepo.Insert(ctx, p)
	if err != nil {
		return nil, err
	}
	p.ID = id

	s.invalidate(ctx, "product created", zap.Int("productId", id))

	view := NewProductView(p)
	return &view, nil
}

func (s *MenuService) UpdateProduct(ctx context.Context, id int, updates dto.ProductUpdates) (*dto.ProductView, error) {
	if updates.Empty() {
		return nil, apperrors.NewValidationError("no fields to update", apperrors.ValidationDetail{
			Field:   "body",
			Message: "at least one field must be provided",
		})
	}
	if err := validateProductUpdates(updates); err != nil {
		return nil, err
	}
	if updates.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *updates.CategoryID); err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				return nil, apperrors.NewValidationError(
					fmt.Sprintf("category %d does not exist", *updates.CategoryID),
					apperrors.ValidationDetail{Field: "categoryId", Message: "unknown category"},
				)
			}
			return nil, err
		}
	}

	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// A stock edit is not a bare field write: it goes through the ledger as
	// an ADJUSTMENT so the movement log stays the only stock authority.
	mutated := false
	if updates.TouchesStock() {
		if _, err := s.ledger.AdjustStockTo(ctx, id, *updates.StockOnHand, actorBackOffice, fmt.Sprintf("product %d update", id)); err != nil {
			return nil, err
		}
		mutated = true
	}

	fieldUpdates := updates
	fieldUpdates.StockOnHand = nil
	if !fieldUpdates.Empty() {
		if err := s.productRepo.Update(ctx, id, fieldUpdates); err != nil {
			// The ledger half may already be committed; the snapshot must
			// still be dropped or it would serve a stale-but-assumed-valid
			// view of the adjusted stock.
			if mutated {
				s.invalidate(ctx, "partial product update", zap.Int("productId", id))
			}
			return nil, err
		}
	}

	// Any catalog change can change derived availability, of this product or
	// of combos referencing it, so the snapshot is always dropped.
	s.invalidate(ctx, "product updated", zap.Int("productId", id))

	updated := applyProductUpdates(*existing, updates)
	view := NewProductView(updated)
	return &view, nil
}

func (s *MenuService) DeleteProduct(ctx context.Context, id int) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, "product deleted", zap.Int("productId", id))
	return nil
}

func (s *MenuService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryView, error) {
	if req.Name == "" {
		return nil, apperrors.NewValidationError("name is required", apperrors.ValidationDetail{
			Field:   "name",
			Message: "name is required",
		})
	}

	c := domain.Category{
		Name:         req.Name,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	id, err := s.categoryRepo.Insert(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id

	s.invalidate(ctx, "category created", zap.Int("categoryId", id))

	return &dto.CategoryView{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		DisplayOrder: c.DisplayOrder,
		IsActive:     c.IsActive,
	}, nil
}

func (s *MenuService) UpdateCategory(ctx context.Context, id int, updates dto.CategoryUpdates) (*dto.CategoryView, error) {
	if updates.Empty() {
		return nil, apperrors.NewValidationError("no fields to update", apperrors.ValidationDetail{
			Field:   "body",
			Message: "at least one field must be provided",
		})
	}

	existing, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	s.invalidate(ctx, "category updated", zap.Int("categoryId", id))

	updated := *existing
	if updates.Name != nil {
		updated.Name = *updates.Name
	}
	if updates.Description != nil {
		updated.Description = *updates.Description
	}
	if updates.DisplayOrder != nil {
		updated.DisplayOrder = *updates.DisplayOrder
	}
	if updates.IsActive != nil {
		updated.IsActive = *updates.IsActive
	}

	return &dto.CategoryView{
		ID:           updated.ID,
		Name:         updated.Name,
		Description:  updated.Description,
		DisplayOrder: updated.DisplayOrder,
		IsActive:     updated.IsActive,
	}, nil
}

func (s *MenuService) DeleteCategory(ctx context.Context, id int) error {
	count, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflictError(
			fmt.Sprintf("category %d still owns %d products", id, count),
		)
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, "category deleted", zap.Int("categoryId", id))
	return nil
}

// InvalidateCache exposes cache invalidation to collaborators outside the
// catalog paths, notably the stock ledger.
func (s *MenuService) InvalidateCache(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

func (s *MenuService) invalidate(ctx context.Context, reason string, fields ...zap.Field) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Error("cache invalidation failed", append(fields, zap.String("after", reason), zap.Error(err))...)
		return
	}
	s.logger.Info("menu cache invalidated", append(fields, zap.String("after", reason))...)
}

func applyFilters(snapshot *cache.Snapshot, filters dto.MenuFilters, fromCache bool) *dto.MenuView {
	view := &dto.MenuView{
		Products:    snapshot.Products,
		Categories:  snapshot.Categories,
		Combos:      snapshot.Combos,
		LastUpdated: snapshot.LastUpdated,
		FromCache:   fromCache,
	}

	if filters.CategoryID != nil {
		filtered := make([]dto.ProductView, 0, len(view.Products))
		for _, p := range view.Products {
			if p.CategoryID == *filters.CategoryID {
				filtered = append(filtered, p)
			}
		}
		view.Products = filtered
	}

	if filters.ActiveOnly {
		products := make([]dto.ProductView, 0, len(view.Products))
		for _, p := range view.Products {
			if p.IsActive {
				products = append(products, p)
			}
		}
		view.Products = products

		categories := make([]dto.CategoryView, 0, len(view.Categories))
		for _, c := range view.Categories {
			if c.IsActive {
				categories = append(categories, c)
			}
		}
		view.Categories = categories

		combos := make([]dto.ComboView, 0, len(view.Combos))
		for _, c := range view.Combos {
			if c.IsActive {
				combos = append(combos, c)
			}
		}
		view.Combos = combos
	}

	return view
}

func applyProductUpdates(p domain.Product, updates dto.ProductUpdates) domain.Product {
	if updates.Name != nil {
		p.Name = *updates.Name
	}
	if updates.Description != nil {
		p.Description = *updates.Description
	}
	if updates.Price != nil {
		p.Price = *updates.Price
	}
	if updates.CostPrice != nil {
		p.CostPrice = updates.CostPrice
	}
	if updates.StockOnHand != nil {
		p.StockOnHand = *updates.StockOnHand
	}
	if updates.MinimumStock != nil {
		p.MinimumStock = *updates.MinimumStock
	}
	if updates.CategoryID != nil {
		p.CategoryID = *updates.CategoryID
	}
	if updates.IsActive != nil {
		p.IsActive = *updates.IsActive
	}
	if updates.Available != nil {
		p.Available = *updates.Available
	}
	return p
}

func validateCreateProduct(req dto.CreateProductRequest) error {
	if req.Name == "" {
		return apperrors.NewValidationError("name is required", apperrors.ValidationDetail{
			Field:   "name",
			Message: "name is required",
		})
	}
	if req.Price < 0 {
		return apperrors.NewValidationError("price must not be negative", apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must not be negative",
		})
	}
	if req.StockOnHand < 0 {
		return apperrors.NewValidationError("stockOnHand must not be negative", apperrors.ValidationDetail{
			Field:   "stockOnHand",
			Message: "stockOnHand must not be negative",
		})
	}
	if req.MinimumStock < 0 {
		return apperrors.NewValidationError("minimumStock must not be negative", apperrors.ValidationDetail{
			Field:   "minimumStock",
			Message: "minimumStock must not be negative",
		})
	}
	if req.CategoryID <= 0 {
		return apperrors.NewValidationError("categoryId is required", apperrors.ValidationDetail{
			Field:   "categoryId",
			Message: "categoryId must be a positive integer",
		})
	}
	return nil
}

func validateProductUpdates(updates dto.ProductUpdates) error {
	if updates.Price != nil && *updates.Price < 0 {
		return apperrors.NewValidationError("price must not be negative", apperrors.ValidationDetail{
			Field:   "price",
			Message: "price must not be negative",
		})
	}
	if updates.StockOnHand != nil && *updates.StockOnHand < 0 {
		return apperrors.NewValidationError("stockOnHand must not be negative", apperrors.ValidationDetail{
			Field:   "stockOnHand",
			Message: "stockOnHand must not be negative",
		})
	}
	if updates.MinimumStock != nil && *updates.MinimumStock < 0 {
		return apperrors.NewValidationError("minimumStock must not be negative", apperrors.ValidationDetail{
			Field:   "minimumStock",
			Message: "minimumStock must not be negative",
		})
	}
	return nil
}
