package usecase

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"fogon/internal/domain"
	"fogon/internal/dto"
	apperrors "fogon/internal/errors"
	"fogon/internal/stock/service"
)

type LedgerService interface {
	RecordMovement(ctx context.Context, input service.MovementInput) (*domain.StockMovement, error)
	RecordBatch(ctx context.Context, req dto.RecordBatchRequest) (*domain.StockBatch, error)
	RecordProduction(ctx context.Context, req dto.RecordProductionRequest) (*domain.ProductionRecord, error)
	ListMovements(ctx context.Context, productID int, filters dto.MovementFilters) ([]domain.StockMovement, error)
}

// CacheInvalidator is the menu side of every stock mutation: after a commit
// the cached menu snapshot is no longer trustworthy and gets dropped.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type LedgerUseCase struct {
	service          LedgerService
	cache            CacheInvalidator
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewLedgerUseCase(svc LedgerService, cache CacheInvalidator, logger *zap.Logger, maxRetryAttempts int) *LedgerUseCase {
	return &LedgerUseCase{
		service:          svc,
		cache:            cache,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *LedgerUseCase) RecordMovement(ctx context.Context, req dto.RecordMovementRequest) (*dto.MovementDTO, error) {
	kind := domain.MovementKind(req.Kind)
	if err := validateMovementRequest(req, kind); err != nil {
		return nil, err
	}

	var movement *domain.StockMovement
	err := uc.withDeadlockRetry(ctx, req.ProductID, func() error {
		m, err := uc.service.RecordMovement(ctx, service.MovementInput{
			ProductID: req.ProductID,
			Kind:      kind,
			Quantity:  req.Quantity,
			Reference: req.Reference,
			Notes:     req.Notes,
			Actor:     req.Actor,
		})
		if err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateCache(ctx)

	out := dto.NewMovementDTO(*movement)
	return &out, nil
}

func (uc *LedgerUseCase) RecordBatch(ctx context.Context, req dto.RecordBatchRequest) (*dto.BatchDTO, error) {
	if err := validateBatchRequest(req); err != nil {
		return nil, err
	}

	var batch *domain.StockBatch
	err := uc.withDeadlockRetry(ctx, req.ProductID, func() error {
		b, err := uc.service.RecordBatch(ctx, req)
		if err != nil {
			return err
		}
		batch = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateCache(ctx)

	out := dto.NewBatchDTO(*batch)
	return &out, nil
}

func (uc *LedgerUseCase) RecordProduction(ctx context.Context, req dto.RecordProductionRequest) (*dto.ProductionDTO, error) {
	if err := validateProductionRequest(req); err != nil {
		return nil, err
	}

	var record *domain.ProductionRecord
	err := uc.withDeadlockRetry(ctx, req.ProductID, func() error {
		r, err := uc.service.RecordProduction(ctx, req)
		if err != nil {
			return err
		}
		record = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateCache(ctx)

	out := dto.NewProductionDTO(*record)
	return &out, nil
}

func (uc *LedgerUseCase) ListMovements(ctx context.Context, productID int, filters dto.MovementFilters) (*dto.ListMovementsResponse, error) {
	if productID <= 0 {
		return nil, apperrors.NewValidationError("productId must be a positive integer", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
	}
	if filters.Kind != nil && !filters.Kind.Valid() {
		return nil, apperrors.NewValidationError("unknown movement kind", apperrors.ValidationDetail{
			Field:   "kind",
			Message: "kind must be one of ENTRY, EXIT, ADJUSTMENT",
		})
	}

	movements, err := uc.service.ListMovements(ctx, productID, filters)
	if err != nil {
		return nil, err
	}

	dtos := make([]dto.MovementDTO, 0, len(movements))
	for _, m := range movements {
		dtos = append(dtos, dto.NewMovementDTO(m))
	}

	return &dto.ListMovementsResponse{
		ProductID: productID,
		Movements: dtos,
	}, nil
}

// invalidateCache runs after a committed write. The ledger write already
// succeeded, so an invalidation failure is logged rather than turned into a
// caller-visible error; the snapshot TTL bounds how long the staleness lasts.
func (uc *LedgerUseCase) invalidateCache(ctx context.Context) {
	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.logger.Error("menu cache invalidation failed after stock write", zap.Error(err))
	}
}

func (uc *LedgerUseCase) withDeadlockRetry(ctx context.Context, productID int, fn func() error) error {
	maxAttempts := uc.maxRetryAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		if !isDeadlockError(err) {
			return err
		}

		if attempt < maxAttempts {
			backoff := backoffs[len(backoffs)-1]
			if attempt-1 < len(backoffs) {
				backoff = backoffs[attempt-1]
			}
			jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
			time.Sleep(jitter)
			uc.logger.Warn("deadlock detected, retrying",
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", maxAttempts),
				zap.Int("productId", productID),
			)
		}
	}

	return apperrors.NewDeadlockError("max retries exceeded")
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}

func validateMovementRequest(req dto.RecordMovementRequest, kind domain.MovementKind) error {
	if req.ProductID <= 0 {
		return apperrors.NewValidationError("productId must be a positive integer", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
	}
	if !kind.Valid() {
		return apperrors.NewValidationError("unknown movement kind", apperrors.ValidationDetail{
			Field:   "kind",
			Message: "kind must be one of ENTRY, EXIT, ADJUSTMENT",
		})
	}
	if kind != domain.MovementAdjustment && req.Quantity <= 0 {
		return apperrors.NewValidationError("quantity must be a positive integer", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be positive for ENTRY and EXIT",
		})
	}
	if kind == domain.MovementAdjustment && req.Quantity == 0 {
		return apperrors.NewValidationError("adjustment quantity must not be zero", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "adjustment delta must not be zero",
		})
	}
	if req.Actor == "" {
		return apperrors.NewValidationError("actor is required", apperrors.ValidationDetail{
			Field:   "actor",
			Message: "actor is required",
		})
	}
	return nil
}

func validateBatchRequest(req dto.RecordBatchRequest) error {
	if req.ProductID <= 0 {
		return apperrors.NewValidationError("productId must be a positive integer", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
	}
	if req.BatchNumber == "" {
		return apperrors.NewValidationError("batchNumber is required", apperrors.ValidationDetail{
			Field:   "batchNumber",
			Message: "batchNumber is required",
		})
	}
	if req.Quantity <= 0 {
		return apperrors.NewValidationError("quantity must be a positive integer", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be positive",
		})
	}
	if req.UnitCost != nil && *req.UnitCost < 0 {
		return apperrors.NewValidationError("unitCost must not be negative", apperrors.ValidationDetail{
			Field:   "unitCost",
			Message: "unitCost must not be negative",
		})
	}
	if req.Actor == "" {
		return apperrors.NewValidationError("actor is required", apperrors.ValidationDetail{
			Field:   "actor",
			Message: "actor is required",
		})
	}
	return nil
}

func validateProductionRequest(req dto.RecordProductionRequest) error {
	if req.ProductID <= 0 {
		return apperrors.NewValidationError("productId must be a positive integer", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
	}
	if req.Quantity <= 0 {
		return apperrors.NewValidationError("quantity must be a positive integer", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be positive",
		})
	}
	if req.UnitCost != nil && *req.UnitCost < 0 {
		return apperrors.NewValidationError("unitCost must not be negative", apperrors.ValidationDetail{
			Field:   "unitCost",
			Message: "unitCost must not be negative",
		})
	}
	if req.Actor == "" {
		return apperrors.NewValidationError("actor is required", apperrors.ValidationDetail{
			Field:   "actor",
			Message: "actor is required",
		})
	}
	return nil
}
