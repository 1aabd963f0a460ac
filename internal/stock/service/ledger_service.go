package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fogon/internal/domain"
	"fogon/internal/dto"
	apperrors "fogon/internal/errors"
)

// LedgerTx is the unit of work for one stock mutation. Every write a single
// operation needs happens through one LedgerTx, so a receipt row can never be
// committed without its companion movement and counter update.
type LedgerTx interface {
	ProductForUpdate(ctx context.Context, productID int) (*domain.Product, error)
	UpdateStockOnHand(ctx context.Context, productID int, stockOnHand int) error
	InsertMovement(ctx context.Context, m domain.StockMovement) error
	InsertBatch(ctx context.Context, b domain.StockBatch) error
	BatchNumberExists(ctx context.Context, productID int, batchNumber string) (bool, error)
	InsertProduction(ctx context.Context, r domain.ProductionRecord) error
}

type LedgerStore interface {
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error
	ListMovements(ctx context.Context, productID int, filters dto.MovementFilters) ([]domain.StockMovement, error)
}

type LedgerService struct {
	store     LedgerStore
	logger    *zap.Logger
	txTimeout time.Duration
	locks     *productLocks
	now       func() time.Time
}

func NewLedgerService(store LedgerStore, logger *zap.Logger, txTimeout time.Duration) *LedgerService {
	return &LedgerService{
		store:     store,
		logger:    logger,
		txTimeout: txTimeout,
		locks:     newProductLocks(),
		now:       time.Now,
	}
}

type MovementInput struct {
	ProductID int
	Kind      domain.MovementKind
	Quantity  int
	Reference string
	Notes     string
	Actor     string
}

// RecordMovement appends a movement and updates the product counter in one
// transaction. The counter only ever changes through this path.
func (s *LedgerService) RecordMovement(ctx context.Context, input MovementInput) (*domain.StockMovement, error) {
	unlock := s.locks.acquire(input.ProductID)
	defer unlock()

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var movement *domain.StockMovement
	err := s.store.WithinTx(txCtx, func(tx LedgerTx) error {
		m, err := s.applyMovement(txCtx, tx, input)
		if err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("movement recorded",
		zap.String("movementId", movement.ID),
		zap.Int("productId", movement.ProductID),
		zap.String("kind", string(movement.Kind)),
		zap.Int("quantity", movement.Quantity),
		zap.Int("stockAfter", movement.StockAfter),
	)

	return movement, nil
}

// RecordBatch records a stock receipt and its companion ENTRY movement as one
// unit of work.
func (s *LedgerService) RecordBatch(ctx context.Context, req dto.RecordBatchRequest) (*domain.StockBatch, error) {
	unlock := s.locks.acquire(req.ProductID)
	defer unlock()

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var batch *domain.StockBatch
	err := s.store.WithinTx(txCtx, func(tx LedgerTx) error {
		exists, err := tx.BatchNumberExists(txCtx, req.ProductID, req.BatchNumber)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewValidationError(
				fmt.Sprintf("batch number %q already recorded for product %d", req.BatchNumber, req.ProductID),
				apperrors.ValidationDetail{Field: "batchNumber", Message: "batch number must be unique per product"},
			)
		}

		b := domain.StockBatch{
			ID:             uuid.New().String(),
			ProductID:      req.ProductID,
			BatchNumber:    req.BatchNumber,
			Quantity:       req.Quantity,
			UnitCost:       req.UnitCost,
			ExpirationDate: req.ExpirationDate,
			Notes:          req.Notes,
			CreatedAt:      s.now().UTC(),
		}
		if err := tx.InsertBatch(txCtx, b); err != nil {
			return err
		}

		_, err = s.applyMovement(txCtx, tx, MovementInput{
			ProductID: req.ProductID,
			Kind:      domain.MovementEntry,
			Quantity:  req.Quantity,
			Reference: fmt.Sprintf("batch %s", req.BatchNumber),
			Notes:     req.Notes,
			Actor:     req.Actor,
		})
		if err != nil {
			return err
		}

		batch = &b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("batch recorded",
		zap.String("batchId", batch.ID),
		zap.Int("productId", batch.ProductID),
		zap.String("batchNumber", batch.BatchNumber),
		zap.Int("quantity", batch.Quantity),
	)

	return batch, nil
}

// RecordProduction records an in-house production run and its companion ENTRY
// movement as one unit of work.
func (s *LedgerService) RecordProduction(ctx context.Context, req dto.RecordProductionRequest) (*domain.ProductionRecord, error) {
	unlock := s.locks.acquire(req.ProductID)
	defer unlock()

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var record *domain.ProductionRecord
	err := s.store.WithinTx(txCtx, func(tx LedgerTx) error {
		r := domain.ProductionRecord{
			ID:        uuid.New().String(),
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			UnitCost:  req.UnitCost,
			Notes:     req.Notes,
			Actor:     req.Actor,
			CreatedAt: s.now().UTC(),
		}
		if err := tx.InsertProduction(txCtx, r); err != nil {
			return err
		}

		_, err := s.applyMovement(txCtx, tx, MovementInput{
			ProductID: req.ProductID,
			Kind:      domain.MovementEntry,
			Quantity:  req.Quantity,
			Reference: fmt.Sprintf("production %s", r.ID),
			Notes:     req.Notes,
			Actor:     req.Actor,
		})
		if err != nil {
			return err
		}

		record = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("production recorded",
		zap.String("productionId", record.ID),
		zap.Int("productId", record.ProductID),
		zap.Int("quantity", record.Quantity),
	)

	return record, nil
}

// AdjustStockTo brings a product's counter to an absolute target through an
// ADJUSTMENT movement. This is the only path catalog edits may change stock
// by; the counter never moves without a ledger entry.
func (s *LedgerService) AdjustStockTo(ctx context.Context, productID int, target int, actor string, reference string) (*domain.StockMovement, error) {
	if target < 0 {
		return nil, apperrors.NewValidationError("target stock must not be negative", apperrors.ValidationDetail{
			Field:   "stockOnHand",
			Message: "stockOnHand must not be negative",
		})
	}

	unlock := s.locks.acquire(productID)
	defer unlock()

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var movement *domain.StockMovement
	err := s.store.WithinTx(txCtx, func(tx LedgerTx) error {
		product, err := tx.ProductForUpdate(txCtx, productID)
		if err != nil {
			return err
		}

		delta := target - product.StockOnHand
		if delta == 0 {
			return nil
		}

		m, err := s.applyMovementLocked(txCtx, tx, product, MovementInput{
			ProductID: productID,
			Kind:      domain.MovementAdjustment,
			Quantity:  delta,
			Reference: reference,
			Actor:     actor,
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

	if movement != nil {
		s.logger.Info("stock adjusted to target",
			zap.String("movementId", movement.ID),
			zap.Int("productId", productID),
			zap.Int("target", target),
		)
	}

	return movement, nil
}

func (s *LedgerService) ListMovements(ctx context.Context, productID int, filters dto.MovementFilters) ([]domain.StockMovement, error) {
	return s.store.ListMovements(ctx, productID, filters)
}

func (s *LedgerService) applyMovement(ctx context.Context, tx LedgerTx, input MovementInput) (*domain.StockMovement, error) {
	product, err := tx.ProductForUpdate(ctx, input.ProductID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("product %d does not exist", input.ProductID),
				apperrors.ValidationDetail{Field: "productId", Message: "unknown product"},
			)
		}
		return nil, err
	}

	return s.applyMovementLocked(ctx, tx, product, input)
}

func (s *LedgerService) applyMovementLocked(ctx context.Context, tx LedgerTx, product *domain.Product, input MovementInput) (*domain.StockMovement, error) {
	newStock := product.StockOnHand + input.Kind.Delta(input.Quantity)
	if newStock < 0 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("movement would drive stock of product %d below zero", input.ProductID),
			apperrors.ValidationDetail{Field: "quantity", Message: "resulting stock would be negative"},
		)
	}

	movement := domain.StockMovement{
		ID:          uuid.New().String(),
		ProductID:   input.ProductID,
		Kind:        input.Kind,
		Quantity:    input.Quantity,
		StockBefore: product.StockOnHand,
		StockAfter:  newStock,
		Reference:   input.Reference,
		Notes:       input.Notes,
		Actor:       input.Actor,
		CreatedAt:   s.now().UTC(),
	}

	if err := tx.InsertMovement(ctx, movement); err != nil {
		return nil, err
	}
	if err := tx.UpdateStockOnHand(ctx, input.ProductID, newStock); err != nil {
		return nil, err
	}

	return &movement, nil
}
