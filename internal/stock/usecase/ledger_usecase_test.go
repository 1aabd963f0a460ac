package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fogon/internal/domain"
	"fogon/internal/dto"
	apperrors "fogon/internal/errors"
	"fogon/internal/stock/service"
)

type mockLedgerService struct {
	RecordMovementFunc   func(ctx context.Context, input service.MovementInput) (*domain.StockMovement, error)
	RecordBatchFunc      func(ctx context.Context, req dto.RecordBatchRequest) (*domain.StockBatch, error)
	RecordProductionFunc func(ctx context.Context, req dto.RecordProductionRequest) (*domain.ProductionRecord, error)
	ListMovementsFunc    func(ctx context.Context, productID int, filters dto.MovementFilters) ([]domain.StockMovement, error)
}

func (m *mockLedgerService) RecordMovement(ctx context.Context, input service.MovementInput) (*domain.StockMovement, error) {
	return m.RecordMovementFunc(ctx, input)
}

func (m *mockLedgerService) RecordBatch(ctx context.Context, req dto.RecordBatchRequest) (*domain.StockBatch, error) {
	return m.RecordBatchFunc(ctx, req)
}

func (m *mockLedgerService) RecordProduction(ctx context.Context, req dto.RecordProductionRequest) (*domain.ProductionRecord, error) {
	return m.RecordProductionFunc(ctx, req)
}

func (m *mockLedgerService) ListMovements(ctx context.Context, productID int, filters dto.MovementFilters) ([]domain.StockMovement, error) {
	return m.ListMovementsFunc(ctx, productID, filters)
}

type mockInvalidator struct {
	calls int
	err   error
}

func (m *mockInvalidator) Invalidate(ctx context.Context) error {
	m.calls++
	return m.err
}

func newTestUseCase(svc LedgerService, inv CacheInvalidator) *LedgerUseCase {
	return NewLedgerUseCase(svc, inv, zap.NewNop(), 3)
}

func validMovementRequest() dto.RecordMovementRequest {
	return dto.RecordMovementRequest{
		ProductID: 1,
		Kind:      "ENTRY",
		Quantity:  10,
		Actor:     "ana",
	}
}

func someMovement() *domain.StockMovement {
	return &domain.StockMovement{
		ID:         "m-1",
		ProductID:  1,
		Kind:       domain.MovementEntry,
		Quantity:   10,
		StockAfter: 10,
		Actor:      "ana",
		CreatedAt:  time.Now(),
	}
}

func TestRecordMovement_Success_InvalidatesCache(t *testing.T) {
	svc := &mockLedgerService{
		RecordMovementFunc: func(ctx context.Context, input service.MovementInput) (*domain.StockMovement, error) {
			return someMovement(), nil
		},
	}
	inv := &mockInvalidator{}
	uc := newTestUseCase(svc, inv)

	result, err := uc.RecordMovement(context.Background(), validMovementRequest())

	require.NoError(t, err)
	assert.Equal(t, "m-1", result.ID)
	assert.Equal(t, 1, inv.calls)
}

func TestRecordMovement_ServiceError_DoesNotInvalidate(t *testing.T) {
	svc := &mockLedgerService{
		RecordMovementFunc: func(ctx context.Context, input service.MovementInput) (*domain.StockMovement, error) {
			return nil, apperrors.NewValidationError("stock would go negative")
		},
	}
	inv := &mockInvalidator{}
	uc := newTestUseCase(svc, inv)

	_, err := uc.RecordMovement(context.Background(), validMovementRequest())

	assert.Error(t, err)
	assert.Equal(t, 0, inv.calls)
}

func TestRecordMovement_ValidationRejectedBeforeService(t *testing.T) {
	called := false
	svc := &mockLedgerService{
		RecordMovementFunc: func(ctx context.Context, input service.MovementInput) (*domain.StockMovement, error) {
			called = true
			return someMovement(), nil
		},
	}
	uc := newTestUseCase(svc, &mockInvalidator{})

	tests := []struct {
		name string
		req  dto.RecordMovementRequest
	}{
		{"missing productId", dto.RecordMovementRequest{Kind: "ENTRY", Quantity: 1, Actor: "ana"}},
		{"unknown kind", dto.RecordMovementRequest{ProductID: 1, Kind: "TRANSFER", Quantity: 1, Actor: "ana"}},
		{"zero quantity for entry", dto.RecordMovementRequest{ProductID: 1, Kind: "ENTRY", Quantity: 0, Actor: "ana"}},
		{"negative quantity for exit", dto.RecordMovementRequest{ProductID: 1, Kind: "EXIT", Quantity: -5, Actor: "ana"}},
		{"zero adjustment", dto.RecordMovementRequest{ProductID: 1, Kind: "ADJUSTMENT", Quantity: 0, Actor: "ana"}},
		{"missing actor", dto.RecordMovementRequest{ProductID: 1, Kind: "ENTRY", Quantity: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.RecordMovement(context.Background(), tt.req)
			_, ok := apperrors.IsValidationError(err)
			assert.True(t, ok)
			assert.False(t, called)
		})
	}
}

func TestRecordMovement_NegativeAdjustmentAccepted(t *testing.T) {
	svc := &mockLedgerService{
		RecordMovementFunc: func(ctx context.Context, input service.MovementInput) (*domain.StockMovement, error) {
			assert.Equal(t, -3, input.Quantity)
			return someMovement(), nil
		},
	}
	uc := newTestUseCase(svc, &mockInvalidator{})

	_, err := uc.RecordMovement(context.Background(), dto.RecordMovementRequest{
		ProductID: 1,
		Kind:      "ADJUSTMENT",
		Quantity:  -3,
		Actor:     "ana",
	})

	assert.NoError(t, err)
}

func TestRecordMovement_DeadlockRetriedThenSucceeds(t *testing.T) {
	attempts := 0
	svc := &mockLedgerService{
		RecordMovementFunc: func(ctx context.Context, input service.MovementInput) (*domain.StockMovement, error) {
			attempts++
			if attempts < 3 {
				return nil, &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
			}
			return someMovement(), nil
		},
	}
	inv := &mockInvalidator{}
	uc := newTestUseCase(svc, inv)

	result, err := uc.RecordMovement(context.Background(), validMovementRequest())

	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 1, inv.calls)
}

func TestRecordMovement_DeadlockExhaustsRetries(t *testing.T) {
	attempts := 0
	svc := &mockLedgerService{
		RecordMovementFunc: func(ctx context.Context, input service.MovementInput) (*domain.StockMovement, error) {
			attempts++
			return nil, &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
		},
	}
	inv := &mockInvalidator{}
	uc := newTestUseCase(svc, inv)

	_, err := uc.RecordMovement(context.Background(), validMovementRequest())

	_, ok := apperrors.IsDeadlockError(err)
	assert.True(t, ok)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 0, inv.calls)
}

func TestRecordBatch_Success_InvalidatesCache(t *testing.T) {
	svc := &mockLedgerService{
		RecordBatchFunc: func(ctx context.Context, req dto.RecordBatchRequest) (*domain.StockBatch, error) {
			return &domain.StockBatch{ID: "b-1", ProductID: req.ProductID, BatchNumber: req.BatchNumber, Quantity: req.Quantity}, nil
		},
	}
	inv := &mockInvalidator{}
	uc := newTestUseCase(svc, inv)

	result, err := uc.RecordBatch(context.Background(), dto.RecordBatchRequest{
		ProductID:   1,
		BatchNumber: "L-1",
		Quantity:    5,
		Actor:       "ana",
	})

	require.NoError(t, err)
	assert.Equal(t, "b-1", result.ID)
	assert.Equal(t, 1, inv.calls)
}

func TestRecordBatch_Validation(t *testing.T) {
	uc := newTestUseCase(&mockLedgerService{}, &mockInvalidator{})

	tests := []struct {
		name string
		req  dto.RecordBatchRequest
	}{
		{"missing batch number", dto.RecordBatchRequest{ProductID: 1, Quantity: 5, Actor: "ana"}},
		{"zero quantity", dto.RecordBatchRequest{ProductID: 1, BatchNumber: "L-1", Quantity: 0, Actor: "ana"}},
		{"negative unit cost", dto.RecordBatchRequest{ProductID: 1, BatchNumber: "L-1", Quantity: 5, UnitCost: floatPtr(-1), Actor: "ana"}},
		{"missing actor", dto.RecordBatchRequest{ProductID: 1, BatchNumber: "L-1", Quantity: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.RecordBatch(context.Background(), tt.req)
			_, ok := apperrors.IsValidationError(err)
			assert.True(t, ok)
		})
	}
}

func TestRecordProduction_Success_InvalidatesCache(t *testing.T) {
	svc := &mockLedgerService{
		RecordProductionFunc: func(ctx context.Context, req dto.RecordProductionRequest) (*domain.ProductionRecord, error) {
			return &domain.ProductionRecord{ID: "p-1", ProductID: req.ProductID, Quantity: req.Quantity}, nil
		},
	}
	inv := &mockInvalidator{}
	uc := newTestUseCase(svc, inv)

	result, err := uc.RecordProduction(context.Background(), dto.RecordProductionRequest{
		ProductID: 1,
		Quantity:  12,
		Actor:     "luis",
	})

	require.NoError(t, err)
	assert.Equal(t, "p-1", result.ID)
	assert.Equal(t, 1, inv.calls)
}

func TestListMovements_MapsToDTO(t *testing.T) {
	svc := &mockLedgerService{
		ListMovementsFunc: func(ctx context.Context, productID int, filters dto.MovementFilters) ([]domain.StockMovement, error) {
			return []domain.StockMovement{*someMovement()}, nil
		},
	}
	uc := newTestUseCase(svc, &mockInvalidator{})

	resp, err := uc.ListMovements(context.Background(), 1, dto.MovementFilters{})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.ProductID)
	require.Len(t, resp.Movements, 1)
	assert.Equal(t, "m-1", resp.Movements[0].ID)
}

func TestListMovements_InvalidKind(t *testing.T) {
	uc := newTestUseCase(&mockLedgerService{}, &mockInvalidator{})

	kind := domain.MovementKind("TRANSFER")
	_, err := uc.ListMovements(context.Background(), 1, dto.MovementFilters{Kind: &kind})

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func floatPtr(f float64) *float64 {
	return &f
}
