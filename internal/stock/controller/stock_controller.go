package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fogon/internal/domain"
	"fogon/internal/dto"
	apperrors "fogon/internal/errors"
)

type LedgerUseCase interface {
	RecordMovement(ctx context.Context, req dto.RecordMovementRequest) (*dto.MovementDTO, error)
	RecordBatch(ctx context.Context, req dto.RecordBatchRequest) (*dto.BatchDTO, error)
	RecordProduction(ctx context.Context, req dto.RecordProductionRequest) (*dto.ProductionDTO, error)
	ListMovements(ctx context.Context, productID int, filters dto.MovementFilters) (*dto.ListMovementsResponse, error)
}

type StockController struct {
	useCase LedgerUseCase
	logger  *zap.Logger
}

func NewStockController(useCase LedgerUseCase, logger *zap.Logger) *StockController {
	return &StockController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *StockController) HandleRecordMovement(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.RecordMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	movement, err := c.useCase.RecordMovement(r.Context(), req)
	if err != nil {
		c.writeError(w, logger, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, movement)
}

func (c *StockController) HandleRecordBatch(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.RecordBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	batch, err := c.useCase.RecordBatch(r.Context(), req)
	if err != nil {
		c.writeError(w, logger, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, batch)
}

func (c *StockController) HandleRecordProduction(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.RecordProductionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	record, err := c.useCase.RecordProduction(r.Context(), req)
	if err != nil {
		c.writeError(w, logger, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, record)
}

func (c *StockController) HandleListMovements(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productIDStr := chi.URLParam(r, "productId")
	productID, err := strconv.Atoi(productIDStr)
	if err != nil {
		logger.Warn("invalid productId in path", zap.Error(err))
		c.writeValidationError(w, "invalid productId", apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
		return
	}

	filters, err := parseMovementFilters(r)
	if err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	resp, err := c.useCase.ListMovements(r.Context(), productID, filters)
	if err != nil {
		c.writeError(w, logger, err)
		return
	}

	c.writeJSON(w, http.StatusOK, resp)
}

func parseMovementFilters(r *http.Request) (dto.MovementFilters, error) {
	var filters dto.MovementFilters

	if kindStr := r.URL.Query().Get("kind"); kindStr != "" {
		kind := domain.MovementKind(kindStr)
		filters.Kind = &kind
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return filters, apperrors.NewValidationError("invalid limit", apperrors.ValidationDetail{
				Field:   "limit",
				Message: "limit must be a positive integer",
			})
		}
		filters.Limit = limit
	}

	if beforeStr := r.URL.Query().Get("before"); beforeStr != "" {
		before, err := time.Parse(time.RFC3339, beforeStr)
		if err != nil {
			return filters, apperrors.NewValidationError("invalid before timestamp", apperrors.ValidationDetail{
				Field:   "before",
				Message: "before must be an RFC3339 timestamp",
			})
		}
		filters.Before = &before
	}

	return filters, nil
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *StockController) writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}
	if nfe, ok := apperrors.IsNotFoundError(err); ok {
		c.writeJSON(w, http.StatusNotFound, map[string]string{
			"error":   "NOT_FOUND",
			"message": nfe.Message,
		})
		return
	}
	if _, ok := apperrors.IsDeadlockError(err); ok {
		logger.Warn("stock write gave up after deadlock retries", zap.Error(err))
		c.writeJSON(w, http.StatusConflict, map[string]string{
			"error":   "CONFLICT",
			"message": "concurrent stock update, retry the request",
		})
		return
	}
	if _, ok := apperrors.IsStoreUnavailableError(err); ok {
		logger.Error("durable store unavailable", zap.Error(err))
		c.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":   "STORE_UNAVAILABLE",
			"message": "the store is temporarily unavailable",
		})
		return
	}

	logger.Error("stock operation failed", zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "INTERNAL_ERROR",
		"message": "an unexpected error occurred",
	})
}

func (c *StockController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *StockController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
