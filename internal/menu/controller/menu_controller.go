package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fogon/internal/dto"
	apperrors "fogon/internal/errors"
)

type MenuService interface {
	GetMenu(ctx context.Context, filters dto.MenuFilters, forceRefresh bool) (*dto.MenuView, error)
	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductView, error)
	UpdateProduct(ctx context.Context, id int, updates dto.ProductUpdates) (*dto.ProductView, error)
	DeleteProduct(ctx context.Context, id int) error
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryView, error)
	UpdateCategory(ctx context.Context, id int, updates dto.CategoryUpdates) (*dto.CategoryView, error)
	DeleteCategory(ctx context.Context, id int) error
}

type MenuController struct {
	service MenuService
	logger  *zap.Logger
}

func NewMenuController(service MenuService, logger *zap.Logger) *MenuController {
	return &MenuController{
		service: service,
		logger:  logger,
	}
}

func (c *MenuController) HandleGetMenu(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var filters dto.MenuFilters
	if categoryStr := r.URL.Query().Get("category"); categoryStr != "" {
		categoryID, err := strconv.Atoi(categoryStr)
		if err != nil || categoryID <= 0 {
			c.writeValidationError(w, "invalid category", apperrors.ValidationDetail{
				Field:   "category",
				Message: "category must be a positive integer",
			})
			return
		}
		filters.CategoryID = &categoryID
	}
	filters.ActiveOnly = r.URL.Query().Get("activeOnly") == "true"
	forceRefresh := r.URL.Query().Get("refresh") == "true"

	view, err := c.service.GetMenu(r.Context(), filters, forceRefresh)
	if err != nil {
		c.writeError(w, logger, err)
		return
	}

	c.writeJSON(w, http.StatusOK, view)
}

func (c *MenuController) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	product, err := c.service.CreateProduct(r.Context(), req)
	if err != nil {
		c.writeError(w, logger, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, product)
}

func (c *MenuController) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, ok := c.pathID(w, r, "productId")
	if !ok {
		return
	}

	var updates dto.ProductUpdates
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	product, err := c.service.UpdateProduct(r.Context(), id, updates)
	if err != nil {
		c.writeError(w, logger, err)
		return
	}

	c.writeJSON(w, http.StatusOK, product)
}

func (c *MenuController) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, ok := c.pathID(w, r, "productId")
	if !ok {
		return
	}

	if err := c.service.DeleteProduct(r.Context(), id); err != nil {
		c.writeError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *MenuController) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	category, err := c.service.CreateCategory(r.Context(), req)
	if err != nil {
		c.writeError(w, logger, err)
		return
	}

	c.writeJSON(w, http.StatusCreated, category)
}

func (c *MenuController) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, ok := c.pathID(w, r, "categoryId")
	if !ok {
		return
	}

	var updates dto.CategoryUpdates
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	category, err := c.service.UpdateCategory(r.Context(), id, updates)
	if err != nil {
		c.writeError(w, logger, err)
		return
	}

	c.writeJSON(w, http.StatusOK, category)
}

func (c *MenuController) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	id, ok := c.pathID(w, r, "categoryId")
	if !ok {
		return
	}

	if err := c.service.DeleteCategory(r.Context(), id); err != nil {
		c.writeError(w, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *MenuController) pathID(w http.ResponseWriter, r *http.Request, param string) (int, bool) {
	idStr := chi.URLParam(r, param)
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		c.writeValidationError(w, "invalid "+param, apperrors.ValidationDetail{
			Field:   param,
			Message: param + " must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *MenuController) writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
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
	if ce, ok := apperrors.IsConflictError(err); ok {
		c.writeJSON(w, http.StatusConflict, map[string]string{
			"error":   "CONFLICT",
			"message": ce.Message,
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

	logger.Error("menu operation failed", zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "INTERNAL_ERROR",
		"message": "an unexpected error occurred",
	})
}

func (c *MenuController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *MenuController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
