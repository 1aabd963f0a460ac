package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	message := "product not found"
	err := NewNotFoundError(message)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
}

func TestNotFoundError_IsNotFoundError(t *testing.T) {
	err := NewNotFoundError("test not found")

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, notFoundErr)
	assert.Equal(t, "test not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_WithOtherError(t *testing.T) {
	err := errors.New("some other error")

	notFoundErr, ok := IsNotFoundError(err)
	assert.False(t, ok)
	assert.Nil(t, notFoundErr)
}

func TestValidationError_Creation(t *testing.T) {
	message := "validation failed"
	details := []ValidationDetail{
		{Field: "quantity", Message: "must be positive"},
		{Field: "productId", Message: "required field"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)
}

func TestConflictError_Creation(t *testing.T) {
	err := NewConflictError("category still owns products")

	assert.Equal(t, "category still owns products", err.Error())

	conflictErr, ok := IsConflictError(err)
	assert.True(t, ok)
	assert.NotNil(t, conflictErr)
}

func TestStoreUnavailableError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStoreUnavailableError("fetching catalog", cause)

	assert.Contains(t, err.Error(), "fetching catalog")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, errors.Is(err, cause))

	storeErr, ok := IsStoreUnavailableError(err)
	assert.True(t, ok)
	assert.Equal(t, cause, storeErr.Cause)
}

func TestStoreUnavailableError_NilCause(t *testing.T) {
	err := NewStoreUnavailableError("store down", nil)

	assert.Equal(t, "store down", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestDeadlockError_Creation(t *testing.T) {
	err := NewDeadlockError("max retries exceeded")

	deadlockErr, ok := IsDeadlockError(err)
	assert.True(t, ok)
	assert.Equal(t, "max retries exceeded", deadlockErr.Message)
}

func TestInternalError_Creation(t *testing.T) {
	cause := errors.New("database error")
	err := NewInternalError("failed to query database", cause)

	assert.NotNil(t, err)
	assert.Equal(t, "failed to query database", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "failed to query database")
	assert.Contains(t, err.Error(), "database error")
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewInternalError("wrapper", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}
