package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreFailure(t *testing.T) {
	err := StoreFailure("patch", 500, errors.New("boom"))
	assert.Equal(t, ErrCodeStoreFailure, err.Code)
	assert.Contains(t, err.Error(), "status 500")
	assert.True(t, IsStoreFailure(err))

	timeout := StoreFailure("list", 0, context.DeadlineExceeded)
	assert.True(t, errors.Is(timeout, context.DeadlineExceeded))
	assert.NotContains(t, timeout.Message, "status")
}

func TestNotFoundCountsAsStoreFailure(t *testing.T) {
	err := fmt.Errorf("move: %w", NotFound("task", "t1"))
	assert.True(t, IsNotFound(err))
	assert.True(t, IsStoreFailure(err))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(err))
}

func TestValidation(t *testing.T) {
	err := ValidationError("title", "Title required")
	assert.True(t, IsValidation(err))
	assert.True(t, IsBadRequest(err))
	assert.False(t, IsStoreFailure(err))
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatus(err))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	wrapped := Wrap(NotFound("task", "t1"), "get task")
	assert.Equal(t, ErrCodeNotFound, wrapped.Code)
	assert.Equal(t, http.StatusNotFound, wrapped.HTTPStatus)

	plain := Wrap(errors.New("disk full"), "save task")
	assert.Equal(t, ErrCodeInternalError, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(plain))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("x")))
}
