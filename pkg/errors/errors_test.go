package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorString(t *testing.T) {
	e := NotFound("account", "a-1")
	assert.Contains(t, e.Error(), "NOT_FOUND")
	assert.Contains(t, e.Error(), "a-1")

	wrapped := Internal(errors.New("pool exhausted"))
	assert.Contains(t, wrapped.Error(), "pool exhausted")
}

func TestAppError_SentinelMatching(t *testing.T) {
	assert.True(t, errors.Is(NotFound("account", "x"), ErrNotFound))
	assert.True(t, errors.Is(AlreadyExists("account", "email", "a@x.com"), ErrAlreadyExists))
	assert.True(t, errors.Is(InvalidInput("bad"), ErrInvalidInput))
	assert.True(t, errors.Is(Unauthorized("no"), ErrUnauthorized))
	assert.True(t, errors.Is(Forbidden("no"), ErrForbidden))
}

func TestAppError_AsThroughWrapping(t *testing.T) {
	inner := Unauthorized("session revoked")
	outer := fmt.Errorf("refresh: %w", inner)

	var appErr *AppError
	assert.True(t, errors.As(outer, &appErr))
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error status wins", New("SESSION_REVOKED", "revoked", http.StatusUnauthorized, ErrUnauthorized), http.StatusUnauthorized},
		{"not found sentinel", fmt.Errorf("load: %w", ErrNotFound), http.StatusNotFound},
		{"invalid input sentinel", fmt.Errorf("parse: %w", ErrInvalidInput), http.StatusBadRequest},
		{"unknown error is 500", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
