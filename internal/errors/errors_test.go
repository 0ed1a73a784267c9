package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsSetStatusAndCategory(t *testing.T) {
	tests := []struct {
		name             string
		err              *AppError
		expectedCategory ErrorCategory
		expectedStatus   int
	}{
		{
			name:             "validation",
			err:              NewValidationError("bad input"),
			expectedCategory: CategoryValidation,
			expectedStatus:   http.StatusBadRequest,
		},
		{
			name:             "not found",
			err:              NewNotFoundError("analysis for octo/hello"),
			expectedCategory: CategoryNotFound,
			expectedStatus:   http.StatusNotFound,
		},
		{
			name:             "network",
			err:              NewNetworkError("connect failed", errors.New("dial tcp")),
			expectedCategory: CategoryNetwork,
			expectedStatus:   http.StatusBadGateway,
		},
		{
			name:             "timeout",
			err:              NewTimeoutError("slow upstream", nil),
			expectedCategory: CategoryTimeout,
			expectedStatus:   http.StatusGatewayTimeout,
		},
		{
			name:             "rate limit",
			err:              NewRateLimitError("60s"),
			expectedCategory: CategoryRateLimit,
			expectedStatus:   http.StatusTooManyRequests,
		},
		{
			name:             "external api",
			err:              NewExternalAPIError("GitHub", errors.New("502")),
			expectedCategory: CategoryExternalAPI,
			expectedStatus:   http.StatusBadGateway,
		},
		{
			name:             "internal",
			err:              NewInternalError("boom", errors.New("cause")),
			expectedCategory: CategoryInternal,
			expectedStatus:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedCategory, tt.err.Category)
			assert.Equal(t, tt.expectedStatus, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestNotFoundErrorMessage(t *testing.T) {
	err := NewNotFoundError("contributors for octo/hello")
	assert.Contains(t, err.Error(), "NOT_FOUND")
	assert.Contains(t, err.Error(), "contributors for octo/hello not found")
}

func TestToAppError(t *testing.T) {
	tests := []struct {
		name             string
		input            error
		expectedCategory ErrorCategory
	}{
		{
			name:             "connection refused maps to network",
			input:            errors.New("dial tcp 127.0.0.1:443: connection refused"),
			expectedCategory: CategoryNetwork,
		},
		{
			name:             "timeout string maps to timeout",
			input:            errors.New("i/o timeout"),
			expectedCategory: CategoryTimeout,
		},
		{
			name:             "github rate limit message maps to rate limit",
			input:            errors.New("403 API rate limit exceeded for 10.0.0.1"),
			expectedCategory: CategoryRateLimit,
		},
		{
			name:             "context cancellation maps to timeout",
			input:            fmt.Errorf("fetch: %w", context.Canceled),
			expectedCategory: CategoryTimeout,
		},
		{
			name:             "deadline exceeded maps to timeout",
			input:            fmt.Errorf("fetch: %w", context.DeadlineExceeded),
			expectedCategory: CategoryTimeout,
		},
		{
			name:             "unknown maps to internal",
			input:            errors.New("something odd"),
			expectedCategory: CategoryInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ToAppError(tt.input)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.expectedCategory, appErr.Category)
		})
	}
}

func TestToAppErrorPassthrough(t *testing.T) {
	assert.Nil(t, ToAppError(nil))

	original := NewNotFoundError("thing")
	assert.Same(t, original, ToAppError(original))
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(NewNetworkError("down", nil)))
	assert.True(t, IsRetryableError(NewTimeoutError("slow", nil)))
	assert.True(t, IsRetryableError(NewExternalAPIError("GitHub", nil)))
	assert.True(t, IsRetryableError(NewRateLimitError("60s")))
	assert.False(t, IsRetryableError(NewValidationError("bad")))
	assert.False(t, IsRetryableError(NewNotFoundError("thing")))
}

func TestGetRetryDelayGrows(t *testing.T) {
	rateErr := NewRateLimitError("60s")
	assert.Equal(t, 1*time.Second, GetRetryDelay(rateErr, 1))
	assert.Equal(t, 9*time.Second, GetRetryDelay(rateErr, 3))

	netErr := NewNetworkError("down", nil)
	assert.Less(t, GetRetryDelay(netErr, 1), GetRetryDelay(netErr, 3))
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "ignored"))

	base := errors.New("base")
	wrapped := WrapError(base, "syncing %s", "octo/hello")
	assert.ErrorIs(t, wrapped, base)
	assert.Contains(t, wrapped.Error(), "syncing octo/hello")
}
