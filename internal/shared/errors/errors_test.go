package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryStatusAndCode(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		status   int
		errType  ErrorType
		redirect string
	}{
		{"validation", NewValidationError("bad"), http.StatusBadRequest, ErrorTypeValidation, ""},
		{"gateway", NewGatewayError("down"), http.StatusBadGateway, ErrorTypeGateway, ""},
		{"signature", NewSignatureError("forged"), http.StatusBadRequest, ErrorTypeSignature, ""},
		{"state conflict", NewStateConflictError("nope"), http.StatusConflict, ErrorTypeStateConflict, ""},
		{"not found", NewNotFoundError("gone"), http.StatusNotFound, ErrorTypeNotFound, ""},
		{"limit", NewLimitExceededError("full"), http.StatusForbidden, ErrorTypeLimitExceeded, RedirectPlans},
		{"rate limited", NewRateLimitError("slow down"), http.StatusTooManyRequests, ErrorTypeRateLimited, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.errType, tt.err.Type)
			assert.Equal(t, tt.redirect, tt.err.Redirect)
		})
	}
}

func TestGatewayErrorIsRetryable(t *testing.T) {
	assert.True(t, NewGatewayError("timeout").Retryable)
	assert.False(t, NewValidationError("bad").Retryable)
}

func TestGetAppErrorThroughWrapping(t *testing.T) {
	base := NewEntitlementDenied(CodeTrialExpired, "trial over", RedirectPlans, http.StatusPaymentRequired)
	wrapped := fmt.Errorf("check failed: %w", base)

	got := GetAppError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, CodeTrialExpired, got.Code)
	assert.Nil(t, GetAppError(errors.New("plain")))
}

func TestWithCauseUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewGatewayError("create order failed").WithCause(cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsGatewayError(err))
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(errors.New("Error 1062: Duplicate entry 'x' for key 'uk'")))
	assert.True(t, IsDuplicateError(errors.New("UNIQUE constraint failed: invoices.number")))
	assert.False(t, IsDuplicateError(errors.New("record not found")))
	assert.False(t, IsDuplicateError(nil))
}
