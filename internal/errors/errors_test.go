package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeNotFound, "User not found")
		assert.Equal(t, "NOT_FOUND: User not found", err.Error())
	})

	t.Run("Error with cause includes cause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := Wrap(ErrCodeDatabase, "Database error", cause)
		assert.Contains(t, err.Error(), "DATABASE_ERROR")
		assert.Contains(t, err.Error(), "Database error")
		assert.Contains(t, err.Error(), "database connection failed")
	})

	t.Run("WithCause adds cause to error", func(t *testing.T) {
		cause := errors.New("original error")
		err := New(ErrCodeInternal, "Something went wrong").WithCause(cause)
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("WithDetails adds details to error", func(t *testing.T) {
		details := map[string]string{"field": "email", "reason": "invalid format"}
		err := New(ErrCodeValidation, "Validation failed").WithDetails(details)
		assert.Equal(t, details, err.Details)
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"Unauthorized", func() *AppError { return Unauthorized("test") }, ErrCodeUnauthorized},
		{"Forbidden", func() *AppError { return Forbidden("test") }, ErrCodeForbidden},
		{"InvalidToken", func() *AppError { return InvalidToken("test") }, ErrCodeInvalidToken},
		{"NotFound", func() *AppError { return NotFound("User") }, ErrCodeNotFound},
		{"AlreadyExists", func() *AppError { return AlreadyExists("User") }, ErrCodeAlreadyExists},
		{"ValidationError", func() *AppError { return ValidationError("test") }, ErrCodeValidation},
		{"InvalidInput", func() *AppError { return InvalidInput("email", "invalid") }, ErrCodeInvalidInput},
		{"MissingRequired", func() *AppError { return MissingRequired("email") }, ErrCodeMissingRequired},
		{"InvalidVerificationCode", func() *AppError { return InvalidVerificationCode() }, ErrCodeInvalidVerifyCode},
		{"VerificationCodeExpired", func() *AppError { return VerificationCodeExpired() }, ErrCodeVerifyCodeExpired},
		{"InsufficientBalance", func() *AppError { return InsufficientBalance(4, 1) }, ErrCodeInsufficientBalance},
		{"GenerationFailed", func() *AppError { return GenerationFailed() }, ErrCodeGenerationFailed},
		{"AlreadyCheckedIn", func() *AppError { return AlreadyCheckedIn("2025-01-01") }, ErrCodeAlreadyCheckedIn},
		{"RateLimitExceeded", func() *AppError { return RateLimitExceeded() }, ErrCodeRateLimitExceeded},
		{"Internal", func() *AppError { return Internal("test") }, ErrCodeInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.constructor()
			assert.Equal(t, tc.expectedCode, err.Code)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestInsufficientBalance(t *testing.T) {
	t.Run("carries required and available points", func(t *testing.T) {
		err := InsufficientBalance(4, 3)
		details, ok := err.Details.(map[string]int)
		assert.True(t, ok)
		assert.Equal(t, 4, details["required"])
		assert.Equal(t, 3, details["available"])
	})
}

func TestAlreadyCheckedIn(t *testing.T) {
	t.Run("carries last check-in date for display", func(t *testing.T) {
		err := AlreadyCheckedIn("2025-06-15")
		details, ok := err.Details.(map[string]string)
		assert.True(t, ok)
		assert.Equal(t, "2025-06-15", details["lastCheckinDate"])
	})
}

func TestUpstreamUnavailable(t *testing.T) {
	t.Run("wraps the upstream error", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := UpstreamUnavailable(cause)
		assert.Equal(t, ErrCodeUpstreamUnavailable, err.Code)
		assert.Equal(t, cause, err.Unwrap())
	})
}

func TestDatabase(t *testing.T) {
	t.Run("wraps database error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Database(cause)
		assert.Equal(t, ErrCodeDatabase, err.Code)
		assert.Equal(t, cause, err.Unwrap())
	})
}

func TestExternal(t *testing.T) {
	t.Run("wraps external service error", func(t *testing.T) {
		cause := errors.New("timeout")
		err := External("image API", cause)
		assert.Equal(t, ErrCodeExternal, err.Code)
		assert.Contains(t, err.Message, "image API")
		assert.Equal(t, cause, err.Unwrap())
	})
}

func TestIsAppError(t *testing.T) {
	t.Run("returns true for AppError", func(t *testing.T) {
		err := New(ErrCodeNotFound, "test")
		assert.True(t, IsAppError(err))
	})

	t.Run("returns false for standard error", func(t *testing.T) {
		err := errors.New("standard error")
		assert.False(t, IsAppError(err))
	})

	t.Run("returns true for wrapped AppError", func(t *testing.T) {
		inner := New(ErrCodeNotFound, "test")
		wrapped := fmt.Errorf("outer: %w", inner)
		assert.True(t, IsAppError(wrapped))
	})
}

func TestGetCode(t *testing.T) {
	t.Run("returns code for AppError", func(t *testing.T) {
		err := New(ErrCodeInsufficientBalance, "test")
		assert.Equal(t, ErrCodeInsufficientBalance, GetCode(err))
	})

	t.Run("returns internal for standard error", func(t *testing.T) {
		assert.Equal(t, ErrCodeInternal, GetCode(errors.New("boom")))
	})
}
