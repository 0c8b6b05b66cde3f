package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{ErrInvalidAmount, CodeInvalidAmount},
		{fmt.Errorf("deposit: %w", ErrInsufficientFunds), CodeInsufficientFunds},
		{fmt.Errorf("%w: account 42", ErrAccountNotFound), CodeAccountNotFound},
		{ErrAccountOwnershipMismatch, CodeAccountOwnershipMismatch},
		{fmt.Errorf("commit: %w", ErrTransientStorage), CodeTransientStorageFailure},
		{errors.New("boom"), CodeInternal},
		{nil, CodeInternal},
	}

	for _, tt := range tests {
		if got := ErrorCode(tt.err); got != tt.code {
			t.Errorf("ErrorCode(%v) = %s, want %s", tt.err, got, tt.code)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(fmt.Errorf("lock: %w", ErrTransientStorage)) {
		t.Error("expected transient storage failure to be retryable")
	}
	if IsRetryable(ErrInsufficientFunds) {
		t.Error("insufficient funds must not be retryable")
	}
}
