package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"self connection is invalid input", ErrSelfConnection, ErrValidationFailed},
		{"duplicate request", ErrDuplicateRequest, ErrDuplicateState},
		{"already connected", ErrAlreadyConnected, ErrDuplicateState},
		{"recipient not found", ErrRecipientNotFound, ErrResourceNotFound},
		{"wrapped missing upi", fmt.Errorf("approve: %w", ErrMissingUPIID), ErrValidationFailed},
		{"custom forbidden", NewForbiddenError("not yours"), ErrPermissionDenied},
		{"custom invalid state", NewInvalidStateError("already %s", "approved"), ErrInvalidState},
		{"unclassified", errors.New("boom"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Fatalf("Kind(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSentinelIdentityIsPreserved(t *testing.T) {
	err := fmt.Errorf("send: %w", ErrDuplicateRequest)
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Fatal("expected the specific sentinel to match")
	}
	if errors.Is(err, ErrAlreadyConnected) {
		t.Fatal("sibling sentinels of the same kind must not match each other")
	}
}

func TestCustomErrorMessage(t *testing.T) {
	err := NewInvalidStateError("Payment request already %s", "rejected")
	if err.Error() != "Payment request already rejected" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
