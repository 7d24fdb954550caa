package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestConflictErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewConflict("capacity_reached", "full"))

	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict error to match ErrConflict")
	}

	var ce *ConflictError
	if !errors.As(err, &ce) || ce.Code != "capacity_reached" {
		t.Fatalf("expected ConflictError with code, got %v", err)
	}
}

func TestPersistenceKeepsCause(t *testing.T) {
	err := Persistence("registrations.insert", context.DeadlineExceeded)

	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected cause to be preserved")
	}
	if Persistence("noop", nil) != nil {
		t.Fatalf("nil cause should stay nil")
	}
}

func TestValidationErrorOrNil(t *testing.T) {
	var ve *ValidationError
	if ve.OrNil() != nil {
		t.Fatalf("nil receiver should yield nil error")
	}

	ve = NewValidationError()
	if ve.OrNil() != nil {
		t.Fatalf("empty violations should yield nil error")
	}

	ve.Add(FieldViolation{Field: "email", Rule: "required", Message: "is required"})
	if ve.OrNil() == nil {
		t.Fatalf("expected non-nil error")
	}
	if ve.Error() != "validation failed: email: is required" {
		t.Fatalf("unexpected message %q", ve.Error())
	}
}
