package actorctx

import (
	"context"
	"testing"
)

func TestAdminRoundTrip(t *testing.T) {
	if _, ok := AdminFrom(context.Background()); ok {
		t.Fatalf("expected no admin on empty context")
	}

	ctx := WithAdmin(context.Background(), "admin")
	got, ok := AdminFrom(ctx)
	if !ok || got != "admin" {
		t.Fatalf("expected admin, got %q ok=%v", got, ok)
	}

	if _, ok := AdminFrom(WithAdmin(context.Background(), "")); ok {
		t.Fatalf("expected empty username to be treated as absent")
	}
}
