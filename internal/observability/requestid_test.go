package observability

import (
	"context"
	"testing"
)

func TestGenerateConnectionID(t *testing.T) {
	id1 := GenerateConnectionID()
	id2 := GenerateConnectionID()

	if id1 == "" {
		t.Error("expected non-empty connection ID")
	}
	if id1 == id2 {
		t.Error("expected unique connection IDs")
	}
	if len(id1) != 32 { // 16 bytes = 32 hex chars
		t.Errorf("expected 32 char connection ID, got %d", len(id1))
	}
}

func TestContextWithConnectionID(t *testing.T) {
	ctx := context.Background()
	connID := "test-connection-123"

	ctx = ContextWithConnectionID(ctx, connID)
	extracted := ConnectionIDFromContext(ctx)

	if extracted != connID {
		t.Errorf("expected %q, got %q", connID, extracted)
	}
}

func TestConnectionIDFromContext_Empty(t *testing.T) {
	ctx := context.Background()
	extracted := ConnectionIDFromContext(ctx)

	if extracted != "" {
		t.Errorf("expected empty string, got %q", extracted)
	}
}

func TestGetOrCreateConnectionID_Existing(t *testing.T) {
	existingID := "existing-id"
	ctx := ContextWithConnectionID(context.Background(), existingID)

	newCtx, id := GetOrCreateConnectionID(ctx)

	if id != existingID {
		t.Errorf("expected existing ID %q, got %q", existingID, id)
	}
	if ConnectionIDFromContext(newCtx) != existingID {
		t.Error("context should have existing ID")
	}
}

func TestGetOrCreateConnectionID_New(t *testing.T) {
	ctx := context.Background()

	newCtx, id := GetOrCreateConnectionID(ctx)

	if id == "" {
		t.Error("expected generated ID")
	}
	if ConnectionIDFromContext(newCtx) != id {
		t.Error("context should have generated ID")
	}
}

func TestSanitizeConnectionID(t *testing.T) {
	if _, ok := SanitizeConnectionID(""); ok {
		t.Error("empty id should be rejected")
	}
	if _, ok := SanitizeConnectionID("has space"); ok {
		t.Error("id with spaces should be rejected")
	}
	sanitized, ok := SanitizeConnectionID("replica-01.east_1")
	if !ok || sanitized != "replica-01.east_1" {
		t.Errorf("expected valid id to pass through, got %q, %v", sanitized, ok)
	}
}
