// Package observability provides structured logging, redaction, and
// connection-id propagation for the redikv server — generalized from the
// teacher's HTTP request-id plumbing to the per-TCP-connection identity a
// RESP server hands out instead.
package observability

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const maxConnectionIDLen = 128

// connectionIDKey is the context key for connection IDs.
type connectionIDKey struct{}

// GenerateConnectionID generates a new unique connection ID, one per
// accepted TCP connection. Hyphens are stripped so the id is a plain
// 32-char hex token.
func GenerateConnectionID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return "conn-fallback"
	}
	return strings.ReplaceAll(id.String(), "-", "")
}

// ContextWithConnectionID adds a connection ID to the context.
func ContextWithConnectionID(ctx context.Context, connID string) context.Context {
	return context.WithValue(ctx, connectionIDKey{}, connID)
}

// ConnectionIDFromContext extracts the connection ID from context.
func ConnectionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(connectionIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GetOrCreateConnectionID gets the existing connection ID or creates a new
// one, the call a connection handler makes once at accept time.
func GetOrCreateConnectionID(ctx context.Context) (context.Context, string) {
	if id := ConnectionIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := GenerateConnectionID()
	return ContextWithConnectionID(ctx, id), id
}

// SanitizeConnectionID validates a caller-supplied connection id (e.g. one
// carried by a replication link) before it is logged or used as a span
// attribute.
func SanitizeConnectionID(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > maxConnectionIDLen {
		return "", false
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return "", false
		}
	}
	return value, true
}
