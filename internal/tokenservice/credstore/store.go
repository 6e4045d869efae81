// Package credstore implements the Token Service's opaque refresh handles
// and revocation blacklist on top of a KV store with per-key TTL. Grounded
// on pkg/gourdiantoken-master/gourdiantoken.repository.redis.imp.go and
// original_source/jwt-service/src/{refresh,revoke}.rs.
package credstore

import (
	"context"
	"time"
)

// RefreshRecord is the value stored under refresh_token:{handle}.
type RefreshRecord struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Store is the Credential Store contract spec.md §4.2 describes. It is
// implemented by a Redis-backed Store for production and a MemoryStore used
// by tests.
type Store interface {
	// IssueRefresh generates a fresh opaque handle, stores the record with
	// the given TTL, and returns the handle.
	IssueRefresh(ctx context.Context, rec RefreshRecord, ttl time.Duration) (handle string, err error)

	// ConsumeRefresh atomically fetches and deletes the record for handle.
	// Returns apierr.KindNotFound if the handle is unknown or already used.
	ConsumeRefresh(ctx context.Context, handle string) (RefreshRecord, error)

	// Revoke blacklists jti for remaining, the token's residual lifetime.
	// Idempotent: revoking an already-revoked jti is a no-op success.
	Revoke(ctx context.Context, jti string, remaining time.Duration) error

	// IsRevoked reports whether jti is present in the blacklist.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
