package credstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnbasrai/identityplane/internal/apierr"
)

func newTestStore() Store {
	return NewMemoryStore()
}

func TestIssueAndConsumeRefresh_RoundTrip(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	rec := RefreshRecord{UserID: "user_001", Email: "demo@example.com"}
	handle, err := s.IssueRefresh(ctx, rec, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, handle)

	got, err := s.ConsumeRefresh(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestConsumeRefresh_SingleUse(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	handle, err := s.IssueRefresh(ctx, RefreshRecord{UserID: "u1"}, time.Hour)
	require.NoError(t, err)

	_, err = s.ConsumeRefresh(ctx, handle)
	require.NoError(t, err)

	_, err = s.ConsumeRefresh(ctx, handle)
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindNotFound, ae.Kind)
}

func TestConsumeRefresh_Unknown(t *testing.T) {
	s := newTestStore()
	_, err := s.ConsumeRefresh(context.Background(), "no-such-handle")
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindNotFound, ae.Kind)
}

func TestConsumeRefresh_Expired(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	handle, err := s.IssueRefresh(ctx, RefreshRecord{UserID: "u1"}, time.Millisecond)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = s.ConsumeRefresh(ctx, handle)
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindNotFound, ae.Kind)
}

// TestConsumeRefresh_ConcurrentSingleUse exercises the single-use guarantee
// under contention: of N goroutines racing to consume the same handle,
// exactly one may succeed.
func TestConsumeRefresh_ConcurrentSingleUse(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	handle, err := s.IssueRefresh(ctx, RefreshRecord{UserID: "u1"}, time.Hour)
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	var successes int32
	var mu sync.Mutex

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := s.ConsumeRefresh(ctx, handle); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes)
}

func TestRevokeAndIsRevoked(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	revoked, err := s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "jti-1", time.Hour))

	revoked, err = s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestIsRevoked_ExpiresWithRemainingLifetime(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.Revoke(ctx, "jti-2", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	revoked, err := s.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevoke_IdempotentOnAlreadyRevoked(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.Revoke(ctx, "jti-3", time.Hour))
	require.NoError(t, s.Revoke(ctx, "jti-3", time.Hour))

	revoked, err := s.IsRevoked(ctx, "jti-3")
	require.NoError(t, err)
	assert.True(t, revoked)
}
