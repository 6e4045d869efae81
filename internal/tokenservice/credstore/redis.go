package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/johnbasrai/identityplane/internal/apierr"
	"github.com/johnbasrai/identityplane/pkg/randid"
)

const (
	refreshKeyPrefix   = "refresh_token:"
	blacklistKeyPrefix = "blacklist:jti:"
	revokedMarker      = "revoked"

	// minRedisTTL avoids the TTL=0 edge case where Redis would treat the
	// key as persistent instead of immediately expiring, mirroring
	// gourdiantoken.repository.redis.imp.go's minRedisTTL guard.
	minRedisTTL = 100 * time.Millisecond
)

// RedisStore implements Store on a single go-redis client, grounded on
// third_party/cache/redis.go's connection pattern and
// gourdiantoken.repository.redis.imp.go's key layout and TTL handling.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) IssueRefresh(ctx context.Context, rec RefreshRecord, ttl time.Duration) (string, error) {
	handle := randid.New()
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", apierr.Wrap(apierr.KindStoreUnavailable, "failed to encode refresh record", err)
	}

	if ttl < minRedisTTL {
		ttl = minRedisTTL
	}

	if err := s.client.Set(ctx, refreshKeyPrefix+handle, payload, ttl).Err(); err != nil {
		return "", apierr.Wrap(apierr.KindStoreUnavailable, "failed to store refresh token", err)
	}
	return handle, nil
}

// ConsumeRefresh uses GETDEL for an atomic fetch-then-delete, closing the
// window spec.md §4.2 and §5 call out between a separate GET and DEL.
func (s *RedisStore) ConsumeRefresh(ctx context.Context, handle string) (RefreshRecord, error) {
	raw, err := s.client.GetDel(ctx, refreshKeyPrefix+handle).Result()
	if errors.Is(err, redis.Nil) {
		return RefreshRecord{}, apierr.New(apierr.KindNotFound, "refresh token not found")
	}
	if err != nil {
		return RefreshRecord{}, apierr.Wrap(apierr.KindStoreUnavailable, "failed to consume refresh token", err)
	}

	var rec RefreshRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return RefreshRecord{}, apierr.Wrap(apierr.KindStoreUnavailable, "corrupt refresh token record", err)
	}
	return rec, nil
}

func (s *RedisStore) Revoke(ctx context.Context, jti string, remaining time.Duration) error {
	if remaining < minRedisTTL {
		remaining = minRedisTTL
	}
	if err := s.client.Set(ctx, blacklistKeyPrefix+jti, revokedMarker, remaining).Err(); err != nil {
		return apierr.Wrap(apierr.KindStoreUnavailable, "failed to revoke token", err)
	}
	return nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, blacklistKeyPrefix+jti).Result()
	if err != nil {
		return false, apierr.Wrap(apierr.KindStoreUnavailable, "failed to check revocation", err)
	}
	return n > 0, nil
}
