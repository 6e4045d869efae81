package credstore

import (
	"context"
	"sync"
	"time"

	"github.com/johnbasrai/identityplane/internal/apierr"
	"github.com/johnbasrai/identityplane/pkg/randid"
)

type entry struct {
	record    RefreshRecord
	expiresAt time.Time
}

// MemoryStore is an in-process Store, grounded on
// gourdiantoken.repository.inmemory.imp.go's MemoryTokenRepository. It backs
// this package's own tests and the logic tests; svc.NewServiceContext does
// not use it and always connects to Redis.
type MemoryStore struct {
	mu        sync.Mutex
	refresh   map[string]entry
	blacklist map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		refresh:   make(map[string]entry),
		blacklist: make(map[string]time.Time),
	}
}

func (s *MemoryStore) IssueRefresh(_ context.Context, rec RefreshRecord, ttl time.Duration) (string, error) {
	handle := randid.New()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[handle] = entry{record: rec, expiresAt: time.Now().Add(ttl)}
	return handle, nil
}

func (s *MemoryStore) ConsumeRefresh(_ context.Context, handle string) (RefreshRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.refresh[handle]
	// The lock makes fetch-then-delete a single atomic step: only the first
	// of two concurrent callers observes ok==true.
	delete(s.refresh, handle)
	if !ok || time.Now().After(e.expiresAt) {
		return RefreshRecord{}, apierr.New(apierr.KindNotFound, "refresh token not found")
	}
	return e.record, nil
}

func (s *MemoryStore) Revoke(_ context.Context, jti string, remaining time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blacklist[jti] = time.Now().Add(remaining)
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.blacklist[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(exp) {
		delete(s.blacklist, jti)
		return false, nil
	}
	return true, nil
}
