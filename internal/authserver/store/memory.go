package store

import (
	"context"
	"sync"

	"github.com/johnbasrai/identityplane/internal/apierr"
	"github.com/johnbasrai/identityplane/internal/authserver/model"
)

// MemoryStore is an in-process Store, grounded on the same
// MemoryTokenRepository shape credstore.MemoryStore follows. It backs this
// package's tests and the logic tests; svc.NewServiceContext does not use it
// and always connects to PostgreSQL.
type MemoryStore struct {
	mu           sync.Mutex
	clients      map[string]model.Client
	users        map[string]model.User
	codes        map[string]model.AuthorizationCode
	accessTokens map[string]model.AccessToken
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients:      make(map[string]model.Client),
		users:        make(map[string]model.User),
		codes:        make(map[string]model.AuthorizationCode),
		accessTokens: make(map[string]model.AccessToken),
	}
}

func (s *MemoryStore) SeedClient(c model.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ClientID] = c
}

func (s *MemoryStore) SeedUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.UserID] = u
}

func (s *MemoryStore) LookupClient(_ context.Context, clientID string) (model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[clientID]
	if !ok {
		return model.Client{}, apierr.New(apierr.KindInvalidClient, "unknown client")
	}
	return c, nil
}

func (s *MemoryStore) InsertCode(_ context.Context, code model.AuthorizationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code.Code] = code
	return nil
}

func (s *MemoryStore) FetchCode(_ context.Context, code, clientID string) (model.AuthorizationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.codes[code]
	if !ok || row.ClientID != clientID {
		return model.AuthorizationCode{}, apierr.New(apierr.KindInvalidGrant, "unknown authorization code")
	}
	return row, nil
}

func (s *MemoryStore) DeleteCode(_ context.Context, code string) (model.AuthorizationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.codes[code]
	if !ok {
		return model.AuthorizationCode{}, apierr.New(apierr.KindInvalidGrant, "authorization code already consumed")
	}
	delete(s.codes, code)
	return row, nil
}

func (s *MemoryStore) InsertAccessToken(_ context.Context, token model.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessTokens[token.Token] = token
	return nil
}

func (s *MemoryStore) DeleteAccessToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accessTokens, token)
	return nil
}

func (s *MemoryStore) FetchAccessToken(_ context.Context, token string) (model.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.accessTokens[token]
	if !ok {
		return model.AccessToken{}, apierr.New(apierr.KindNotFound, "unknown access token")
	}
	return row, nil
}

func (s *MemoryStore) FetchUser(_ context.Context, userID string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return model.User{}, apierr.New(apierr.KindNotFound, "unknown user")
	}
	return u, nil
}

var _ Store = (*MemoryStore)(nil)
