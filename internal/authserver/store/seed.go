package store

import (
	"github.com/johnbasrai/identityplane/internal/authserver/model"
	"github.com/johnbasrai/identityplane/internal/authserver/pwhash"
)

// DemoClientID, DemoClientSecret and DemoRedirectURI are the out-of-band
// registered client spec.md's out-of-scope registration step would
// otherwise require an operator to configure by hand.
const (
	DemoClientID     = "demo-client"
	DemoClientSecret = "s3cret"
	DemoRedirectURI  = "http://127.0.0.1:8081/callback"

	DemoUserID   = "user_001"
	DemoUsername = "demo"
	DemoPassword = "demo"
)

// SeedMemoryStore populates a MemoryStore with the demo client and user,
// for local development and tests without a running PostgreSQL instance.
func SeedMemoryStore(s *MemoryStore) error {
	s.SeedClient(model.Client{
		ClientID:     DemoClientID,
		ClientSecret: DemoClientSecret,
		RedirectURI:  DemoRedirectURI,
	})

	hash, err := pwhash.Hash(DemoPassword)
	if err != nil {
		return err
	}
	s.SeedUser(model.User{
		UserID:       DemoUserID,
		Username:     DemoUsername,
		PasswordHash: hash,
	})
	return nil
}
