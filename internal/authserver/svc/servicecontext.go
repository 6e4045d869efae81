package svc

import (
	"github.com/johnbasrai/identityplane/internal/authserver/config"
	"github.com/johnbasrai/identityplane/internal/authserver/consent"
	"github.com/johnbasrai/identityplane/internal/authserver/store"
)

type ServiceContext struct {
	Config      config.Config
	Store       store.Store
	StateSigner *consent.StateSigner
}

func NewServiceContext(c config.Config) (*ServiceContext, error) {
	db, err := store.NewPostgresStore(c.DatabaseURL)
	if err != nil {
		return nil, err
	}

	return &ServiceContext{
		Config:      c,
		Store:       db,
		StateSigner: consent.NewStateSigner(c.StateSecret),
	}, nil
}

// NewServiceContextWithStore builds a ServiceContext around an already
// constructed Store, used by tests to swap in a store.MemoryStore without a
// running PostgreSQL instance.
func NewServiceContextWithStore(c config.Config, st store.Store) *ServiceContext {
	return &ServiceContext{
		Config:      c,
		Store:       st,
		StateSigner: consent.NewStateSigner(c.StateSecret),
	}
}
