// Package svc wires the Token Service's dependencies, grounded on
// services/gateway/api/internal/svc/serviceContext.go's
// config-in, dependencies-out constructor shape.
package svc

import (
	"github.com/redis/go-redis/v9"

	"github.com/johnbasrai/identityplane/internal/tokenservice/config"
	"github.com/johnbasrai/identityplane/internal/tokenservice/credstore"
	"github.com/johnbasrai/identityplane/internal/tokenservice/jwtsign"
)

type ServiceContext struct {
	Config config.Config
	Signer *jwtsign.Signer
	Store  credstore.Store
}

// NewServiceContext builds the production ServiceContext: a real Redis
// client behind credstore.Store and an HMAC signer from the loaded secret.
func NewServiceContext(c config.Config) (*ServiceContext, error) {
	signer, err := jwtsign.NewSigner(c.JWTSecret)
	if err != nil {
		return nil, err
	}

	opts, err := redis.ParseURL(c.RedisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	store := credstore.NewRedisStore(client)

	return &ServiceContext{
		Config: c,
		Signer: signer,
		Store:  store,
	}, nil
}

// NewServiceContextWithStore builds a ServiceContext around an already
// constructed Store, used by tests to swap in a credstore.MemoryStore
// without a running Redis instance.
func NewServiceContextWithStore(c config.Config, signer *jwtsign.Signer, store credstore.Store) *ServiceContext {
	return &ServiceContext{Config: c, Signer: signer, Store: store}
}
