// Package store implements the Authorization Server's Code/Token Store on
// PostgreSQL, grounded on third_party/database/postgres.go's connection-pool
// setup and backend/services/gateway/internal/repository/user_repository.go's
// sqlx query shape.
package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/zeromicro/go-zero/core/logx"
)

// queryTimeout bounds every store call so an unreachable database surfaces
// as apierr.KindStoreUnavailable instead of hanging the request.
const queryTimeout = 3 * time.Second

type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		logx.Errorf("failed to connect to PostgreSQL: %v", err)
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		logx.Errorf("failed to ping PostgreSQL: %v", err)
		return nil, err
	}

	logx.Info("authserver: connected to PostgreSQL")
	return &PostgresStore{db: db}, nil
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}
