package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/johnbasrai/identityplane/internal/apierr"
	"github.com/johnbasrai/identityplane/internal/authserver/model"
)

// Store is the Code/Token Store contract spec.md §4.3 describes.
type Store interface {
	LookupClient(ctx context.Context, clientID string) (model.Client, error)
	InsertCode(ctx context.Context, code model.AuthorizationCode) error
	FetchCode(ctx context.Context, code, clientID string) (model.AuthorizationCode, error)
	DeleteCode(ctx context.Context, code string) (model.AuthorizationCode, error)
	InsertAccessToken(ctx context.Context, token model.AccessToken) error
	DeleteAccessToken(ctx context.Context, token string) error
	FetchAccessToken(ctx context.Context, token string) (model.AccessToken, error)
	FetchUser(ctx context.Context, userID string) (model.User, error)
}

func (s *PostgresStore) LookupClient(ctx context.Context, clientID string) (model.Client, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var c model.Client
	err := s.db.GetContext(ctx, &c,
		`SELECT client_id, client_secret, redirect_uri FROM clients WHERE client_id = $1`, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Client{}, apierr.New(apierr.KindInvalidClient, "unknown client")
	}
	if err != nil {
		return model.Client{}, apierr.Wrap(apierr.KindStoreUnavailable, "failed to look up client", err)
	}
	return c, nil
}

func (s *PostgresStore) InsertCode(ctx context.Context, code model.AuthorizationCode) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO authorization_codes (code, client_id, user_id, redirect_uri, scope, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		code.Code, code.ClientID, code.UserID, code.RedirectURI, code.Scope, code.ExpiresAt)
	if err != nil {
		return apierr.Wrap(apierr.KindStoreUnavailable, "failed to insert authorization code", err)
	}
	return nil
}

func (s *PostgresStore) FetchCode(ctx context.Context, code, clientID string) (model.AuthorizationCode, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var row model.AuthorizationCode
	err := s.db.GetContext(ctx, &row,
		`SELECT code, client_id, user_id, redirect_uri, scope, expires_at
		 FROM authorization_codes WHERE code = $1 AND client_id = $2`, code, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AuthorizationCode{}, apierr.New(apierr.KindInvalidGrant, "unknown authorization code")
	}
	if err != nil {
		return model.AuthorizationCode{}, apierr.Wrap(apierr.KindStoreUnavailable, "failed to fetch authorization code", err)
	}
	return row, nil
}

// DeleteCode removes the code and returns the deleted row via DELETE ...
// RETURNING, making delete the single serialization point for concurrent
// exchanges of the same code: exactly one caller observes a row, any other
// sees sql.ErrNoRows per spec.md §5.
func (s *PostgresStore) DeleteCode(ctx context.Context, code string) (model.AuthorizationCode, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var row model.AuthorizationCode
	err := s.db.GetContext(ctx, &row,
		`DELETE FROM authorization_codes WHERE code = $1
		 RETURNING code, client_id, user_id, redirect_uri, scope, expires_at`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AuthorizationCode{}, apierr.New(apierr.KindInvalidGrant, "authorization code already consumed")
	}
	if err != nil {
		return model.AuthorizationCode{}, apierr.Wrap(apierr.KindStoreUnavailable, "failed to delete authorization code", err)
	}
	return row, nil
}

func (s *PostgresStore) InsertAccessToken(ctx context.Context, token model.AccessToken) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO access_tokens (token, client_id, user_id, scope, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		token.Token, token.ClientID, token.UserID, token.Scope, token.ExpiresAt)
	if err != nil {
		return apierr.Wrap(apierr.KindStoreUnavailable, "failed to insert access token", err)
	}
	return nil
}

// DeleteAccessToken removes a just-minted access token when the code
// exchange that produced it turns out to have lost the concurrent-exchange
// race at DeleteCode, so the losing caller's token is never left valid.
func (s *PostgresStore) DeleteAccessToken(ctx context.Context, token string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `DELETE FROM access_tokens WHERE token = $1`, token)
	if err != nil {
		return apierr.Wrap(apierr.KindStoreUnavailable, "failed to delete access token", err)
	}
	return nil
}

func (s *PostgresStore) FetchAccessToken(ctx context.Context, token string) (model.AccessToken, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var row model.AccessToken
	err := s.db.GetContext(ctx, &row,
		`SELECT token, client_id, user_id, scope, expires_at FROM access_tokens WHERE token = $1`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AccessToken{}, apierr.New(apierr.KindNotFound, "unknown access token")
	}
	if err != nil {
		return model.AccessToken{}, apierr.Wrap(apierr.KindStoreUnavailable, "failed to fetch access token", err)
	}
	return row, nil
}

func (s *PostgresStore) FetchUser(ctx context.Context, userID string) (model.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var u model.User
	err := s.db.GetContext(ctx, &u,
		`SELECT user_id, username, password_hash FROM users WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, apierr.New(apierr.KindNotFound, "unknown user")
	}
	if err != nil {
		return model.User{}, apierr.Wrap(apierr.KindStoreUnavailable, "failed to fetch user", err)
	}
	return u, nil
}
