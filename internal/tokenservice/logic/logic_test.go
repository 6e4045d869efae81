package logic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnbasrai/identityplane/internal/apierr"
	"github.com/johnbasrai/identityplane/internal/tokenservice/config"
	"github.com/johnbasrai/identityplane/internal/tokenservice/credstore"
	"github.com/johnbasrai/identityplane/internal/tokenservice/jwtsign"
	"github.com/johnbasrai/identityplane/internal/tokenservice/svc"
	"github.com/johnbasrai/identityplane/internal/tokenservice/types"
)

func testServiceContext(t *testing.T) *svc.ServiceContext {
	t.Helper()
	signer, err := jwtsign.NewSigner("this-is-a-32-byte-or-longer-secret!")
	require.NoError(t, err)
	cfg := config.Config{
		AccessTokenExpirySeconds:  900,
		RefreshTokenExpirySeconds: 604800,
	}
	return svc.NewServiceContextWithStore(cfg, signer, credstore.NewMemoryStore())
}

func TestMintLogic_Mint(t *testing.T) {
	svcCtx := testServiceContext(t)
	l := NewMintLogic(context.Background(), svcCtx)

	resp, err := l.Mint(&types.MintRequest{UserID: "user_001", Email: "demo@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(900), resp.ExpiresIn)
}

func TestValidateLogic_ValidToken(t *testing.T) {
	svcCtx := testServiceContext(t)
	minted, err := NewMintLogic(context.Background(), svcCtx).Mint(&types.MintRequest{UserID: "u1", Email: "u1@x"})
	require.NoError(t, err)

	resp, err := NewValidateLogic(context.Background(), svcCtx).Validate(&types.ValidateRequest{Token: minted.AccessToken})
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, "u1", resp.Claims.Sub)
}

func TestValidateLogic_RevokedTokenFails(t *testing.T) {
	svcCtx := testServiceContext(t)
	minted, err := NewMintLogic(context.Background(), svcCtx).Mint(&types.MintRequest{UserID: "u1", Email: "u1@x"})
	require.NoError(t, err)

	_, err = NewRevokeLogic(context.Background(), svcCtx).Revoke(&types.RevokeRequest{Token: minted.AccessToken})
	require.NoError(t, err)

	_, err = NewValidateLogic(context.Background(), svcCtx).Validate(&types.ValidateRequest{Token: minted.AccessToken})
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindRevoked, ae.Kind)
}

func TestRefreshLogic_RotatesHandle(t *testing.T) {
	svcCtx := testServiceContext(t)
	minted, err := NewMintLogic(context.Background(), svcCtx).Mint(&types.MintRequest{UserID: "u1", Email: "u1@x"})
	require.NoError(t, err)

	refreshed, err := NewRefreshLogic(context.Background(), svcCtx).Refresh(&types.RefreshRequest{RefreshToken: minted.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, minted.RefreshToken, refreshed.RefreshToken)
	assert.NotEqual(t, minted.AccessToken, refreshed.AccessToken)

	_, err = NewRefreshLogic(context.Background(), svcCtx).Refresh(&types.RefreshRequest{RefreshToken: minted.RefreshToken})
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindUnauthorized, ae.Kind)
}

func TestRevokeLogic_AlreadyExpiredRejectedWithoutStoreWrite(t *testing.T) {
	svcCtx := testServiceContext(t)
	claims := jwtsign.NewClaims("u1", "u1@x", 0, time.Now().Add(-time.Minute))
	token, err := svcCtx.Signer.Sign(claims)
	require.NoError(t, err)

	_, err = NewRevokeLogic(context.Background(), svcCtx).Revoke(&types.RevokeRequest{Token: token})
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindAlreadyExpired, ae.Kind)

	revoked, err := svcCtx.Store.IsRevoked(context.Background(), claims.Jti)
	require.NoError(t, err)
	assert.False(t, revoked)
}
