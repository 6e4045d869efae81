package logic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnbasrai/identityplane/internal/apierr"
	"github.com/johnbasrai/identityplane/internal/authserver/config"
	"github.com/johnbasrai/identityplane/internal/authserver/model"
	"github.com/johnbasrai/identityplane/internal/authserver/store"
	"github.com/johnbasrai/identityplane/internal/authserver/svc"
	"github.com/johnbasrai/identityplane/internal/authserver/types"
)

const (
	testClientID     = "demo-client"
	testClientSecret = "s3cret"
	testRedirectURI  = "http://127.0.0.1:8081/callback"
)

func testServiceContext(t *testing.T) *svc.ServiceContext {
	t.Helper()
	mem := store.NewMemoryStore()
	mem.SeedClient(model.Client{ClientID: testClientID, ClientSecret: testClientSecret, RedirectURI: testRedirectURI})
	mem.SeedUser(model.User{UserID: "user_001", Username: "demo", PasswordHash: "irrelevant"})

	cfg := config.Config{StateSecret: "this-is-a-32-byte-or-longer-secret!"}
	return svc.NewServiceContextWithStore(cfg, mem)
}

// approveAndGetCode drives RenderConsent then Decide to produce a fresh
// authorization code, exercising the CSRF cookie round trip along the way.
func approveAndGetCode(t *testing.T, svcCtx *svc.ServiceContext, state string) string {
	t.Helper()
	ctx := context.Background()

	rec := httptest.NewRecorder()
	err := NewAuthorizeLogic(ctx, svcCtx).RenderConsent(&types.AuthorizeRequest{
		ResponseType: "code",
		ClientID:     testClientID,
		RedirectURI:  testRedirectURI,
		State:        state,
	}, rec)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/oauth/authorize", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	redirect, err := NewAuthorizeLogic(ctx, svcCtx).Decide(&types.AuthorizeDecisionRequest{
		ClientID:    testClientID,
		RedirectURI: testRedirectURI,
		State:       state,
		Action:      "approve",
	}, req)
	require.NoError(t, err)

	u, err := url.Parse(redirect)
	require.NoError(t, err)
	code := u.Query().Get("code")
	require.NotEmpty(t, code)
	assert.Equal(t, state, u.Query().Get("state"))
	return code
}

func TestAuthorizeDecide_DenyRedirectsWithAccessDenied(t *testing.T) {
	svcCtx := testServiceContext(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	require.NoError(t, NewAuthorizeLogic(ctx, svcCtx).RenderConsent(&types.AuthorizeRequest{
		ResponseType: "code",
		ClientID:     testClientID,
		RedirectURI:  testRedirectURI,
		State:        "XYZ",
	}, rec))

	req := httptest.NewRequest(http.MethodPost, "/oauth/authorize", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	redirect, err := NewAuthorizeLogic(ctx, svcCtx).Decide(&types.AuthorizeDecisionRequest{
		ClientID:    testClientID,
		RedirectURI: testRedirectURI,
		State:       "XYZ",
		Action:      "deny",
	}, req)
	require.NoError(t, err)

	u, err := url.Parse(redirect)
	require.NoError(t, err)
	assert.Equal(t, "access_denied", u.Query().Get("error"))
	assert.Equal(t, "XYZ", u.Query().Get("state"))
}

func TestAuthorizeDecide_CSRFMismatchRejected(t *testing.T) {
	svcCtx := testServiceContext(t)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	require.NoError(t, NewAuthorizeLogic(ctx, svcCtx).RenderConsent(&types.AuthorizeRequest{
		ResponseType: "code",
		ClientID:     testClientID,
		RedirectURI:  testRedirectURI,
		State:        "XYZ",
	}, rec))

	// No cookie attached: simulates a forged cross-site POST.
	req := httptest.NewRequest(http.MethodPost, "/oauth/authorize", nil)

	_, err := NewAuthorizeLogic(ctx, svcCtx).Decide(&types.AuthorizeDecisionRequest{
		ClientID:    testClientID,
		RedirectURI: testRedirectURI,
		State:       "XYZ",
		Action:      "approve",
	}, req)
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindInvalidRequest, ae.Kind)
}

func TestTokenLogic_HappyPath(t *testing.T) {
	svcCtx := testServiceContext(t)
	code := approveAndGetCode(t, svcCtx, "XYZ")

	resp, err := NewTokenLogic(context.Background(), svcCtx).Exchange(&types.TokenRequest{
		GrantType:    "authorization_code",
		Code:         code,
		RedirectURI:  testRedirectURI,
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
}

func TestTokenLogic_CodeReplayRejected(t *testing.T) {
	svcCtx := testServiceContext(t)
	code := approveAndGetCode(t, svcCtx, "XYZ")

	tokenReq := &types.TokenRequest{
		GrantType:    "authorization_code",
		Code:         code,
		RedirectURI:  testRedirectURI,
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
	}

	_, err := NewTokenLogic(context.Background(), svcCtx).Exchange(tokenReq)
	require.NoError(t, err)

	_, err = NewTokenLogic(context.Background(), svcCtx).Exchange(tokenReq)
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindInvalidGrant, ae.Kind)
}

func TestTokenLogic_RedirectURIMismatchRejected(t *testing.T) {
	svcCtx := testServiceContext(t)
	code := approveAndGetCode(t, svcCtx, "XYZ")

	_, err := NewTokenLogic(context.Background(), svcCtx).Exchange(&types.TokenRequest{
		GrantType:    "authorization_code",
		Code:         code,
		RedirectURI:  "http://evil.example/cb",
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
	})
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindInvalidGrant, ae.Kind)
}

func TestTokenLogic_WrongClientSecretRejected(t *testing.T) {
	svcCtx := testServiceContext(t)
	code := approveAndGetCode(t, svcCtx, "XYZ")

	_, err := NewTokenLogic(context.Background(), svcCtx).Exchange(&types.TokenRequest{
		GrantType:    "authorization_code",
		Code:         code,
		RedirectURI:  testRedirectURI,
		ClientID:     testClientID,
		ClientSecret: "wrong-secret",
	})
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindInvalidClient, ae.Kind)
}

// TestTokenLogic_Exchange_ConcurrentSingleWinner exercises spec.md §5's
// serialization-point requirement through Exchange itself, not just the
// store primitive it's built on: of N concurrent exchanges of the same
// code, exactly one must succeed and the rest must observe invalid_grant,
// never a second valid access token for the same code.
func TestTokenLogic_Exchange_ConcurrentSingleWinner(t *testing.T) {
	svcCtx := testServiceContext(t)
	code := approveAndGetCode(t, svcCtx, "XYZ")

	tokenReq := &types.TokenRequest{
		GrantType:    "authorization_code",
		Code:         code,
		RedirectURI:  testRedirectURI,
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
	}

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	var successes int
	var invalidGrantFailures int

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := NewTokenLogic(context.Background(), svcCtx).Exchange(tokenReq)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			if ae, ok := apierr.As(err); ok && ae.Kind == apierr.KindInvalidGrant {
				invalidGrantFailures++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, invalidGrantFailures)
}

func TestUserinfoLogic_HappyPath(t *testing.T) {
	svcCtx := testServiceContext(t)
	code := approveAndGetCode(t, svcCtx, "XYZ")

	tokenResp, err := NewTokenLogic(context.Background(), svcCtx).Exchange(&types.TokenRequest{
		GrantType:    "authorization_code",
		Code:         code,
		RedirectURI:  testRedirectURI,
		ClientID:     testClientID,
		ClientSecret: testClientSecret,
	})
	require.NoError(t, err)

	info, err := NewUserinfoLogic(context.Background(), svcCtx).Userinfo(tokenResp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user_001", info.Sub)
	assert.Equal(t, "demo", info.Username)
}

func TestUserinfoLogic_ExpiredTokenRejected(t *testing.T) {
	svcCtx := testServiceContext(t)
	require.NoError(t, svcCtx.Store.InsertAccessToken(context.Background(), model.AccessToken{
		Token:     "expired-token",
		ClientID:  testClientID,
		UserID:    "user_001",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	_, err := NewUserinfoLogic(context.Background(), svcCtx).Userinfo("expired-token")
	require.Error(t, err)
	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindInvalidClient, ae.Kind)
}
