package logic

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/johnbasrai/identityplane/internal/apierr"
	"github.com/johnbasrai/identityplane/internal/authserver/model"
	"github.com/johnbasrai/identityplane/internal/authserver/svc"
	"github.com/johnbasrai/identityplane/internal/authserver/types"
	"github.com/johnbasrai/identityplane/pkg/randid"
)

type TokenLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewTokenLogic(ctx context.Context, svcCtx *svc.ServiceContext) *TokenLogic {
	return &TokenLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Exchange implements spec.md §4.4.3's ten-step normative order exactly,
// including issuing the access token before deleting the code (step 8
// before step 9): see SPEC_FULL.md's resolution of open question (a).
func (l *TokenLogic) Exchange(req *types.TokenRequest) (*types.TokenResponse, error) {
	if req.GrantType != "authorization_code" {
		return nil, apierr.New(apierr.KindUnsupportedGrant, "unsupported grant_type")
	}

	client, err := l.svcCtx.Store.LookupClient(l.ctx, req.ClientID)
	if err != nil {
		return nil, apierr.New(apierr.KindInvalidClient, "unknown client")
	}

	if subtle.ConstantTimeCompare([]byte(client.ClientSecret), []byte(req.ClientSecret)) != 1 {
		return nil, apierr.New(apierr.KindInvalidClient, "client authentication failed")
	}

	code, err := l.svcCtx.Store.FetchCode(l.ctx, req.Code, req.ClientID)
	if err != nil {
		return nil, apierr.New(apierr.KindInvalidGrant, "unknown authorization code")
	}

	if !code.ExpiresAt.After(time.Now()) {
		return nil, apierr.New(apierr.KindInvalidGrant, "authorization code expired")
	}

	if code.RedirectURI != req.RedirectURI {
		return nil, apierr.New(apierr.KindInvalidGrant, "redirect URI mismatch")
	}

	accessToken := randid.New()
	expiresAt := time.Now().Add(time.Hour)
	if err := l.svcCtx.Store.InsertAccessToken(l.ctx, model.AccessToken{
		Token:     accessToken,
		ClientID:  req.ClientID,
		UserID:    code.UserID,
		Scope:     code.Scope,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, err
	}

	// Step 8 happens before step 9 intentionally (see SPEC_FULL.md's
	// resolution of open question (a)), but that only covers the
	// crash-safety case where the delete itself can't be completed. It is
	// not license to treat a lost race as success: DeleteCode is the
	// serialization point for concurrent exchanges of the same code per
	// spec.md §5, so if it reports no row deleted, this caller lost the
	// race and must not receive the token it just minted.
	if _, err := l.svcCtx.Store.DeleteCode(l.ctx, req.Code); err != nil {
		if ae, ok := apierr.As(err); ok && ae.Kind == apierr.KindInvalidGrant {
			if delErr := l.svcCtx.Store.DeleteAccessToken(l.ctx, accessToken); delErr != nil {
				l.Errorf("failed to discard access token after lost code-exchange race: %v", delErr)
			}
			return nil, apierr.New(apierr.KindInvalidGrant, "authorization code already consumed")
		}
		l.Errorf("failed to delete consumed authorization code: %v", err)
	}

	return &types.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   3600,
	}, nil
}
