package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/johnbasrai/identityplane/internal/apierr"
	"github.com/johnbasrai/identityplane/internal/tokenservice/credstore"
	"github.com/johnbasrai/identityplane/internal/tokenservice/jwtsign"
	"github.com/johnbasrai/identityplane/internal/tokenservice/svc"
	"github.com/johnbasrai/identityplane/internal/tokenservice/types"
)

type RefreshLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRefreshLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RefreshLogic {
	return &RefreshLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Refresh consumes the old handle before minting anything new, so a failure
// partway through never leaves a reusable old handle: rotation only ever
// moves forward. Per spec.md §4.4.7, once the handle is consumed the worst
// outcome of a later failure is a dead-ended session, never a replay window.
func (l *RefreshLogic) Refresh(req *types.RefreshRequest) (*types.TokenResponse, error) {
	rec, err := l.svcCtx.Store.ConsumeRefresh(l.ctx, req.RefreshToken)
	if err != nil {
		return nil, apierr.New(apierr.KindUnauthorized, "invalid or already used refresh token")
	}

	claims := jwtsign.NewClaims(rec.UserID, rec.Email, l.svcCtx.Config.AccessTokenExpiry(), time.Now())

	accessToken, err := l.svcCtx.Signer.Sign(claims)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, "failed to sign access token", err)
	}

	newRefreshToken, err := l.svcCtx.Store.IssueRefresh(l.ctx, credstore.RefreshRecord{
		UserID: rec.UserID,
		Email:  rec.Email,
	}, l.svcCtx.Config.RefreshTokenExpiry())
	if err != nil {
		return nil, err
	}

	return &types.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(l.svcCtx.Config.AccessTokenExpirySeconds),
		RefreshToken: newRefreshToken,
	}, nil
}
