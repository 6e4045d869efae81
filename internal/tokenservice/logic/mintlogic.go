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

type MintLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewMintLogic(ctx context.Context, svcCtx *svc.ServiceContext) *MintLogic {
	return &MintLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Mint signs a fresh access token and issues a refresh handle for it. Per
// spec.md §4.4.5 a failure at either step returns 500 with no partial
// response: callers never receive an access token without a matching
// refresh token or vice versa.
func (l *MintLogic) Mint(req *types.MintRequest) (*types.TokenResponse, error) {
	claims := jwtsign.NewClaims(req.UserID, req.Email, l.svcCtx.Config.AccessTokenExpiry(), time.Now())

	accessToken, err := l.svcCtx.Signer.Sign(claims)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, "failed to sign access token", err)
	}

	refreshToken, err := l.svcCtx.Store.IssueRefresh(l.ctx, credstore.RefreshRecord{
		UserID: req.UserID,
		Email:  req.Email,
	}, l.svcCtx.Config.RefreshTokenExpiry())
	if err != nil {
		return nil, err
	}

	return &types.TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(l.svcCtx.Config.AccessTokenExpirySeconds),
		RefreshToken: refreshToken,
	}, nil
}
