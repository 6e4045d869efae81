package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/johnbasrai/identityplane/internal/apierr"
	"github.com/johnbasrai/identityplane/internal/tokenservice/svc"
	"github.com/johnbasrai/identityplane/internal/tokenservice/types"
)

type RevokeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRevokeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RevokeLogic {
	return &RevokeLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Revoke blacklists a still-live token's jti for its remaining lifetime.
// Per spec.md §4.4.8 an already-expired token is rejected without a store
// write: there's nothing left to blacklist.
func (l *RevokeLogic) Revoke(req *types.RevokeRequest) (*types.RevokeResponse, error) {
	claims, err := l.svcCtx.Signer.Verify(req.Token)
	if err != nil {
		if ae, ok := apierr.As(err); ok && ae.Kind == apierr.KindExpired {
			return nil, apierr.New(apierr.KindAlreadyExpired, "token already expired")
		}
		return nil, apierr.New(apierr.KindUnauthorized, "invalid token")
	}

	remaining := time.Until(time.Unix(claims.Exp, 0))

	if err := l.svcCtx.Store.Revoke(l.ctx, claims.Jti, remaining); err != nil {
		return nil, err
	}

	return &types.RevokeResponse{Message: "token revoked", Jti: claims.Jti}, nil
}
