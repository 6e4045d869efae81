package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/johnbasrai/identityplane/internal/apierr"
	"github.com/johnbasrai/identityplane/internal/tokenservice/svc"
	"github.com/johnbasrai/identityplane/internal/tokenservice/types"
)

type ValidateLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewValidateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ValidateLogic {
	return &ValidateLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Validate checks signature, algorithm and expiry first, then consults the
// revocation blacklist. A store error fails closed: spec.md §4.4.6 forbids
// ever reporting valid:true when the blacklist cannot be consulted.
func (l *ValidateLogic) Validate(req *types.ValidateRequest) (*types.ValidateResponse, error) {
	claims, err := l.svcCtx.Signer.Verify(req.Token)
	if err != nil {
		return nil, err
	}

	revoked, err := l.svcCtx.Store.IsRevoked(l.ctx, claims.Jti)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindStoreUnavailable, "failed to check revocation status", err)
	}
	if revoked {
		return nil, apierr.New(apierr.KindRevoked, "token has been revoked")
	}

	return &types.ValidateResponse{Valid: true, Claims: &claims}, nil
}
