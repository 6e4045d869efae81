package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/johnbasrai/identityplane/internal/apierr"
	"github.com/johnbasrai/identityplane/internal/authserver/svc"
	"github.com/johnbasrai/identityplane/internal/authserver/types"
)

type UserinfoLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewUserinfoLogic(ctx context.Context, svcCtx *svc.ServiceContext) *UserinfoLogic {
	return &UserinfoLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *UserinfoLogic) Userinfo(bearerToken string) (*types.UserinfoResponse, error) {
	accessToken, err := l.svcCtx.Store.FetchAccessToken(l.ctx, bearerToken)
	if err != nil {
		return nil, apierr.New(apierr.KindInvalidClient, "invalid token")
	}

	if !accessToken.ExpiresAt.After(time.Now()) {
		return nil, apierr.New(apierr.KindInvalidClient, "token expired")
	}

	user, err := l.svcCtx.Store.FetchUser(l.ctx, accessToken.UserID)
	if err != nil {
		return nil, err
	}

	return &types.UserinfoResponse{Sub: user.UserID, Username: user.Username}, nil
}
