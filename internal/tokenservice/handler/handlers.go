// Package handler wires the Token Service's HTTP routes, grounded on
// services/gateway/api/internal/handler/goals/getGoalHandler.go's
// parse-dispatch-respond shape.
package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/johnbasrai/identityplane/internal/tokenservice/httperr"
	"github.com/johnbasrai/identityplane/internal/tokenservice/logic"
	"github.com/johnbasrai/identityplane/internal/tokenservice/middleware"
	"github.com/johnbasrai/identityplane/internal/tokenservice/svc"
	"github.com/johnbasrai/identityplane/internal/tokenservice/types"
)

func RegisterHandlers(server *rest.Server, svcCtx *svc.ServiceContext) {
	auth := middleware.NewAuthMiddleware(svcCtx.Signer, svcCtx.Store)

	server.AddRoutes([]rest.Route{
		{Method: http.MethodGet, Path: "/healthz", Handler: healthHandler()},
		{Method: http.MethodPost, Path: "/auth/token", Handler: mintHandler(svcCtx)},
		{Method: http.MethodPost, Path: "/auth/validate", Handler: validateHandler(svcCtx)},
		{Method: http.MethodPost, Path: "/auth/refresh", Handler: refreshHandler(svcCtx)},
		{Method: http.MethodPost, Path: "/auth/revoke", Handler: revokeHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/protected", Handler: auth.Handle(protectedHandler())},
	})
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.OkJsonCtx(r.Context(), w, types.HealthResponse{Status: "ok"})
	}
}

func mintHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.MintRequest
		if err := httpx.Parse(r, &req); err != nil {
			httperr.Write(r.Context(), w, err)
			return
		}

		resp, err := logic.NewMintLogic(r.Context(), svcCtx).Mint(&req)
		if err != nil {
			httperr.Write(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func validateHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ValidateRequest
		if err := httpx.Parse(r, &req); err != nil {
			httperr.WriteValidate(r.Context(), w, err)
			return
		}

		resp, err := logic.NewValidateLogic(r.Context(), svcCtx).Validate(&req)
		if err != nil {
			httperr.WriteValidate(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func refreshHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RefreshRequest
		if err := httpx.Parse(r, &req); err != nil {
			httperr.Write(r.Context(), w, err)
			return
		}

		resp, err := logic.NewRefreshLogic(r.Context(), svcCtx).Refresh(&req)
		if err != nil {
			httperr.Write(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func revokeHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RevokeRequest
		if err := httpx.Parse(r, &req); err != nil {
			httperr.Write(r.Context(), w, err)
			return
		}

		resp, err := logic.NewRevokeLogic(r.Context(), svcCtx).Revoke(&req)
		if err != nil {
			httperr.Write(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

// protectedHandler is a demo route exercising AuthMiddleware: it echoes the
// verified subject back to the caller.
func protectedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.ClaimsFromContext(r.Context())
		httpx.OkJsonCtx(r.Context(), w, map[string]string{"sub": claims.Sub, "email": claims.Email})
	}
}
