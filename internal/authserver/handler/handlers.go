// Package handler wires the Authorization Server's HTTP routes, grounded
// on services/gateway/api/internal/handler/goals/getGoalHandler.go's
// parse-dispatch-respond shape.
package handler

import (
	"net/http"
	"strings"

	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/johnbasrai/identityplane/internal/apierr"
	"github.com/johnbasrai/identityplane/internal/authserver/logic"
	"github.com/johnbasrai/identityplane/internal/authserver/svc"
	"github.com/johnbasrai/identityplane/internal/authserver/types"
)

func RegisterHandlers(server *rest.Server, svcCtx *svc.ServiceContext) {
	server.AddRoutes([]rest.Route{
		{Method: http.MethodGet, Path: "/healthz", Handler: healthHandler()},
		{Method: http.MethodGet, Path: "/oauth/authorize", Handler: authorizeGetHandler(svcCtx)},
		{Method: http.MethodPost, Path: "/oauth/authorize", Handler: authorizeDecisionHandler(svcCtx)},
		{Method: http.MethodPost, Path: "/oauth/token", Handler: tokenHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/oauth/userinfo", Handler: userinfoHandler(svcCtx)},
	})
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.OkJsonCtx(r.Context(), w, map[string]string{"status": "ok"})
	}
}

func authorizeGetHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.AuthorizeRequest
		if err := httpx.Parse(r, &req); err != nil {
			writeTokenError(w, r, apierr.New(apierr.KindInvalidRequest, err.Error()))
			return
		}

		l := logic.NewAuthorizeLogic(r.Context(), svcCtx)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := l.RenderConsent(&req, w); err != nil {
			writeTokenError(w, r, err)
		}
	}
}

func authorizeDecisionHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeTokenError(w, r, apierr.New(apierr.KindInvalidRequest, "malformed form body"))
			return
		}
		req := types.AuthorizeDecisionRequest{
			ClientID:    r.FormValue("client_id"),
			RedirectURI: r.FormValue("redirect_uri"),
			Scope:       r.FormValue("scope"),
			State:       r.FormValue("state"),
			Action:      r.FormValue("action"),
		}

		l := logic.NewAuthorizeLogic(r.Context(), svcCtx)
		redirectURL, err := l.Decide(&req, r)
		if err != nil {
			writeTokenError(w, r, err)
			return
		}
		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

func tokenHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeTokenError(w, r, apierr.New(apierr.KindInvalidRequest, "malformed form body"))
			return
		}
		req := types.TokenRequest{
			GrantType:    r.FormValue("grant_type"),
			Code:         r.FormValue("code"),
			RedirectURI:  r.FormValue("redirect_uri"),
			ClientID:     r.FormValue("client_id"),
			ClientSecret: r.FormValue("client_secret"),
		}

		resp, err := logic.NewTokenLogic(r.Context(), svcCtx).Exchange(&req)
		if err != nil {
			writeTokenError(w, r, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

func userinfoHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeTokenError(w, r, apierr.New(apierr.KindInvalidClient, "missing bearer token"))
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		resp, err := logic.NewUserinfoLogic(r.Context(), svcCtx).Userinfo(token)
		if err != nil {
			writeTokenError(w, r, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}

// writeTokenError renders RFC 6749 §5.2's {error, error_description} shape
// per spec.md §4.4.3/§6, shared across the AS's JSON-returning endpoints.
func writeTokenError(w http.ResponseWriter, r *http.Request, err error) {
	ae, ok := apierr.As(err)
	if !ok {
		ae = apierr.New(apierr.KindStoreUnavailable, "internal error")
	}
	httpx.WriteJsonCtx(r.Context(), w, ae.HTTPStatus(), types.TokenErrorResponse{
		Error:            ae.OAuthErrorCode(),
		ErrorDescription: ae.Message,
	})
}
