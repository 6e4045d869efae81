// Package httperr renders apierr.Error values as the Token Service's JSON
// error body: {"error": "<kind>", "message": "<detail>"}. The Authorization
// Server uses the RFC 6749 {error, error_description} shape instead, so the
// two services intentionally do not share a renderer.
package httperr

import (
	"context"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"github.com/johnbasrai/identityplane/internal/apierr"
	"github.com/johnbasrai/identityplane/internal/tokenservice/types"
)

type body struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Write maps err to its apierr.Kind-derived status and JSON body. Errors
// that aren't an *apierr.Error are treated as internal and logged.
func Write(ctx context.Context, w http.ResponseWriter, err error) {
	ae := toAPIErr(ctx, err)
	httpx.WriteJsonCtx(ctx, w, ae.HTTPStatus(), body{
		Error:   string(ae.Kind),
		Message: ae.Message,
	})
}

// WriteValidate renders /auth/validate's bespoke {valid:false, error}
// failure shape per spec.md §6, instead of the rest of the service's
// {error, message} body.
func WriteValidate(ctx context.Context, w http.ResponseWriter, err error) {
	ae := toAPIErr(ctx, err)
	httpx.WriteJsonCtx(ctx, w, ae.HTTPStatus(), types.ValidateErrorResponse{
		Valid: false,
		Error: ae.Message,
	})
}

func toAPIErr(ctx context.Context, err error) *apierr.Error {
	ae, ok := apierr.As(err)
	if !ok {
		logx.WithContext(ctx).Errorf("unhandled error: %v", err)
		return apierr.New(apierr.KindStoreUnavailable, "internal error")
	}
	return ae
}
