// Package middleware implements the Token Service's protected-route gate,
// grounded on services/gateway/api/internal/middleware/auth.go's bearer
// extraction shape, replacing its RPC call to the auth service with a
// direct local jwtsign.Verify + credstore.IsRevoked check.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/johnbasrai/identityplane/internal/apierr"
	"github.com/johnbasrai/identityplane/internal/tokenservice/credstore"
	"github.com/johnbasrai/identityplane/internal/tokenservice/httperr"
	"github.com/johnbasrai/identityplane/internal/tokenservice/jwtsign"
)

const (
	authorizationHeaderKey = "Authorization"
	bearerPrefix           = "Bearer "
)

type claimsContextKey struct{}

// ClaimsFromContext returns the Claims a successful AuthMiddleware run
// attached to the request context.
func ClaimsFromContext(ctx context.Context) (jwtsign.Claims, bool) {
	c, ok := ctx.Value(claimsContextKey{}).(jwtsign.Claims)
	return c, ok
}

// AuthMiddleware gates downstream handlers on a valid, unrevoked bearer
// token. Per spec.md §4.4.9 any store error fails closed with a 500, never
// silently treating an unreachable blacklist as "not revoked".
type AuthMiddleware struct {
	signer *jwtsign.Signer
	store  credstore.Store
}

func NewAuthMiddleware(signer *jwtsign.Signer, store credstore.Store) *AuthMiddleware {
	return &AuthMiddleware{signer: signer, store: store}
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get(authorizationHeaderKey)
		if authHeader == "" || !strings.HasPrefix(authHeader, bearerPrefix) {
			httperr.Write(r.Context(), w, apierr.New(apierr.KindUnauthorized, "missing bearer token"))
			return
		}
		token := strings.TrimPrefix(authHeader, bearerPrefix)

		claims, err := m.signer.Verify(token)
		if err != nil {
			httperr.Write(r.Context(), w, err)
			return
		}

		revoked, err := m.store.IsRevoked(r.Context(), claims.Jti)
		if err != nil {
			logx.WithContext(r.Context()).Errorf("revocation check failed: %v", err)
			httperr.Write(r.Context(), w, apierr.Wrap(apierr.KindStoreUnavailable, "failed to check revocation status", err))
			return
		}
		if revoked {
			httperr.Write(r.Context(), w, apierr.New(apierr.KindRevoked, "token has been revoked"))
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
		next(w, r.WithContext(ctx))
	}
}
