package logic

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"github.com/johnbasrai/identityplane/internal/apierr"
	"github.com/johnbasrai/identityplane/internal/authserver/consent"
	"github.com/johnbasrai/identityplane/internal/authserver/model"
	"github.com/johnbasrai/identityplane/internal/authserver/svc"
	"github.com/johnbasrai/identityplane/internal/authserver/types"
	"github.com/johnbasrai/identityplane/pkg/randid"
)

// HardcodedConsentUserID stands in for an authenticated end-user session.
// spec.md §9's open question (b) notes a real deployment must bind the
// consent step to an authenticated session; this constant isolates the
// stand-in to one place.
const HardcodedConsentUserID = "user_001"

type AuthorizeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewAuthorizeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *AuthorizeLogic {
	return &AuthorizeLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// RenderConsent validates response_type, client_id and redirect_uri before
// reflecting anything back to the browser, per spec.md §4.4.1: an
// unregistered client or a mismatched redirect_uri must not reach the HTML
// render step.
func (l *AuthorizeLogic) RenderConsent(req *types.AuthorizeRequest, w http.ResponseWriter) error {
	if req.ResponseType != "code" {
		return apierr.New(apierr.KindInvalidRequest, "unsupported response_type")
	}

	client, err := l.svcCtx.Store.LookupClient(l.ctx, req.ClientID)
	if err != nil {
		return err
	}
	if client.RedirectURI != req.RedirectURI {
		return apierr.New(apierr.KindInvalidRequest, "redirect_uri does not match registered value")
	}

	l.svcCtx.StateSigner.SetCookie(w, req.State)

	return consent.Render(w, consent.PageData{
		ClientID:    req.ClientID,
		RedirectURI: req.RedirectURI,
		Scope:       req.Scope,
		State:       req.State,
	})
}

// Decide handles the consent form submission. A CSRF state failure, an
// unknown client or a redirect_uri that does not match the registered value
// is returned as an error, which the handler renders as a JSON body instead
// of redirecting. Past those checks every outcome is a redirect to
// redirect_uri, and state is echoed verbatim per spec.md §4.4.2.
func (l *AuthorizeLogic) Decide(req *types.AuthorizeDecisionRequest, r *http.Request) (redirectURL string, err error) {
	if cerr := l.svcCtx.StateSigner.Verify(r, req.State); cerr != nil {
		return "", cerr
	}

	client, err := l.svcCtx.Store.LookupClient(l.ctx, req.ClientID)
	if err != nil {
		return "", err
	}
	if client.RedirectURI != req.RedirectURI {
		return "", apierr.New(apierr.KindInvalidRequest, "redirect_uri does not match registered value")
	}

	if req.Action != "approve" {
		return buildRedirect(req.RedirectURI, map[string]string{
			"error": "access_denied",
			"state": req.State,
		}), nil
	}

	code := randid.New()
	insertErr := l.svcCtx.Store.InsertCode(l.ctx, model.AuthorizationCode{
		Code:        code,
		ClientID:    req.ClientID,
		UserID:      HardcodedConsentUserID,
		RedirectURI: req.RedirectURI,
		Scope:       req.Scope,
		ExpiresAt:   time.Now().Add(5 * time.Minute),
	})
	if insertErr != nil {
		return buildRedirect(req.RedirectURI, map[string]string{
			"error": "server_error",
			"state": req.State,
		}), nil
	}

	return buildRedirect(req.RedirectURI, map[string]string{
		"code":  code,
		"state": req.State,
	}), nil
}

func buildRedirect(base string, params map[string]string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
