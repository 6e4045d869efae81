package consent

import (
	"html/template"
	"io"
)

// PageData feeds the consent template. Every field is rendered through
// html/template's contextual auto-escaping, closing off the reflected-XSS
// hole a raw string-interpolated consent page would have.
type PageData struct {
	ClientID    string
	RedirectURI string
	Scope       string
	State       string
}

var pageTemplate = template.Must(template.New("consent").Parse(`<!DOCTYPE html>
<html>
<head><title>Authorize {{.ClientID}}</title></head>
<body>
  <h1>Authorize access</h1>
  <p><strong>{{.ClientID}}</strong> is requesting access to your account.</p>
  <p>Scope: {{.Scope}}</p>
  <form method="POST" action="/oauth/authorize">
    <input type="hidden" name="client_id" value="{{.ClientID}}">
    <input type="hidden" name="redirect_uri" value="{{.RedirectURI}}">
    <input type="hidden" name="scope" value="{{.Scope}}">
    <input type="hidden" name="state" value="{{.State}}">
    <button type="submit" name="action" value="approve">Approve</button>
    <button type="submit" name="action" value="deny">Deny</button>
  </form>
</body>
</html>
`))

// Render writes the consent page for data to w.
func Render(w io.Writer, data PageData) error {
	return pageTemplate.Execute(w, data)
}
