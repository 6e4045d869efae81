// Package jwtsign implements deterministic HMAC-SHA256 sign/verify of
// compact JWS strings. It performs no I/O and knows nothing of revocation or
// refresh handles — those live one layer up in credstore. Grounded on
// pkg/gourdiantoken-master/gourdiantoken.go's JWTMaker, trimmed to the
// single symmetric HS256 algorithm spec.md §4.1 asks for.
package jwtsign

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/johnbasrai/identityplane/internal/apierr"
)

// MinSecretLen is the minimum HMAC secret length spec.md §3 requires;
// loading rejects anything shorter at startup.
const MinSecretLen = 32

type header struct {
	Alg  string   `json:"alg"`
	Typ  string   `json:"typ"`
	Crit []string `json:"crit,omitempty"`
}

// Signer signs and verifies Claims with a single shared HMAC secret.
type Signer struct {
	secret []byte
}

// NewSigner validates the secret length and returns a ready Signer.
func NewSigner(secret string) (*Signer, error) {
	if len(secret) < MinSecretLen {
		return nil, apierr.New(apierr.KindInvalidRequest, "JWT secret must be at least 32 bytes")
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign produces a compact three-segment JWS: base64url(header) "."
// base64url(payload) "." base64url(HMAC-SHA256 of the first two segments).
func (s *Signer) Sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks structure, algorithm, signature and expiry, in that order.
// The algorithm is rejected before any MAC is computed, closing off
// alg=none / algorithm-confusion attacks per spec.md §4.1.
func (s *Signer) Verify(tokenString string) (Claims, error) {
	segments := strings.Split(tokenString, ".")
	if len(segments) != 3 {
		return Claims{}, apierr.New(apierr.KindMalformedToken, "token does not have three segments")
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(segments[0])
	if err != nil {
		return Claims{}, apierr.Wrap(apierr.KindMalformedToken, "invalid header encoding", err)
	}
	var hdr header
	if err := json.Unmarshal(headerBytes, &hdr); err != nil {
		return Claims{}, apierr.Wrap(apierr.KindMalformedToken, "invalid header JSON", err)
	}

	if len(hdr.Crit) > 0 {
		return Claims{}, apierr.New(apierr.KindUnsupportedAlg, "unrecognized crit header")
	}
	if hdr.Alg != "HS256" {
		return Claims{}, apierr.New(apierr.KindUnsupportedAlg, "unsupported algorithm: "+hdr.Alg)
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(segments[1])
	if err != nil {
		return Claims{}, apierr.Wrap(apierr.KindMalformedToken, "invalid payload encoding", err)
	}
	sigBytes, err := base64.RawURLEncoding.DecodeString(segments[2])
	if err != nil {
		return Claims{}, apierr.Wrap(apierr.KindMalformedToken, "invalid signature encoding", err)
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(segments[0] + "." + segments[1]))
	expected := mac.Sum(nil)
	if subtle.ConstantTimeCompare(expected, sigBytes) != 1 {
		return Claims{}, apierr.New(apierr.KindBadSignature, "signature mismatch")
	}

	var claims Claims
	if err := json.Unmarshal(payloadBytes, &claims); err != nil {
		return Claims{}, apierr.Wrap(apierr.KindMalformedToken, "invalid claims JSON", err)
	}

	if claims.Exp <= time.Now().Unix() {
		return Claims{}, apierr.New(apierr.KindExpired, "token has expired")
	}

	return claims, nil
}
