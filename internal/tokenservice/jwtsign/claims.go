package jwtsign

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/johnbasrai/identityplane/pkg/randid"
)

// Claims is the JWT payload the Token Service issues. It follows RFC 7519
// standard claims (sub, iat, exp, jti) plus the application-specific email
// claim, grounded on original_source/jwt-service/src/claims.rs.
type Claims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Iat   int64  `json:"iat"`
	Exp   int64  `json:"exp"`
	Jti   string `json:"jti"`
}

// GetExpirationTime, GetIssuedAt, GetNotBefore, GetIssuer, GetSubject and
// GetAudience implement jwt.Claims so Claims can be signed and parsed
// directly by golang-jwt without an intermediate MapClaims round trip.
func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Exp, 0)), nil
}

func (c Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.Iat, 0)), nil
}

func (c Claims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

func (c Claims) GetIssuer() (string, error) {
	return "", nil
}

func (c Claims) GetSubject() (string, error) {
	return c.Sub, nil
}

func (c Claims) GetAudience() (jwt.ClaimStrings, error) {
	return nil, nil
}

// NewClaims builds Claims for a fresh access token with the given access
// lifetime, matching original_source's Claims::new(user_id, email, expiry).
func NewClaims(userID, email string, lifetime time.Duration, now time.Time) Claims {
	return Claims{
		Sub:   userID,
		Email: email,
		Iat:   now.Unix(),
		Exp:   now.Add(lifetime).Unix(),
		Jti:   randid.New(),
	}
}
