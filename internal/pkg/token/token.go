// Package token issues and verifies the signed bearer tokens that prove
// identity between requests. Tokens are HS256-signed compact JWTs carrying
// the account id and role; there is no server-side revocation, expiry is the
// only invalidation mechanism.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL matches the original deployment's one-day token lifetime.
const DefaultTTL = 24 * time.Hour

var (
	// ErrMissingSecret is returned by NewIssuer when no signing secret is
	// configured. Callers treat this as fatal at startup.
	ErrMissingSecret = errors.New("token: signing secret is empty")
	// ErrInvalidToken covers every verification failure: malformed compact
	// form, wrong algorithm, bad signature, or elapsed expiry.
	ErrInvalidToken = errors.New("token: invalid token")
)

// Claims is the decoded identity a verified token vouches for.
type Claims struct {
	UserID string
	Role   string
}

// Issuer signs and verifies tokens with a process-wide secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer validates the secret eagerly so a misconfigured process fails at
// startup instead of on first login.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}, nil
}

// Issue returns a signed token encoding the account id and role with
// issued-at and expiry claims.
func (i *Issuer) Issue(userID, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":   userID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(i.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and expiry of a compact token and returns its
// claims. Any failure mode collapses into ErrInvalidToken; callers must not
// learn why a token was rejected.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" {
		return nil, ErrInvalidToken
	}

	return &Claims{UserID: userID, Role: role}, nil
}

// TTL exposes the configured token lifetime, used to align cookie max-age
// with token expiry.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}
