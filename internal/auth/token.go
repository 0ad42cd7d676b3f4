package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/starford/keepnote/internal/apperr"
	"github.com/starford/keepnote/internal/models"
)

// registeredClaims are JWT claim names that can never be used as a role
// claim key.
var registeredClaims = map[string]struct{}{
	"sub": {}, "iss": {}, "aud": {}, "exp": {}, "nbf": {}, "iat": {}, "jti": {},
}

// TokenClaims is the verified content of an introspected token.
type TokenClaims struct {
	Subject  string
	Role     string
	Claims   map[string]string
	IssuedAt time.Time
}

// Issuer mints and introspects HMAC-SHA256 signed bearer tokens.
//
// The claim layout is subject = user id plus a role claim keyed by the
// user's role value (role -> id); consumers inspect that literal shape,
// so it must round-trip exactly.
type Issuer struct {
	keys *KeySource
	ttl  time.Duration
	now  func() time.Time
}

// NewIssuer creates an Issuer signing with keys and embedding a validity
// window of ttl.
func NewIssuer(keys *KeySource, ttl time.Duration) *Issuer {
	return &Issuer{keys: keys, ttl: ttl, now: time.Now}
}

// Issue builds a signed token for the given identity.
func (i *Issuer) Issue(user models.User) (string, error) {
	key, err := i.keys.Key()
	if err != nil {
		return "", err
	}
	now := i.now()
	claims := jwt.MapClaims{
		"sub": user.UserID,
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(i.ttl)),
	}
	if _, reserved := registeredClaims[user.Role]; user.Role != "" && !reserved {
		claims[user.Role] = user.UserID
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Introspect verifies the signature and validity window of token and
// returns its claims. It is a pure function of the token, the signing key
// and the clock.
func (i *Issuer) Introspect(token string) (*TokenClaims, error) {
	key, err := i.keys.Key()
	if err != nil {
		return nil, err
	}
	parsed, err := jwt.Parse(token,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.ErrTokenExpired
		}
		return nil, apperr.ErrInvalidToken
	}
	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.ErrInvalidToken
	}
	subject, ok := mapClaims["sub"].(string)
	if !ok || subject == "" {
		return nil, apperr.ErrInvalidToken
	}

	tc := &TokenClaims{Subject: subject, Claims: make(map[string]string)}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		tc.IssuedAt = iat.Time
	}
	for name, value := range mapClaims {
		if _, reserved := registeredClaims[name]; reserved {
			continue
		}
		s, ok := value.(string)
		if !ok {
			continue
		}
		tc.Claims[name] = s
		if s == subject && tc.Role == "" {
			tc.Role = name
		}
	}
	return tc, nil
}
