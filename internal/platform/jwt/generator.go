// Package jwtmw issues and verifies the identity provider's session tokens.
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"course_backend/internal/platform/identity"
)

// SessionClaims are the claims of a session token: the external id as the
// subject plus the provider's metadata mirror.
type SessionClaims struct {
	Metadata identity.Metadata `json:"metadata"`
	jwt.RegisteredClaims
}

// Generator signs session tokens with HS256.
type Generator struct {
	secret     []byte
	expiration time.Duration
}

var _ identity.TokenIssuer = (*Generator)(nil)

// NewGenerator creates a new session token generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) *Generator {
	return &Generator{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

// GenerateSessionToken creates a signed token for the external id carrying md.
func (g *Generator) GenerateSessionToken(externalID string, md identity.Metadata) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Metadata: md,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   externalID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ParseSessionToken verifies tokenStr against secret and returns the session it carries.
func ParseSessionToken(tokenStr string, secret []byte) (identity.Session, error) {
	var claims SessionClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		// Only HMAC is accepted
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return identity.Session{}, err
	}
	if !token.Valid {
		return identity.Session{}, jwt.ErrTokenInvalidClaims
	}
	if claims.Subject == "" {
		return identity.Session{}, errors.New("session token has no subject")
	}
	return identity.Session{ExternalID: claims.Subject, Metadata: claims.Metadata}, nil
}
