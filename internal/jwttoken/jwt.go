// Package jwttoken validates bearer tokens issued by the traffic-authority
// identity provider and extracts the caller's identity from them.
package jwttoken

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "trafficwatch/pkg/domain-errors"
)

// TokenInfo is the per-request identity derived from a validated token. It is
// never persisted; its lifetime is one request.
type TokenInfo struct {
	UserID string
	Roles  []string
	Issuer string
}

// Claims is the wire shape of our access tokens. Roles are optional; absent
// roles validate to an empty list.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Service validates and mints HS256 tokens with a shared secret.
type Service struct {
	signingKey []byte
}

func NewService(signingKey string) *Service {
	return &Service{signingKey: []byte(signingKey)}
}

// ValidateToken verifies the signature and expiry of token and extracts the
// subject, roles and issuer. Every failure mode (malformed, expired, bad
// signature) collapses into a single unauthorized error so callers cannot
// probe which check failed.
func (s *Service) ValidateToken(tokenString string) (*TokenInfo, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired JWT token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired JWT token")
	}

	roles := claims.Roles
	if roles == nil {
		roles = []string{}
	}
	return &TokenInfo{
		UserID: claims.Subject,
		Roles:  roles,
		Issuer: claims.Issuer,
	}, nil
}

// GenerateToken mints a signed token. Test fixtures and operator tooling use
// it; the service itself only validates.
func (s *Service) GenerateToken(subject string, roles []string, issuer string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	})
	return token.SignedString(s.signingKey)
}
