// Package token issues and verifies HS256 access tokens compatible with the
// ones Supabase Auth hands out, so either issuer can be used.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	roleAuthenticated = "authenticated"
)

// Claims mirrors the Supabase access token payload.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Manager signs and parses access tokens with a shared secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of tokens issued by this manager.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue creates an access token for the user and returns its expiry.
func (m *Manager) Issue(userID, email string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{roleAuthenticated},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: email,
		Role:  roleAuthenticated,
	})

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// Parse validates the signature and expiry and requires a subject.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("access token is invalid")
	}
	if claims.Subject == "" {
		return nil, errors.New("user ID (sub) claim is missing")
	}
	return claims, nil
}
