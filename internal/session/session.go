// Package session carries the authenticated user explicitly through
// context.Context and models auth-state changes as events applied to a
// bounded holder.
package session

import (
	"context"
	"time"

	"inkwell/pkg/apperror"
)

// Session is the read-only projection of the user the auth service issued a
// token for.
type Session struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Valid reports whether the session identifies a user and has not expired.
// A zero ExpiresAt never expires.
func (s Session) Valid(now time.Time) bool {
	if s.UserID == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

type contextKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}

// Require returns the session in ctx or an AuthRequired error carrying
// message as the user-facing text.
func Require(ctx context.Context, message string) (Session, error) {
	s, ok := FromContext(ctx)
	if !ok || !s.Valid(time.Now()) {
		return Session{}, apperror.Unauthenticated(message)
	}
	return s, nil
}
