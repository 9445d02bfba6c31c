package middleware

import (
	"net/http"
	"strings"
	"time"

	"inkwell/internal/auth/token"
	"inkwell/internal/session"
	"inkwell/pkg/apperror"
	"inkwell/pkg/logger"
	"inkwell/pkg/response"
)

// Verifier validates an access token.
type Verifier interface {
	Parse(tokenString string) (*token.Claims, error)
}

// Auth resolves the bearer token into a session.Session on the request
// context. Handlers read it with session.FromContext.
func Auth(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// For WebSockets, tokens are passed in the query string
			// because the browser's WebSocket API doesn't support custom headers.
			tokenString := r.URL.Query().Get("token")
			if tokenString == "" {
				tokenString = BearerToken(r)
			}

			if tokenString == "" {
				response.Error(w, apperror.Unauthenticated("Unauthorized: No token provided"))
				return
			}

			claims, err := verifier.Parse(tokenString)
			if err != nil {
				logger.Sugar.Infof("Invalid token: %v", err)
				response.Error(w, apperror.Unauthenticated("Unauthorized: Invalid or expired token"))
				return
			}

			sess := session.Session{
				UserID:      claims.Subject,
				Email:       claims.Email,
				AccessToken: tokenString,
			}
			if claims.ExpiresAt != nil {
				sess.ExpiresAt = claims.ExpiresAt.Time
			}
			if !sess.Valid(time.Now()) {
				response.Error(w, apperror.Unauthenticated("Unauthorized: Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
