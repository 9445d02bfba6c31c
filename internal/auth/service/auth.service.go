package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"inkwell/internal/auth/model"
	"inkwell/internal/auth/repository"
	"inkwell/internal/auth/token"
	"inkwell/internal/session"
	"inkwell/pkg/apperror"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type UserStore interface {
	Create(ctx context.Context, u model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}

type RefreshStore interface {
	Save(ctx context.Context, token string, rec model.RefreshRecord, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (model.RefreshRecord, error)
	Revoke(ctx context.Context, token string) error
}

// Publisher receives auth-state changes, typically the websocket hub.
type Publisher interface {
	Publish(evt session.Event)
}

type AuthService struct {
	Users      UserStore
	Sessions   RefreshStore
	Tokens     *token.Manager
	Events     Publisher
	RefreshTTL time.Duration
}

// NewAuthService wires the service. refresh may be nil, in which case no
// refresh tokens are issued.
func NewAuthService(users UserStore, refresh RefreshStore, tokens *token.Manager, events Publisher, refreshTTL time.Duration) *AuthService {
	return &AuthService{Users: users, Sessions: refresh, Tokens: tokens, Events: events, RefreshTTL: refreshTTL}
}

func (s *AuthService) SignUp(ctx context.Context, req model.CredentialsRequest) (*model.AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperror.Invalid(fmt.Sprintf("Password should be at least %d characters", minPasswordLength))
	}

	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.New(apperror.Conflict, "User already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Store("Failed to create account", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := model.User{ID: uuid.NewString(), Email: email, PasswordHash: string(hash)}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, apperror.Store("Failed to create account", err)
	}
	return s.issue(ctx, user, session.SignedIn)
}

func (s *AuthService) SignIn(ctx context.Context, req model.CredentialsRequest) (*model.AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, apperror.Invalid("Password is required")
	}

	user, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.Unauthenticated("Invalid login credentials")
	}
	if err != nil {
		return nil, apperror.Store("Failed to sign in", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthenticated("Invalid login credentials")
	}
	return s.issue(ctx, user, session.SignedIn)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.AuthResponse, error) {
	if s.Sessions == nil {
		return nil, apperror.Invalid("Refresh tokens are not enabled")
	}
	if refreshToken == "" {
		return nil, apperror.Invalid("refresh_token is required")
	}

	rec, err := s.Sessions.Lookup(ctx, refreshToken)
	if errors.Is(err, repository.ErrRefreshNotFound) {
		return nil, apperror.Unauthenticated("Invalid refresh token")
	}
	if err != nil {
		return nil, apperror.Store("Failed to refresh session", err)
	}
	if err := s.Sessions.Revoke(ctx, refreshToken); err != nil {
		return nil, apperror.Store("Failed to refresh session", err)
	}
	return s.issue(ctx, model.User{ID: rec.UserID, Email: rec.Email}, session.TokenRefreshed)
}

func (s *AuthService) SignOut(ctx context.Context, refreshToken string) error {
	sess, err := session.Require(ctx, "Not signed in")
	if err != nil {
		return err
	}
	if refreshToken != "" && s.Sessions != nil {
		if err := s.Sessions.Revoke(ctx, refreshToken); err != nil {
			return apperror.Store("Failed to sign out", err)
		}
	}
	s.publish(session.Event{Type: session.SignedOut, UserID: sess.UserID})
	return nil
}

// CurrentUser returns the projection of the user in ctx.
func (s *AuthService) CurrentUser(ctx context.Context) (model.UserResponse, error) {
	sess, err := session.Require(ctx, "Not signed in")
	if err != nil {
		return model.UserResponse{}, err
	}
	if sess.Email != "" {
		return model.UserResponse{ID: sess.UserID, Email: sess.Email}, nil
	}
	user, err := s.Users.GetByID(ctx, sess.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserResponse{ID: sess.UserID}, nil
	}
	if err != nil {
		return model.UserResponse{}, apperror.Store("Failed to load user", err)
	}
	return model.UserResponse{ID: user.ID, Email: user.Email}, nil
}

func (s *AuthService) issue(ctx context.Context, user model.User, evtType session.EventType) (*model.AuthResponse, error) {
	access, expiresAt, err := s.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	resp := &model.AuthResponse{
		AccessToken: access,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.Tokens.TTL().Seconds()),
		ExpiresAt:   expiresAt.Unix(),
		User:        model.UserResponse{ID: user.ID, Email: user.Email},
	}

	if s.Sessions != nil {
		refresh := uuid.NewString()
		rec := model.RefreshRecord{UserID: user.ID, Email: user.Email, CreatedAt: time.Now().UTC()}
		if err := s.Sessions.Save(ctx, refresh, rec, s.RefreshTTL); err != nil {
			return nil, apperror.Store("Failed to create session", err)
		}
		resp.RefreshToken = refresh
	}

	s.publish(session.Event{
		Type:   evtType,
		UserID: user.ID,
		Session: &session.Session{
			UserID:      user.ID,
			Email:       user.Email,
			AccessToken: access,
			ExpiresAt:   expiresAt,
		},
	})
	return resp, nil
}

func (s *AuthService) publish(evt session.Event) {
	if s.Events != nil {
		s.Events.Publish(evt)
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperror.Invalid("Email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperror.Invalid("Invalid email address")
	}
	return email, nil
}
