package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/roster/internal/domain/user"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is the registry record behind one issued token.
type Session struct {
	ID        string
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// SessionStore persists issued token records. Lookup returns
// ErrSessionNotFound for unknown ids.
type SessionStore interface {
	Save(ctx context.Context, s Session) error
	Lookup(ctx context.Context, id string) (Session, error)
	Revoke(ctx context.Context, id string) error
}

type UserFinder interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

// TokenService issues opaque bearer tokens bound to a user and resolves them
// back to that user. Tokens are signed JWTs whose jti must also be present,
// unrevoked and unexpired in the session registry.
type TokenService struct {
	jwt      *Manager
	sessions SessionStore
	users    UserFinder
}

func NewTokenService(jwt *Manager, sessions SessionStore, users UserFinder) *TokenService {
	return &TokenService{jwt: jwt, sessions: sessions, users: users}
}

func (s *TokenService) Issue(ctx context.Context, u user.User) (string, error) {
	issued, err := s.jwt.GenerateAccessToken(u.ID, u.Name)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	err = s.sessions.Save(ctx, Session{
		ID:        issued.JTI,
		UserID:    u.ID,
		TokenHash: s.jwt.HashToken(issued.Raw),
		ExpiresAt: issued.ExpiresAt,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	return issued.Raw, nil
}

// Resolve returns the user bound to raw. Every rejection reason other than a
// registry or user-store failure is reported as ErrInvalidToken.
func (s *TokenService) Resolve(ctx context.Context, raw string) (user.User, error) {
	sess, err := s.session(ctx, raw)
	if err != nil {
		return user.User{}, err
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrInvalidToken
		}
		return user.User{}, fmt.Errorf("load token owner: %w", err)
	}

	return u, nil
}

// Revoke invalidates raw. Revoking an unknown or already revoked token is not
// an error.
func (s *TokenService) Revoke(ctx context.Context, raw string) error {
	sess, err := s.session(ctx, raw)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil
		}
		return err
	}

	return s.sessions.Revoke(ctx, sess.ID)
}

func (s *TokenService) session(ctx context.Context, raw string) (Session, error) {
	claims, err := s.jwt.VerifyAccessToken(raw)
	if err != nil {
		return Session{}, ErrInvalidToken
	}

	sess, err := s.sessions.Lookup(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Session{}, ErrInvalidToken
		}
		return Session{}, fmt.Errorf("lookup session: %w", err)
	}

	if sess.RevokedAt != nil || time.Now().UTC().After(sess.ExpiresAt) {
		return Session{}, ErrInvalidToken
	}

	// the presented token must be the one the record was created for
	if subtle.ConstantTimeCompare([]byte(sess.TokenHash), []byte(s.jwt.HashToken(raw))) != 1 {
		return Session{}, ErrInvalidToken
	}

	if sess.UserID != claims.UserID {
		return Session{}, ErrInvalidToken
	}

	return sess, nil
}
