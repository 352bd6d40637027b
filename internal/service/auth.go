package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/geocoder89/roster/internal/apperr"
	"github.com/geocoder89/roster/internal/domain/user"
	"github.com/geocoder89/roster/internal/security"
)

type Credentials struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthService struct {
	users  UserStore
	tokens TokenIssuer
	log    *slog.Logger
}

func NewAuthService(users UserStore, tokens TokenIssuer, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{users: users, tokens: tokens, log: log}
}

// Authenticate verifies the credentials, requires the admin role and returns
// a new bearer token. Unknown names and wrong passwords are reported
// identically.
func (s *AuthService) Authenticate(ctx context.Context, in Credentials) (string, error) {
	in.Name = strings.TrimSpace(in.Name)

	fields, err := validateInput(in)
	if err != nil {
		return "", apperr.Internal(err)
	}
	if len(fields) > 0 {
		return "", apperr.Validation(fields, "name", "password")
	}

	u, err := s.users.GetByName(ctx, in.Name)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			security.BurnCompare(in.Password)
			return "", apperr.New(apperr.KindInvalidCredentials, MsgInvalidLogin)
		}
		return "", apperr.Internal(err)
	}

	if err := security.CheckPassword(u.PasswordHash, in.Password); err != nil {
		return "", apperr.New(apperr.KindInvalidCredentials, MsgInvalidLogin)
	}

	if !user.HasRole(u, user.RoleAdmin) {
		s.log.InfoContext(ctx, "authentication denied: missing admin role", "user_id", u.ID)
		return "", apperr.Forbidden(MsgNotAuthorized)
	}

	token, err := s.tokens.Issue(ctx, u)
	if err != nil {
		return "", apperr.Internal(err)
	}

	s.log.InfoContext(ctx, "token issued", "user_id", u.ID)

	return token, nil
}

// Logout revokes the token the caller presented.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	if err := s.tokens.Revoke(ctx, raw); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
