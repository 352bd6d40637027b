package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/roster/internal/auth"
	"github.com/geocoder89/roster/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TokensRepo is the personal_access_tokens registry behind auth.TokenService.
type TokensRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTokensRepo(pool *pgxpool.Pool, prom *observability.Prom) *TokensRepo {
	return &TokensRepo{pool: pool, prom: prom}
}

func (r *TokensRepo) Save(ctx context.Context, s auth.Session) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	return r.prom.ObserveDB("tokens.save", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO personal_access_tokens (id, user_id, token_hash, expires_at, revoked_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE
			SET expires_at = EXCLUDED.expires_at, revoked_at = EXCLUDED.revoked_at
		`, s.ID, s.UserID, s.TokenHash, s.ExpiresAt, s.RevokedAt, s.CreatedAt)
		return err
	})
}

func (r *TokensRepo) Lookup(ctx context.Context, id string) (auth.Session, error) {
	var s auth.Session

	err := r.prom.ObserveDB("tokens.lookup", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT id, user_id, token_hash, expires_at, revoked_at, created_at
			FROM personal_access_tokens
			WHERE id = $1
		`, id).Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.RevokedAt, &s.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Session{}, auth.ErrSessionNotFound
		}
		return auth.Session{}, err
	}

	return s, nil
}

func (r *TokensRepo) Revoke(ctx context.Context, id string) error {
	return r.prom.ObserveDB("tokens.revoke", func() error {
		_, err := r.pool.Exec(ctx, `
			UPDATE personal_access_tokens
			SET revoked_at = NOW()
			WHERE id = $1 AND revoked_at IS NULL
		`, id)
		return err
	})
}

// Prune deletes tokens that expired or were revoked before cutoff and returns
// how many rows went.
func (r *TokensRepo) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64

	err := r.prom.ObserveDB("tokens.prune", func() error {
		tag, err := r.pool.Exec(ctx, `
			DELETE FROM personal_access_tokens
			WHERE expires_at < $1 OR revoked_at < $1
		`, cutoff)
		n = tag.RowsAffected()
		return err
	})

	return n, err
}
