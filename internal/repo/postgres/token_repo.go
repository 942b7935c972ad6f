package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solenne/studio-booking/internal/domain"
)

type TokensRepo interface {
	Create(ctx context.Context, token *domain.RefreshToken) (*domain.RefreshToken, error)
	FindByHash(ctx context.Context, hash string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, hash string, replacedByHash *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
}

type tokensRepo struct {
	pool *pgxpool.Pool
}

func NewTokensRepo(pool *pgxpool.Pool) TokensRepo {
	return &tokensRepo{pool: pool}
}

const tokenCols = `id, user_id, token_hash, expires_at, persistent, revoked_at, replaced_by_hash, created_at`

func (r *tokensRepo) Create(ctx context.Context, token *domain.RefreshToken) (*domain.RefreshToken, error) {
	const q = `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, persistent)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + tokenCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var created domain.RefreshToken
	err := r.pool.QueryRow(ctx, q, token.UserID, token.TokenHash, token.ExpiresAt, token.Persistent).Scan(
		&created.ID, &created.UserID, &created.TokenHash, &created.ExpiresAt,
		&created.Persistent, &created.RevokedAt, &created.ReplacedByHash, &created.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *tokensRepo) FindByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	const q = `SELECT ` + tokenCols + ` FROM refresh_tokens WHERE token_hash = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var t domain.RefreshToken
	err := r.pool.QueryRow(ctx, q, hash).Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt,
		&t.Persistent, &t.RevokedAt, &t.ReplacedByHash, &t.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return &t, err
}

// Revoke marks the row revoked and records its successor when the
// revocation is part of a rotation. Already-revoked or unknown hashes are
// a no-op: revocation is idempotent.
func (r *tokensRepo) Revoke(ctx context.Context, hash string, replacedByHash *string) error {
	const q = `
		UPDATE refresh_tokens
		SET revoked_at = now(), replaced_by_hash = COALESCE($2, replaced_by_hash)
		WHERE token_hash = $1 AND revoked_at IS NULL`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, hash, replacedByHash)
	return err
}

func (r *tokensRepo) RevokeAllForUser(ctx context.Context, userID int64) error {
	const q = `UPDATE refresh_tokens SET revoked_at = now() WHERE user_id = $1 AND revoked_at IS NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, userID)
	return err
}
