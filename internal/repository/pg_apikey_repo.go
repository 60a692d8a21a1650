package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kiddoconnect/campaign-service/internal/domain"
)

type pgAPIKeyRepository struct {
	pool *pgxpool.Pool
}

// NewPgAPIKeyRepository returns an APIKeyRepository backed by PostgreSQL.
func NewPgAPIKeyRepository(pool *pgxpool.Pool) APIKeyRepository {
	return &pgAPIKeyRepository{pool: pool}
}

func (r *pgAPIKeyRepository) GetActive(ctx context.Context, key string) (*domain.APIKey, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, key, active, last_used_at, created_at
		FROM api_keys
		WHERE key = $1 AND active = TRUE`, key)

	var k domain.APIKey
	err := row.Scan(&k.ID, &k.TenantID, &k.Key, &k.Active, &k.LastUsedAt, &k.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvalidAPIKey
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *pgAPIKeyRepository) TouchLastUsed(ctx context.Context, key string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = $1 WHERE key = $2`, at, key)
	return err
}
