package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kiddoconnect/campaign-service/internal/domain"
)

type pgTenantRepository struct {
	pool *pgxpool.Pool
}

// NewPgTenantRepository returns a TenantRepository backed by PostgreSQL.
func NewPgTenantRepository(pool *pgxpool.Pool) TenantRepository {
	return &pgTenantRepository{pool: pool}
}

func (r *pgTenantRepository) List(ctx context.Context) ([]*domain.Tenant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, business_name, email_from_name, email_reply_to, logo_url, created_at
		FROM tenants
		ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*domain.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (r *pgTenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, business_name, email_from_name, email_reply_to, logo_url, created_at
		FROM tenants WHERE id = $1`, id)

	t, err := scanTenant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return t, err
}

func scanTenant(row pgx.Row) (*domain.Tenant, error) {
	var t domain.Tenant
	err := row.Scan(&t.ID, &t.BusinessName, &t.EmailFromName, &t.EmailReplyTo, &t.LogoURL, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
