package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kiddoconnect/campaign-service/internal/domain"
)

type pgRecipientRepository struct {
	pool *pgxpool.Pool
}

// NewPgRecipientRepository returns a RecipientRepository backed by PostgreSQL.
func NewPgRecipientRepository(pool *pgxpool.Pool) RecipientRepository {
	return &pgRecipientRepository{pool: pool}
}

func (r *pgRecipientRepository) ListActiveByTenant(ctx context.Context, tenantID string) ([]*domain.Recipient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, name, birthdate, parent_name, email, phone,
		       tags, consent_at, consent_ip, deleted_at, created_at
		FROM recipients
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	var recipients []*domain.Recipient
	for rows.Next() {
		rec, err := scanRecipient(rows)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

func (r *pgRecipientRepository) Create(ctx context.Context, rec *domain.Recipient) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO recipients
			(id, tenant_id, name, birthdate, parent_name, email, phone,
			 tags, consent_at, consent_ip, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		rec.ID, rec.TenantID, rec.Name, rec.Birthdate, rec.ParentName, rec.Email,
		rec.Phone, rec.Tags, rec.ConsentAt, rec.ConsentIP, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert recipient: %w", err)
	}
	return nil
}

func scanRecipient(row pgx.Row) (*domain.Recipient, error) {
	var rec domain.Recipient
	err := row.Scan(
		&rec.ID, &rec.TenantID, &rec.Name, &rec.Birthdate, &rec.ParentName,
		&rec.Email, &rec.Phone, &rec.Tags, &rec.ConsentAt, &rec.ConsentIP,
		&rec.DeletedAt, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
