package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kiddoconnect/campaign-service/internal/domain"
)

type pgTemplateRepository struct {
	pool *pgxpool.Pool
}

// NewPgTemplateRepository returns a TemplateRepository backed by PostgreSQL.
func NewPgTemplateRepository(pool *pgxpool.Pool) TemplateRepository {
	return &pgTemplateRepository{pool: pool}
}

// GetActiveByEventType resolves zero-or-one template. The store does not
// enforce uniqueness per (tenant, event_type); ordering by created_at DESC
// makes the most recently created template win as the documented tie-break.
func (r *pgTemplateRepository) GetActiveByEventType(ctx context.Context, tenantID string, eventType domain.EventType) (*domain.Template, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, title, subject, html_content, event_type, created_at
		FROM email_templates
		WHERE tenant_id = $1 AND event_type = $2
		ORDER BY created_at DESC
		LIMIT 1`, tenantID, eventType)

	var t domain.Template
	err := row.Scan(&t.ID, &t.TenantID, &t.Title, &t.Subject, &t.HTMLContent, &t.EventType, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return &t, nil
}
