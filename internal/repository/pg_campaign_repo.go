package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kiddoconnect/campaign-service/internal/domain"
)

type pgCampaignRepository struct {
	pool *pgxpool.Pool
}

// NewPgCampaignRepository returns a CampaignRepository backed by PostgreSQL.
func NewPgCampaignRepository(pool *pgxpool.Pool) CampaignRepository {
	return &pgCampaignRepository{pool: pool}
}

func (r *pgCampaignRepository) FindRecent(ctx context.Context, recipientID, templateID string, eventType domain.EventType, since time.Time) (*domain.Campaign, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, recipient_id, template_id, type, status,
		       scheduled_for, sent_at, error, created_at
		FROM campaigns
		WHERE recipient_id = $1 AND template_id = $2 AND type = $3
		  AND created_at >= $4
		ORDER BY created_at DESC
		LIMIT 1`, recipientID, templateID, eventType, since)

	c, err := scanCampaign(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return c, err
}

// Create inserts a campaign. The unique index on
// (recipient_id, template_id, created-day) makes a concurrent duplicate
// insert fail with a unique violation, which is absorbed as
// domain.ErrDuplicateCampaign rather than surfaced as a storage error.
func (r *pgCampaignRepository) Create(ctx context.Context, c *domain.Campaign) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO campaigns
			(id, tenant_id, recipient_id, template_id, type, status,
			 scheduled_for, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.TenantID, c.RecipientID, c.TemplateID, c.Type, c.Status,
		c.ScheduledFor, c.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrDuplicateCampaign
		}
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

func (r *pgCampaignRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.DueCampaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.tenant_id, c.recipient_id, c.template_id, c.type, c.status,
		       c.scheduled_for, c.sent_at, c.error, c.created_at,
		       r.id, r.tenant_id, r.name, r.birthdate, r.parent_name, r.email, r.phone,
		       r.tags, r.consent_at, r.consent_ip, r.deleted_at, r.created_at,
		       tp.id, tp.tenant_id, tp.title, tp.subject, tp.html_content, tp.event_type, tp.created_at,
		       t.id, t.business_name, t.email_from_name, t.email_reply_to, t.logo_url, t.created_at
		FROM campaigns c
		JOIN recipients r ON r.id = c.recipient_id
		JOIN email_templates tp ON tp.id = c.template_id
		JOIN tenants t ON t.id = c.tenant_id
		WHERE c.status = 'pending' AND c.scheduled_for <= $1
		ORDER BY c.scheduled_for ASC
		LIMIT $2`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("find due campaigns: %w", err)
	}
	defer rows.Close()

	var due []*domain.DueCampaign
	for rows.Next() {
		var d domain.DueCampaign
		err := rows.Scan(
			&d.Campaign.ID, &d.Campaign.TenantID, &d.Campaign.RecipientID,
			&d.Campaign.TemplateID, &d.Campaign.Type, &d.Campaign.Status,
			&d.Campaign.ScheduledFor, &d.Campaign.SentAt, &d.Campaign.Error,
			&d.Campaign.CreatedAt,
			&d.Recipient.ID, &d.Recipient.TenantID, &d.Recipient.Name,
			&d.Recipient.Birthdate, &d.Recipient.ParentName, &d.Recipient.Email,
			&d.Recipient.Phone, &d.Recipient.Tags, &d.Recipient.ConsentAt,
			&d.Recipient.ConsentIP, &d.Recipient.DeletedAt, &d.Recipient.CreatedAt,
			&d.Template.ID, &d.Template.TenantID, &d.Template.Title,
			&d.Template.Subject, &d.Template.HTMLContent, &d.Template.EventType,
			&d.Template.CreatedAt,
			&d.Tenant.ID, &d.Tenant.BusinessName, &d.Tenant.EmailFromName,
			&d.Tenant.EmailReplyTo, &d.Tenant.LogoURL, &d.Tenant.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan due campaign: %w", err)
		}
		due = append(due, &d)
	}
	return due, rows.Err()
}

// MarkSent and MarkFailed are guarded on status='pending' so the state
// machine stays one-directional even under a racing update.

func (r *pgCampaignRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE campaigns
		SET status = 'sent', sent_at = $1, error = NULL
		WHERE id = $2 AND status = 'pending'`, sentAt, id)
	return err
}

func (r *pgCampaignRepository) MarkFailed(ctx context.Context, id string, errMsg string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE campaigns
		SET status = 'failed', error = $1
		WHERE id = $2 AND status = 'pending'`, errMsg, id)
	return err
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(
		&c.ID, &c.TenantID, &c.RecipientID, &c.TemplateID, &c.Type, &c.Status,
		&c.ScheduledFor, &c.SentAt, &c.Error, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
