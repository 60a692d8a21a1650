package repository

import (
	"context"
	"time"

	"github.com/kiddoconnect/campaign-service/internal/domain"
)

// The interfaces below define every persistence operation the scheduler and
// dispatcher require from the store. The pgx implementations live in the
// pg_*.go files; tests use the hand-written in-memory mocks in mock_repos.go.

// TenantRepository reads tenant accounts.
type TenantRepository interface {
	List(ctx context.Context) ([]*domain.Tenant, error)
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
}

// RecipientRepository reads and creates recipient records. The reminder
// path never deletes; ListActiveByTenant excludes soft-deleted rows.
type RecipientRepository interface {
	ListActiveByTenant(ctx context.Context, tenantID string) ([]*domain.Recipient, error)
	Create(ctx context.Context, r *domain.Recipient) error
}

// TemplateRepository resolves a tenant's active template for an event type.
// GetActiveByEventType returns domain.ErrNotFound when the tenant has none;
// when several exist the most recently created wins.
type TemplateRepository interface {
	GetActiveByEventType(ctx context.Context, tenantID string, eventType domain.EventType) (*domain.Template, error)
}

// CampaignRepository covers the campaign lifecycle: dedup lookup and insert
// during the schedule pass, due-polling and terminal status updates during
// the dispatch pass.
type CampaignRepository interface {
	// FindRecent returns a campaign for the same (recipient, template, type)
	// created at or after since, or domain.ErrNotFound.
	FindRecent(ctx context.Context, recipientID, templateID string, eventType domain.EventType, since time.Time) (*domain.Campaign, error)

	// Create inserts a new campaign. A redundant insert hitting the
	// per-day uniqueness constraint returns domain.ErrDuplicateCampaign
	// instead of producing a second row.
	Create(ctx context.Context, c *domain.Campaign) error

	// FindDue returns pending campaigns with scheduled_for <= now, joined
	// with their recipient, template, and tenant, oldest first.
	FindDue(ctx context.Context, now time.Time, limit int) ([]*domain.DueCampaign, error)

	// MarkSent and MarkFailed update a campaign's terminal status keyed by
	// id. Both are guarded on status=pending so a terminal campaign is
	// never overwritten.
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
}

// APIKeyRepository authenticates external registration calls.
type APIKeyRepository interface {
	GetActive(ctx context.Context, key string) (*domain.APIKey, error)
	TouchLastUsed(ctx context.Context, key string, at time.Time) error
}
