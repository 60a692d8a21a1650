// Package scheduler implements the campaign-creation pass: scanning every
// tenant's recipients for upcoming birthdays and creating at most one
// pending campaign per recipient per reminder window.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kiddoconnect/campaign-service/internal/domain"
	"github.com/kiddoconnect/campaign-service/internal/repository"
	"github.com/kiddoconnect/campaign-service/internal/schedule"
)

// Summary aggregates the outcome of one schedule pass. Per-tenant and
// per-candidate failures are collected here instead of aborting the run.
type Summary struct {
	TenantsScanned int      `json:"tenants_scanned"`
	TenantsSkipped int      `json:"tenants_skipped"`
	Candidates     int      `json:"candidates"`
	Created        int      `json:"created"`
	Duplicates     int      `json:"duplicates"`
	Errors         []string `json:"errors,omitempty"`
}

// MetricHooks carries the metric callbacks injected by main.
// Using a struct keeps the orchestrator constructor signature clean.
type MetricHooks struct {
	OnCreated   func()
	OnDuplicate func()
}

// Orchestrator runs the schedule pass across all tenants. Tenants are
// scanned concurrently up to a bounded limit; candidates within a tenant
// are processed in order. All cross-run state lives in the store, so
// repeating a pass on the same day is idempotent by construction.
type Orchestrator struct {
	tenants   repository.TenantRepository
	campaigns repository.CampaignRepository
	scanner   *Scanner
	lookback  time.Duration
	limit     int
	logger    *zap.Logger
	hooks     MetricHooks

	// now is swappable in tests; defaults to time.Now.
	now func() time.Time
}

func NewOrchestrator(
	tenants repository.TenantRepository,
	campaigns repository.CampaignRepository,
	scanner *Scanner,
	lookback time.Duration,
	scanConcurrency int,
	logger *zap.Logger,
	hooks MetricHooks,
) *Orchestrator {
	if hooks.OnCreated == nil {
		hooks.OnCreated = func() {}
	}
	if hooks.OnDuplicate == nil {
		hooks.OnDuplicate = func() {}
	}
	if scanConcurrency < 1 {
		scanConcurrency = 1
	}
	return &Orchestrator{
		tenants:   tenants,
		campaigns: campaigns,
		scanner:   scanner,
		lookback:  lookback,
		limit:     scanConcurrency,
		logger:    logger,
		hooks:     hooks,
		now:       time.Now,
	}
}

// WithClock overrides the orchestrator's clock. Test hook.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Run executes one schedule pass. "Today" is captured once so every
// recipient in the run sees the same calendar day. Only the initial tenant
// listing can fail the run; everything narrower is contained in the
// summary.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	today := schedule.Midnight(o.now())

	tenants, err := o.tenants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	var (
		mu      sync.Mutex
		summary Summary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.limit)

	for _, tenant := range tenants {
		g.Go(func() error {
			ts := o.scanTenant(gctx, tenant, today)
			mu.Lock()
			summary.TenantsScanned += ts.TenantsScanned
			summary.TenantsSkipped += ts.TenantsSkipped
			summary.Candidates += ts.Candidates
			summary.Created += ts.Created
			summary.Duplicates += ts.Duplicates
			summary.Errors = append(summary.Errors, ts.Errors...)
			mu.Unlock()
			return nil // tenant failures never abort the batch
		})
	}
	_ = g.Wait()

	o.logger.Info("schedule pass complete",
		zap.Time("today", today),
		zap.Int("tenants_scanned", summary.TenantsScanned),
		zap.Int("candidates", summary.Candidates),
		zap.Int("created", summary.Created),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("errors", len(summary.Errors)),
	)
	return &summary, nil
}

// scanTenant processes one tenant and returns its slice of the summary.
func (o *Orchestrator) scanTenant(ctx context.Context, tenant *domain.Tenant, today time.Time) Summary {
	var s Summary
	log := o.logger.With(zap.String("tenant_id", tenant.ID))

	err := o.scanner.Scan(ctx, tenant, today, func(c Candidate) {
		s.Candidates++
		created, err := o.ensureCampaign(ctx, c, today)
		switch {
		case err != nil:
			// Candidate skipped; siblings keep going.
			log.Warn("campaign creation failed",
				zap.String("recipient_id", c.Recipient.ID),
				zap.Int("offset_days", c.Offset),
				zap.Error(err),
			)
			s.Errors = append(s.Errors, fmt.Sprintf("tenant %s recipient %s: %v", tenant.ID, c.Recipient.ID, err))
		case created:
			s.Created++
			o.hooks.OnCreated()
		default:
			s.Duplicates++
			o.hooks.OnDuplicate()
		}
	})

	switch {
	case errors.Is(err, ErrNoTemplate):
		log.Debug("no active birthday template, tenant skipped")
		s.TenantsSkipped++
	case err != nil:
		log.Warn("tenant scan failed", zap.Error(err))
		s.Errors = append(s.Errors, fmt.Sprintf("tenant %s: %v", tenant.ID, err))
	default:
		s.TenantsScanned++
	}
	return s
}

// ensureCampaign creates a pending campaign for the candidate unless one
// already exists inside the lookback window. Returns true when a new
// campaign was created.
//
// The existence check and the insert are not atomic; the store's unique
// index on (recipient, template, created-day) closes the race, and a
// unique-violation insert is absorbed as a duplicate.
func (o *Orchestrator) ensureCampaign(ctx context.Context, c Candidate, today time.Time) (bool, error) {
	since := today.Add(-o.lookback)

	_, err := o.campaigns.FindRecent(ctx, c.Recipient.ID, c.Template.ID, domain.EventBirthday, since)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("dedup lookup: %w", err)
	}

	campaign := &domain.Campaign{
		ID:          uuid.New().String(),
		TenantID:    c.Tenant.ID,
		RecipientID: c.Recipient.ID,
		TemplateID:  c.Template.ID,
		Type:        domain.EventBirthday,
		Status:      domain.StatusPending,
		// Never "now": the one-day buffer gives operators room to review
		// or cancel before dispatch picks it up.
		ScheduledFor: today.AddDate(0, 0, 1),
		CreatedAt:    o.now().UTC(),
	}

	err = o.campaigns.Create(ctx, campaign)
	if errors.Is(err, domain.ErrDuplicateCampaign) {
		return false, nil // lost the race to a concurrent run; that is fine
	}
	if err != nil {
		return false, fmt.Errorf("create campaign: %w", err)
	}
	return true, nil
}
