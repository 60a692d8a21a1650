// Package dispatch implements the campaign-fulfillment pass: polling due
// pending campaigns, rendering them, sending via the mail transport, and
// recording the durable per-campaign outcome.
package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kiddoconnect/campaign-service/internal/domain"
	"github.com/kiddoconnect/campaign-service/internal/ratelimit"
	"github.com/kiddoconnect/campaign-service/internal/render"
	"github.com/kiddoconnect/campaign-service/internal/repository"
	"github.com/kiddoconnect/campaign-service/internal/schedule"
	"github.com/kiddoconnect/campaign-service/internal/transport"
)

// Summary aggregates the outcome of one dispatch pass. A campaign whose
// send fails is marked failed and recorded here; it never fails the pass.
type Summary struct {
	Due    int      `json:"due"`
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// MetricHooks carries the metric callbacks injected by main.
type MetricHooks struct {
	OnSent   func(latency time.Duration)
	OnFailed func()
}

// Dispatcher drains due campaigns through a bounded worker pool. Campaigns
// are fetched oldest-first so backlog age stays bounded; each one is an
// independent unit of work with no coupling to its siblings.
type Dispatcher struct {
	campaigns repository.CampaignRepository
	mailer    transport.Mailer
	limiter   *ratelimit.SendLimiter
	workers   int
	batchSize int
	logger    *zap.Logger
	hooks     MetricHooks

	// now is swappable in tests; defaults to time.Now.
	now func() time.Time
}

func NewDispatcher(
	campaigns repository.CampaignRepository,
	mailer transport.Mailer,
	limiter *ratelimit.SendLimiter,
	workers, batchSize int,
	logger *zap.Logger,
	hooks MetricHooks,
) *Dispatcher {
	if hooks.OnSent == nil {
		hooks.OnSent = func(time.Duration) {}
	}
	if hooks.OnFailed == nil {
		hooks.OnFailed = func() {}
	}
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		campaigns: campaigns,
		mailer:    mailer,
		limiter:   limiter,
		workers:   workers,
		batchSize: batchSize,
		logger:    logger,
		hooks:     hooks,
		now:       time.Now,
	}
}

// WithClock overrides the dispatcher's clock. Test hook.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Run executes one dispatch pass: poll everything due, feed it to the
// worker pool, wait for the pool to drain. Only the initial poll can fail
// the pass.
func (d *Dispatcher) Run(ctx context.Context) (*Summary, error) {
	now := d.now().UTC()

	due, err := d.campaigns.FindDue(ctx, now, d.batchSize)
	if err != nil {
		return nil, fmt.Errorf("poll due campaigns: %w", err)
	}

	summary := &Summary{Due: len(due)}
	if len(due) == 0 {
		return summary, nil
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		feed = make(chan *domain.DueCampaign)
	)

	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for dc := range feed {
				sent, err := d.process(ctx, dc)
				mu.Lock()
				if sent {
					summary.Sent++
				} else {
					summary.Failed++
					summary.Errors = append(summary.Errors,
						fmt.Sprintf("campaign %s: %v", dc.Campaign.ID, err))
				}
				mu.Unlock()
			}
		}()
	}

	// FindDue returns oldest-first; the feed preserves that order.
	for _, dc := range due {
		feed <- dc
	}
	close(feed)
	wg.Wait()

	d.logger.Info("dispatch pass complete",
		zap.Int("due", summary.Due),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// process renders and sends one campaign and records its terminal status.
// Returns (false, reason) when the campaign was marked failed.
func (d *Dispatcher) process(ctx context.Context, dc *domain.DueCampaign) (bool, error) {
	start := time.Now()
	log := d.logger.With(
		zap.String("campaign_id", dc.Campaign.ID),
		zap.String("tenant_id", dc.Campaign.TenantID),
	)

	vars := buildVars(dc, d.now().UTC())
	msg := transport.Message{
		To:          dc.Recipient.Email,
		FromName:    dc.Tenant.FromName(),
		FromAddress: dc.Tenant.ReplyTo(),
		Subject:     render.Render(dc.Template.Subject, vars),
		HTMLBody:    render.Render(dc.Template.HTMLContent, vars),
	}

	if err := d.limiter.Wait(ctx); err != nil {
		// ctx cancelled while waiting: leave the campaign pending for the
		// next pass rather than recording a false failure.
		return false, err
	}

	if err := d.mailer.Send(ctx, msg); err != nil {
		log.Warn("mail send failed", zap.Error(err))
		if markErr := d.campaigns.MarkFailed(ctx, dc.Campaign.ID, err.Error()); markErr != nil {
			log.Error("failed to mark campaign as failed", zap.Error(markErr))
		}
		d.hooks.OnFailed()
		return false, err
	}

	sentAt := d.now().UTC()
	if err := d.campaigns.MarkSent(ctx, dc.Campaign.ID, sentAt); err != nil {
		log.Error("failed to mark campaign as sent", zap.Error(err))
		return false, err
	}

	d.hooks.OnSent(time.Since(start))
	log.Info("campaign sent",
		zap.String("recipient_id", dc.Recipient.ID),
		zap.Duration("latency", time.Since(start)),
	)
	return true, nil
}

// buildVars assembles the closed variable mapping handed to the renderer.
func buildVars(dc *domain.DueCampaign, now time.Time) render.Vars {
	logoURL := ""
	if dc.Tenant.LogoURL != nil {
		logoURL = *dc.Tenant.LogoURL
	}
	return render.Vars{
		"child_name":     dc.Recipient.Name,
		"parent_name":    dc.Recipient.ParentName,
		"business_name":  dc.Tenant.BusinessName,
		"logo_url":       logoURL,
		"child_age_next": strconv.Itoa(schedule.AgeAtNextOccurrence(dc.Recipient.Birthdate, now)),
		"days_until":     strconv.Itoa(schedule.DaysUntil(dc.Recipient.Birthdate, now)),
		"event_name":     string(dc.Campaign.Type),
	}
}
