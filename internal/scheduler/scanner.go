package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kiddoconnect/campaign-service/internal/domain"
	"github.com/kiddoconnect/campaign-service/internal/repository"
	"github.com/kiddoconnect/campaign-service/internal/schedule"
)

// Candidate is one (tenant, recipient, template, offset) combination whose
// next birthday occurrence falls exactly on one of the configured lead-time
// offsets as of the run's "today".
type Candidate struct {
	Tenant    *domain.Tenant
	Recipient *domain.Recipient
	Template  *domain.Template
	Offset    int
}

// ErrNoTemplate signals that a tenant has no active template for the event
// type and its recipients cannot be scanned.
var ErrNoTemplate = errors.New("tenant has no active template for event type")

// Scanner walks one tenant's active recipients and streams reminder-window
// candidates through a callback. The sequence is lazy and non-restartable;
// the caller supplies "today" once per run so every recipient in the run is
// evaluated against the same calendar day.
type Scanner struct {
	recipients repository.RecipientRepository
	templates  repository.TemplateRepository
	offsets    []int
}

func NewScanner(
	recipients repository.RecipientRepository,
	templates repository.TemplateRepository,
	offsets []int,
) *Scanner {
	if len(offsets) == 0 {
		offsets = schedule.DefaultOffsets
	}
	return &Scanner{recipients: recipients, templates: templates, offsets: offsets}
}

// Scan invokes fn for every candidate belonging to tenant. Returns
// ErrNoTemplate when the tenant has no active template; other errors are
// store read failures. fn's own error handling never aborts the scan: the
// callback has no error return, matching the contract that one candidate's
// failure must not starve its siblings.
func (s *Scanner) Scan(ctx context.Context, tenant *domain.Tenant, today time.Time, fn func(Candidate)) error {
	tpl, err := s.templates.GetActiveByEventType(ctx, tenant.ID, domain.EventBirthday)
	if errors.Is(err, domain.ErrNotFound) {
		return ErrNoTemplate
	}
	if err != nil {
		return fmt.Errorf("resolve template: %w", err)
	}

	recipients, err := s.recipients.ListActiveByTenant(ctx, tenant.ID)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}

	for _, rec := range recipients {
		offset, ok := schedule.MatchOffset(rec.Birthdate, today, s.offsets)
		if !ok {
			continue
		}
		fn(Candidate{
			Tenant:    tenant,
			Recipient: rec,
			Template:  tpl,
			Offset:    offset,
		})
	}
	return nil
}
