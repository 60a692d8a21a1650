package dispatch_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kiddoconnect/campaign-service/internal/dispatch"
	"github.com/kiddoconnect/campaign-service/internal/domain"
	"github.com/kiddoconnect/campaign-service/internal/ratelimit"
	"github.com/kiddoconnect/campaign-service/internal/repository"
	"github.com/kiddoconnect/campaign-service/internal/transport"
)

var now = time.Date(2025, time.March, 31, 9, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// mockMailer records sent messages and fails selected addresses.
type mockMailer struct {
	mu     sync.Mutex
	sent   []transport.Message
	failTo map[string]error
}

func (m *mockMailer) Send(_ context.Context, msg transport.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failTo[msg.To]; ok {
		return err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockMailer) messages() []transport.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]transport.Message(nil), m.sent...)
}

func newDispatcher(store *repository.MockStore, mailer transport.Mailer, workers int) *dispatch.Dispatcher {
	return dispatch.NewDispatcher(
		store.CampaignRepo(), mailer, ratelimit.New(1000),
		workers, 100, zap.NewNop(), dispatch.MetricHooks{},
	).WithClock(func() time.Time { return now })
}

func seed(store *repository.MockStore, campaignID, email string, scheduledFor time.Time) {
	tenantID := "tenant-" + campaignID
	fromName := "Front Desk"
	store.AddTenant(&domain.Tenant{
		ID: tenantID, BusinessName: "Happy Kids Gym", EmailFromName: &fromName,
	})
	store.AddRecipient(&domain.Recipient{
		ID: "rec-" + campaignID, TenantID: tenantID, Name: "Ava",
		Birthdate: date(2020, time.April, 30), ParentName: "Dana", Email: email,
	})
	store.AddTemplate(&domain.Template{
		ID: "tpl-" + campaignID, TenantID: tenantID,
		Subject:     "[child_name]'s big day at [business_name]",
		HTMLContent: "<p>Hi [parent_name], [child_name] turns [child_age_next] in [days_until] days! [missing_var]</p>",
		EventType:   domain.EventBirthday,
	})
	store.AddCampaign(&domain.Campaign{
		ID: campaignID, TenantID: tenantID,
		RecipientID: "rec-" + campaignID, TemplateID: "tpl-" + campaignID,
		Type: domain.EventBirthday, Status: domain.StatusPending,
		ScheduledFor: scheduledFor, CreatedAt: scheduledFor.AddDate(0, 0, -1),
	})
}

func TestDispatcher_SendsDueCampaign(t *testing.T) {
	store := repository.NewMockStore()
	seed(store, "c1", "dana@example.com", date(2025, time.March, 31))
	mailer := &mockMailer{}

	summary, err := newDispatcher(store, mailer, 2).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Due != 1 || summary.Sent != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	c := store.Campaign("c1")
	if c.Status != domain.StatusSent {
		t.Fatalf("expected status=sent, got %s", c.Status)
	}
	if c.SentAt == nil || !c.SentAt.Equal(now) {
		t.Fatalf("expected sent_at=%v, got %v", now, c.SentAt)
	}

	msgs := mailer.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	msg := msgs[0]
	if msg.To != "dana@example.com" {
		t.Fatalf("unexpected recipient: %s", msg.To)
	}
	if msg.FromName != "Front Desk" {
		t.Fatalf("expected tenant from-name, got %q", msg.FromName)
	}
	if msg.FromAddress != domain.DefaultReplyTo {
		t.Fatalf("expected fallback reply-to, got %q", msg.FromAddress)
	}
	if msg.Subject != "Ava's big day at Happy Kids Gym" {
		t.Fatalf("unexpected subject: %q", msg.Subject)
	}
	// April 30 is 30 days after March 31; Ava turns 5.
	if !strings.Contains(msg.HTMLBody, "Ava turns 5 in 30 days!") {
		t.Fatalf("unexpected body: %q", msg.HTMLBody)
	}
	// Unknown placeholders degrade to visible bracket text.
	if !strings.Contains(msg.HTMLBody, "[missing_var]") {
		t.Fatalf("expected unknown placeholder untouched, got %q", msg.HTMLBody)
	}
}

func TestDispatcher_NotYetDueIsLeftPending(t *testing.T) {
	store := repository.NewMockStore()
	seed(store, "c1", "dana@example.com", date(2025, time.April, 2))
	mailer := &mockMailer{}

	summary, err := newDispatcher(store, mailer, 2).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Due != 0 {
		t.Fatalf("expected nothing due, got %+v", summary)
	}
	if c := store.Campaign("c1"); c.Status != domain.StatusPending {
		t.Fatalf("expected campaign untouched, got %s", c.Status)
	}
}

// A failed send marks that campaign failed with its reason and does not
// stop the rest of the batch.
func TestDispatcher_FailureIsTerminalAndIsolated(t *testing.T) {
	store := repository.NewMockStore()
	seed(store, "c1", "bounce@example.com", date(2025, time.March, 30))
	seed(store, "c2", "dana@example.com", date(2025, time.March, 31))
	mailer := &mockMailer{failTo: map[string]error{
		"bounce@example.com": errors.New("mail provider status 550: mailbox unavailable"),
	}}

	summary, err := newDispatcher(store, mailer, 1).Run(context.Background())
	if err != nil {
		t.Fatalf("a per-campaign failure must not fail the pass: %v", err)
	}
	if summary.Sent != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Errors) != 1 || !strings.Contains(summary.Errors[0], "c1") {
		t.Fatalf("expected failure recorded against campaign c1, got %v", summary.Errors)
	}

	failed := store.Campaign("c1")
	if failed.Status != domain.StatusFailed {
		t.Fatalf("expected status=failed, got %s", failed.Status)
	}
	if failed.Error == nil || *failed.Error == "" {
		t.Fatal("expected a non-empty error description")
	}
	if sent := store.Campaign("c2"); sent.Status != domain.StatusSent {
		t.Fatalf("sibling campaign should still be sent, got %s", sent.Status)
	}
}

// Oldest scheduled_for goes first so backlog age stays bounded.
func TestDispatcher_OldestFirst(t *testing.T) {
	store := repository.NewMockStore()
	seed(store, "newer", "newer@example.com", date(2025, time.March, 31))
	seed(store, "older", "older@example.com", date(2025, time.March, 25))
	mailer := &mockMailer{}

	if _, err := newDispatcher(store, mailer, 1).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := mailer.messages()
	if len(msgs) != 2 || msgs[0].To != "older@example.com" {
		t.Fatalf("expected oldest campaign first, got %v", msgs)
	}
}

func TestDispatcher_PollFailureFailsPass(t *testing.T) {
	store := repository.NewMockStore()
	store.FindDueErr = errors.New("store unreachable")

	if _, err := newDispatcher(store, &mockMailer{}, 1).Run(context.Background()); err == nil {
		t.Fatal("expected pass to fail when polling fails")
	}
}
