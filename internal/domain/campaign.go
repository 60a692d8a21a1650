package domain

import "time"

// EventType classifies what occasion a template or campaign is for.
type EventType string

const (
	EventBirthday  EventType = "birthday"
	EventHoliday   EventType = "holiday"
	EventPromotion EventType = "promotion"
)

func (e EventType) IsValid() bool {
	switch e {
	case EventBirthday, EventHoliday, EventPromotion:
		return true
	}
	return false
}

// Status tracks the lifecycle of a campaign.
//
// Transitions are one-directional: pending -> sent or pending -> failed.
// A failed campaign is terminal; it is never re-armed automatically.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

func (s Status) IsTerminal() bool {
	return s == StatusSent || s == StatusFailed
}

// Campaign is one scheduled outbound message tied to exactly one recipient
// and one template. Campaigns are created only by the schedule pass and
// terminated only by the dispatch pass.
type Campaign struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenant_id"`
	RecipientID  string     `json:"recipient_id"`
	TemplateID   string     `json:"template_id"`
	Type         EventType  `json:"type"`
	Status       Status     `json:"status"`
	ScheduledFor time.Time  `json:"scheduled_for"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	Error        *string    `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// DueCampaign is a campaign joined with everything the dispatch pass needs
// to render and send it, so one query resolves the whole unit of work.
type DueCampaign struct {
	Campaign  Campaign
	Recipient Recipient
	Template  Template
	Tenant    Tenant
}
