package domain

import "time"

// Template is a parameterized message body and subject for one event type.
// The body carries bracketed placeholders substituted at dispatch time.
// The scheduler assumes at most one active template per (tenant, event type);
// the repository breaks ties by most recently created.
type Template struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	Title       string    `json:"title"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	EventType   EventType `json:"event_type"`
	CreatedAt   time.Time `json:"created_at"`
}
