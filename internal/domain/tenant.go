package domain

import "time"

// DefaultReplyTo is used when a tenant has no reply-to address configured.
const DefaultReplyTo = "noreply@kiddoconnect.com"

// Tenant is an isolated business account owning its recipients, templates,
// and campaigns. Identity is immutable; profile fields are not.
type Tenant struct {
	ID            string    `json:"id"`
	BusinessName  string    `json:"business_name"`
	EmailFromName *string   `json:"email_from_name,omitempty"`
	EmailReplyTo  *string   `json:"email_reply_to,omitempty"`
	LogoURL       *string   `json:"logo_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromName returns the display name for outbound mail, falling back to the
// business name when no explicit from-name is set.
func (t *Tenant) FromName() string {
	if t.EmailFromName != nil && *t.EmailFromName != "" {
		return *t.EmailFromName
	}
	return t.BusinessName
}

// ReplyTo returns the outbound from-address, falling back to DefaultReplyTo.
func (t *Tenant) ReplyTo() string {
	if t.EmailReplyTo != nil && *t.EmailReplyTo != "" {
		return *t.EmailReplyTo
	}
	return DefaultReplyTo
}

// APIKey grants external systems the ability to register recipients for
// one tenant.
type APIKey struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenant_id"`
	Key        string     `json:"key"`
	Active     bool       `json:"active"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
