package domain

import "time"

// Recipient is a child record with a recurring birthday eligible for
// reminder campaigns. Recipients are never hard-deleted in the reminder
// path; DeletedAt marks the soft lifecycle end.
type Recipient struct {
	ID         string     `json:"id"`
	TenantID   string     `json:"tenant_id"`
	Name       string     `json:"name"`
	Birthdate  time.Time  `json:"birthdate"`
	ParentName string     `json:"parent_name"`
	Email      string     `json:"email"`
	Phone      *string    `json:"phone,omitempty"`
	Tags       []string   `json:"tags"`
	ConsentAt  *time.Time `json:"consent_at,omitempty"`
	ConsentIP  *string    `json:"consent_ip,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// RegisterRecipientRequest is the inbound payload for the external
// API-key–authenticated registration endpoint.
type RegisterRecipientRequest struct {
	APIKey     string `json:"api_key"`
	ParentName string `json:"parent_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	ChildName  string `json:"child_name"`
	Birthdate  string `json:"birthdate"` // YYYY-MM-DD
	Source     string `json:"source,omitempty"`
}

func (r *RegisterRecipientRequest) Validate() error {
	if r.APIKey == "" {
		return ErrAPIKeyRequired
	}
	if r.ChildName == "" {
		return ErrNameRequired
	}
	if r.Email == "" {
		return ErrEmailRequired
	}
	if _, err := time.Parse("2006-01-02", r.Birthdate); err != nil {
		return ErrInvalidBirthdate
	}
	return nil
}
