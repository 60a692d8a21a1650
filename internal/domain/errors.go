package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateCampaign = errors.New("campaign already exists for this recipient and window")
	ErrInvalidEventType  = errors.New("invalid event type: must be birthday, holiday, or promotion")
	ErrInvalidAPIKey     = errors.New("invalid or inactive API key")
	ErrAPIKeyRequired    = errors.New("api_key is required")
	ErrNameRequired      = errors.New("child_name must not be empty")
	ErrEmailRequired     = errors.New("email must not be empty")
	ErrInvalidBirthdate  = errors.New("birthdate must be a YYYY-MM-DD date")
)
