// Package transport delivers rendered messages to the outbound mail
// provider. Delivery is at-most-once from this layer's point of view; the
// dispatcher records the durable outcome per campaign.
package transport

import "context"

// Message is one fully rendered outbound email.
type Message struct {
	To          string
	FromName    string
	FromAddress string
	Subject     string
	HTMLBody    string
}

// Mailer abstracts the outbound mail provider.
// Mocking this interface in tests gives full control over provider
// behaviour without making real HTTP calls.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
