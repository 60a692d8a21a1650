package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// DefaultSendGridURL is the production mail-send endpoint.
const DefaultSendGridURL = "https://api.sendgrid.com/v3/mail/send"

// sendGridRequest is the JSON body for the v3 mail-send API.
type sendGridRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// SendGridMailer delivers via the SendGrid v3 mail-send API.
//
// Calls go through a circuit breaker: once the provider starts failing
// consistently the breaker opens and sends fail fast for a cool-down
// period instead of burning the whole dispatch batch on timeouts.
type SendGridMailer struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[struct{}]
}

// NewSendGridMailer constructs a mailer. baseURL is injected so tests can
// point at a local mock; pass DefaultSendGridURL in production.
func NewSendGridMailer(apiKey, baseURL string, timeout time.Duration) *SendGridMailer {
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "sendgrid",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &SendGridMailer{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: breaker,
	}
}

// Send posts the message to the mail-send endpoint and expects a
// 202 Accepted response.
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	_, err := m.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, m.send(ctx, msg)
	})
	return err
}

func (m *SendGridMailer) send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(sendGridRequest{
		Personalizations: []personalization{
			{To: []emailAddress{{Email: msg.To}}},
		},
		From:    emailAddress{Email: msg.FromAddress, Name: msg.FromName},
		Subject: msg.Subject,
		Content: []content{{Type: "text/html", Value: msg.HTMLBody}},
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail provider status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}
	return nil
}

// compile-time check that SendGridMailer implements Mailer
var _ Mailer = (*SendGridMailer)(nil)
