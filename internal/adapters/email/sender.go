// Package email sends transactional notifications through an external
// provider. Orchestrators depend on the Sender interface only; the Resend
// implementation is swapped for a noop when no API key is configured.
package email

import (
	"context"
	"time"
)

// SendRequest contains the data needed to send one notification email.
type SendRequest struct {
	To      []string // recipient addresses
	From    string   // sender address; empty uses the configured default
	Subject string
	HTML    string // HTML body
	ReplyTo string
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string    // provider's message ID for tracking
	SentAt    time.Time // when the send was accepted
}

// Sender is the interface for sending emails via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
