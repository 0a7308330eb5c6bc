// Package notify defines outgoing mail notifications and their templates.
package notify

import (
	"context"
	"fmt"
	"strings"
)

// Message represents a single mail notification
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Validate checks message fields
func (m *Message) Validate() error {
	if m.To == "" {
		return fmt.Errorf("notification recipient was empty")
	}
	if strings.HasPrefix(m.To, "-") || strings.ContainsAny(m.To, "\r\n") {
		return fmt.Errorf("invalid notification recipient: %q", m.To)
	}
	if m.Subject == "" {
		return fmt.Errorf("notification subject was empty")
	}
	return nil
}

// Sender represents a mail transport
type Sender interface {
	Send(ctx context.Context, message *Message) error
}

// Nop discards every message
type Nop struct{}

// Send discards message
func (Nop) Send(ctx context.Context, message *Message) error {
	return nil
}
