package domain

import (
	"context"

	"github.com/google/uuid"
)

// Attachment is a named binary part of a message.
type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// Message is an HTML email with optional attachments.
type Message struct {
	To          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Filenames lists attachment names in order.
func (m Message) Filenames() []string {
	out := make([]string, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		out = append(out, a.Filename)
	}
	return out
}

// Sender is a pluggable transport. orgID selects per-organization settings;
// use uuid.Nil for global defaults.
type Sender interface {
	Send(ctx context.Context, orgID uuid.UUID, msg Message) error
}

// ConfigChecker reports whether a transport has what it needs to deliver for an org.
type ConfigChecker interface {
	Configured(ctx context.Context, orgID uuid.UUID) bool
}

// Mailer is a Sender that can also report whether it is configured.
type Mailer interface {
	Sender
	ConfigChecker
}
