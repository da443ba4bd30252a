// Package mail holds the email outbox model.
package mail

import (
	"net/mail"
	"time"
)

// Status is the delivery state of an outbox message.
type Status string

const (
	StatusPending Status = "pending"
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Message is a rendered email waiting in (or recorded by) the outbox.
type Message struct {
	ID string
	// DedupeKey prevents the same notification from being queued twice,
	// e.g. "appointment_accepted:schedules:42".
	DedupeKey string
	Kind      string
	To        mail.Address
	Subject   string
	TextBody  string
	HTMLBody  string
	Status    Status
	Attempts  int
	LastError string
	CreatedAt time.Time
	SentAt    *time.Time
}

// HasContent reports whether the message has a body worth sending.
func (m Message) HasContent() bool {
	return m.TextBody != "" || m.HTMLBody != ""
}

// DedupeKey builds the outbox dedupe key for a notification about a record.
func DedupeKey(kind, resource, id string) string {
	return kind + ":" + resource + ":" + id
}

// ListFilter narrows outbox listings.
type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}
