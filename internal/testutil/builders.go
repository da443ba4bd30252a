package testutil

import (
	"fmt"
	"net/mail"

	dmail "github.com/target/realty-admin/internal/domain/mail"
	"github.com/target/realty-admin/internal/domain/realty"
)

// MessageBuilder builds outbox messages with sensible defaults.
type MessageBuilder struct {
	msg dmail.Message
}

// NewMessage starts a pending appointment confirmation for schedule id.
func NewMessage(id string) *MessageBuilder {
	return &MessageBuilder{msg: dmail.Message{
		DedupeKey: dmail.DedupeKey("appointment_accepted", string(realty.Schedules), id),
		Kind:      "appointment_accepted",
		To:        mail.Address{Name: "Maria Santos", Address: fmt.Sprintf("client-%s@example.ph", id)},
		Subject:   "Your property viewing is confirmed",
		TextBody:  "See you soon.",
		HTMLBody:  "<p>See you soon.</p>",
		Status:    dmail.StatusPending,
	}}
}

func (b *MessageBuilder) WithKind(kind string) *MessageBuilder {
	b.msg.Kind = kind
	return b
}

func (b *MessageBuilder) WithDedupeKey(key string) *MessageBuilder {
	b.msg.DedupeKey = key
	return b
}

func (b *MessageBuilder) WithTo(addr string) *MessageBuilder {
	b.msg.To = mail.Address{Address: addr}
	return b
}

func (b *MessageBuilder) WithStatus(s dmail.Status) *MessageBuilder {
	b.msg.Status = s
	return b
}

func (b *MessageBuilder) WithAttempts(n int) *MessageBuilder {
	b.msg.Attempts = n
	return b
}

func (b *MessageBuilder) Build() dmail.Message {
	return b.msg
}

// NewSchedule returns a schedule record as the API would send it.
func NewSchedule(id, status string) realty.Record {
	return realty.Record{
		"_id":      id,
		"name":     "Maria Santos",
		"email":    "maria@example.ph",
		"phone":    "+63 917 555 0101",
		"date":     "2026-03-07",
		"time":     "10:00",
		"property": "Azure Urban Residences",
		"status":   status,
	}
}
