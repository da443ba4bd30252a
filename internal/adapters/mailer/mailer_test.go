package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dmail "github.com/target/realty-admin/internal/domain/mail"
)

func testMessage() dmail.Message {
	return dmail.Message{
		Kind:     "appointment_accepted",
		To:       mail.Address{Name: "Maria Santos", Address: "maria@example.ph"},
		Subject:  "Your viewing is confirmed",
		TextBody: "See you on Saturday.",
		HTMLBody: "<p>See you on Saturday.</p>",
	}
}

func TestNewSendGrid_RequiresKeyAndFrom(t *testing.T) {
	_, err := NewSendGrid(SendGridConfig{From: mail.Address{Address: "noreply@example.ph"}})
	require.Error(t, err)

	_, err = NewSendGrid(SendGridConfig{APIKey: "SG.key"})
	require.Error(t, err)
}

func TestSendGrid_Send(t *testing.T) {
	var got struct {
		From struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"from"`
		Personalizations []struct {
			To []struct {
				Email string `json:"email"`
			} `json:"to"`
			Subject string `json:"subject"`
		} `json:"personalizations"`
		Content []struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"content"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer SG.key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sg, err := NewSendGrid(SendGridConfig{
		APIKey:  "SG.key",
		AppName: "Realty",
		From:    mail.Address{Address: "noreply@example.ph"},
		Host:    srv.URL,
	})
	require.NoError(t, err)
	require.NoError(t, sg.Send(context.Background(), testMessage()))

	assert.Equal(t, "Realty", got.From.Name)
	assert.Equal(t, "noreply@example.ph", got.From.Email)
	require.Len(t, got.Personalizations, 1)
	assert.Equal(t, "[Realty] Your viewing is confirmed", got.Personalizations[0].Subject)
	assert.Equal(t, "maria@example.ph", got.Personalizations[0].To[0].Email)
	require.Len(t, got.Content, 2)
	assert.Equal(t, "text/plain", got.Content[0].Type)
	assert.Equal(t, "text/html", got.Content[1].Type)
}

func TestSendGrid_SendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	sg, err := NewSendGrid(SendGridConfig{APIKey: "SG.bad", From: mail.Address{Address: "noreply@example.ph"}, Host: srv.URL})
	require.NoError(t, err)

	err = sg.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestConsole_Send(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "Realty", mail.Address{Name: "Realty", Address: "noreply@example.ph"})
	c.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }

	require.NoError(t, c.Send(context.Background(), testMessage()))

	out := buf.String()
	assert.Contains(t, out, "Subject: [Realty] Your viewing is confirmed\r\n")
	assert.Contains(t, out, `To: "Maria Santos" <maria@example.ph>`)
	assert.Contains(t, out, "Date: Sun, 01 Mar 2026 09:00:00 +0000")
	assert.Contains(t, out, "multipart/alternative; boundary=")
	assert.Contains(t, out, "See you on Saturday.")
	assert.Contains(t, out, "<p>See you on Saturday.</p>")
}

func TestConsole_CanceledContext(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, "", mail.Address{Address: "noreply@example.ph"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, c.Send(ctx, testMessage()), context.Canceled)
	assert.Zero(t, buf.Len())
}
