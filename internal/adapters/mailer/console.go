package mailer

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/mail"
	"net/textproto"
	"strings"
	"sync"
	"time"

	dmail "github.com/target/realty-admin/internal/domain/mail"
	"github.com/target/realty-admin/internal/ports"
)

// Console writes each message as a MIME document to an io.Writer.
type Console struct {
	mu         sync.Mutex
	out        io.Writer
	from       mail.Address
	subjPrefix string
	now        func() time.Time
}

var _ ports.MailTransport = (*Console)(nil)

// NewConsole returns a transport that prints messages to out.
func NewConsole(out io.Writer, appName string, from mail.Address) *Console {
	return &Console{out: out, from: from, subjPrefix: subjectPrefix(appName), now: time.Now}
}

func (c *Console) Send(ctx context.Context, msg dmail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body := new(strings.Builder)
	fmt.Fprintf(body, "From: %s\r\n", c.from.String())
	fmt.Fprintf(body, "To: %s\r\n", msg.To.String())
	fmt.Fprintf(body, "Subject: %s\r\n", c.subjPrefix+msg.Subject)
	fmt.Fprintf(body, "Date: %s\r\n", c.now().Format(time.RFC1123Z))
	fmt.Fprint(body, "MIME-Version: 1.0\r\n")

	w := multipart.NewWriter(body)
	fmt.Fprintf(body, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", w.Boundary())

	if err := writePart(w, "text/plain; charset=utf-8", msg.TextBody); err != nil {
		return err
	}
	if msg.HTMLBody != "" {
		if err := writePart(w, "text/html; charset=utf-8", msg.HTMLBody); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close mime writer: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := io.WriteString(c.out, body.String()+"\r\n"); err != nil {
		return fmt.Errorf("write console mail: %w", err)
	}
	return nil
}

func writePart(w *multipart.Writer, contentType, content string) error {
	part, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {contentType}})
	if err != nil {
		return fmt.Errorf("create %s part: %w", contentType, err)
	}
	_, err = fmt.Fprintf(part, "%s\r\n", content)
	return err
}
