package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/realty-admin/internal/bootstrap"
	"github.com/target/realty-admin/internal/data"
	dmail "github.com/target/realty-admin/internal/domain/mail"
)

type mailListOptions struct {
	Status dmail.Status
	Limit  int
	Offset int
}

func parseMailListFlags(args []string) (mailListOptions, error) {
	fs := newFlagSet("mail-list")
	var (
		opts   mailListOptions
		status string
	)
	fs.StringVar(&status, "status", "", "Only list messages in this status (pending, sending, sent, failed)")
	fs.IntVar(&opts.Limit, "limit", 20, "Maximum messages to list")
	fs.IntVar(&opts.Offset, "offset", 0, "Messages to skip")
	if err := fs.Parse(args); err != nil {
		return mailListOptions{}, err
	}

	status = strings.ToLower(strings.TrimSpace(status))
	switch dmail.Status(status) {
	case "", dmail.StatusPending, dmail.StatusSending, dmail.StatusSent, dmail.StatusFailed:
		opts.Status = dmail.Status(status)
	default:
		return mailListOptions{}, fmt.Errorf("unknown --status %q", status)
	}
	if opts.Limit < 1 || opts.Limit > 500 {
		return mailListOptions{}, fmt.Errorf("--limit must be between 1 and 500, got %d", opts.Limit)
	}
	if opts.Offset < 0 {
		return mailListOptions{}, fmt.Errorf("--offset must not be negative, got %d", opts.Offset)
	}
	return opts, nil
}

func runMailList(cmdCtx *commandContext, args []string) error {
	opts, err := parseMailListFlags(args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	repo := data.NewOutboxRepo(db)
	filter := dmail.ListFilter{Status: opts.Status, Limit: opts.Limit, Offset: opts.Offset}
	total, err := repo.Count(ctx, filter)
	if err != nil {
		return fmt.Errorf("count messages: %w", err)
	}
	msgs, err := repo.List(ctx, filter)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	return printMessages(cmdCtx.Out, msgs, total)
}

func printMessages(w io.Writer, msgs []dmail.Message, total int) error {
	if len(msgs) == 0 {
		_, err := fmt.Fprintln(w, "(no messages)")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tATTEMPTS\tTO\tSUBJECT\tCREATED\tLAST ERROR")
	for _, m := range msgs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			m.ID, m.Status, m.Attempts, m.To.Address, truncate(m.Subject, 48),
			m.CreatedAt.Local().Format(time.DateTime), truncate(m.LastError, 60))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nShowing %d of %d\n", len(msgs), total)
	return err
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

type mailRetryOptions struct {
	IDs       []string
	AllFailed bool
}

func parseMailRetryFlags(args []string) (mailRetryOptions, error) {
	fs := newFlagSet("mail-retry")
	var opts mailRetryOptions
	fs.BoolVar(&opts.AllFailed, "all-failed", false, "Retry every failed message")
	if err := fs.Parse(args); err != nil {
		return mailRetryOptions{}, err
	}
	opts.IDs = fs.Args()
	if opts.AllFailed == (len(opts.IDs) > 0) {
		return mailRetryOptions{}, errors.New("pass either message IDs or --all-failed")
	}
	return opts, nil
}

func runMailRetry(cmdCtx *commandContext, args []string) error {
	opts, err := parseMailRetryFlags(args)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)
	repo := data.NewOutboxRepo(db)

	ids := opts.IDs
	if opts.AllFailed {
		failed, lerr := repo.List(ctx, dmail.ListFilter{Status: dmail.StatusFailed, Limit: 500})
		if lerr != nil {
			return fmt.Errorf("list failed messages: %w", lerr)
		}
		for _, m := range failed {
			ids = append(ids, m.ID)
		}
	}

	var errs []error
	retried := 0
	for _, id := range ids {
		if rerr := repo.Retry(ctx, id); rerr != nil {
			errs = append(errs, fmt.Errorf("retry %s: %w", id, rerr))
			continue
		}
		retried++
	}
	fmt.Fprintf(cmdCtx.Out, "Queued %d message(s) for retry.\n", retried)
	return errors.Join(errs...)
}

type mailTestOptions struct {
	To string
}

func parseMailTestFlags(args []string) (mailTestOptions, error) {
	fs := newFlagSet("mail-test")
	var opts mailTestOptions
	fs.StringVar(&opts.To, "to", "", "Recipient address (required)")
	if err := fs.Parse(args); err != nil {
		return mailTestOptions{}, err
	}
	if _, err := mail.ParseAddress(opts.To); err != nil {
		return mailTestOptions{}, fmt.Errorf("--to: %w", err)
	}
	return opts, nil
}

// runMailTest sends straight through the transport, bypassing the outbox,
// so transport settings can be checked without a running worker.
func runMailTest(cmdCtx *commandContext, args []string) error {
	opts, err := parseMailTestFlags(args)
	if err != nil {
		return err
	}
	transport, err := bootstrap.BuildMailTransport(cmdCtx.Config.Mail, cmdCtx.Out)
	if err != nil {
		return err
	}
	to, _ := mail.ParseAddress(opts.To)

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 30*time.Second)
	defer cancel()
	err = transport.Send(ctx, dmail.Message{
		ID:       "test",
		Kind:     "test",
		To:       *to,
		Subject:  "Test email",
		TextBody: "This is a test email from " + cmdCtx.Config.UI.AppName + ".\n",
	})
	if err != nil {
		return fmt.Errorf("send test email: %w", err)
	}
	fmt.Fprintf(cmdCtx.Out, "Sent test email to %s via %s.\n", to.Address, cmdCtx.Config.Mail.Transport)
	return nil
}
