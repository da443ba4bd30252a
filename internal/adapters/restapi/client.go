// Package restapi is the HTTP client for the backend REST API that owns all
// realty records. Every call takes explicit ports.Credentials.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/target/realty-admin/internal/domain/realty"
	apperrors "github.com/target/realty-admin/internal/errors"
	"github.com/target/realty-admin/internal/observability/metrics"
	"github.com/target/realty-admin/internal/ports"
)

const (
	defaultTimeout   = 15 * time.Second
	maxErrorBody     = 4 << 10
	defaultUserAgent = "realty-admin"
)

// Config configures the API client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
	Metrics   metrics.Sink
	Logger    *slog.Logger
}

// Client talks to the backend REST API.
type Client struct {
	base      *url.URL
	client    *http.Client
	userAgent string
	sink      metrics.Sink
	logger    *slog.Logger
}

var _ ports.RealtyAPI = (*Client)(nil)

// NewClient validates cfg and builds a client.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("api base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", raw)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	hc := cfg.Client
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Client{base: base, client: hc, userAgent: ua, sink: cfg.Metrics, logger: logger}, nil
}

// List fetches a collection. The API may answer with a bare array (the whole
// collection) or an envelope carrying the requested page and a total.
func (c *Client) List(ctx context.Context, creds ports.Credentials, path string, q ports.ListQuery) (ports.ListResult, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	body, err := c.call(ctx, creds, request{method: http.MethodGet, path: path, query: params})
	if err != nil {
		return ports.ListResult{}, err
	}
	res, err := decodeList(body)
	if err != nil {
		return ports.ListResult{}, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "Unexpected response listing %s.", path)
	}
	return res, nil
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, creds ports.Credentials, path, id string) (realty.Record, error) {
	rp, err := join(path, id)
	if err != nil {
		return nil, err
	}
	body, err := c.call(ctx, creds, request{method: http.MethodGet, path: rp})
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// Create posts a multipart payload to the collection.
func (c *Client) Create(ctx context.Context, creds ports.Credentials, path string, p ports.Payload) (realty.Record, error) {
	body, err := c.call(ctx, creds, multipartRequest(http.MethodPost, path, p))
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// Update replaces a record with a multipart payload.
func (c *Client) Update(ctx context.Context, creds ports.Credentials, path, id string, p ports.Payload) (realty.Record, error) {
	rp, err := join(path, id)
	if err != nil {
		return nil, err
	}
	body, err := c.call(ctx, creds, multipartRequest(http.MethodPut, rp, p))
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// Delete removes a record.
func (c *Client) Delete(ctx context.Context, creds ports.Credentials, path, id string) error {
	rp, err := join(path, id)
	if err != nil {
		return err
	}
	_, err = c.call(ctx, creds, request{method: http.MethodDelete, path: rp})
	return err
}

// SetStatus patches the status field of a record.
func (c *Client) SetStatus(ctx context.Context, creds ports.Credentials, path, id, status string) (realty.Record, error) {
	rp, err := join(path, id)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return nil, fmt.Errorf("encode status: %w", err)
	}
	body, err := c.call(ctx, creds, request{
		method:      http.MethodPatch,
		path:        rp,
		body:        bytes.NewReader(payload),
		contentType: "application/json",
	})
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

// Count returns the size of a collection, using the envelope total when the
// API paginates and the array length otherwise.
func (c *Client) Count(ctx context.Context, creds ports.Credentials, path string) (int, error) {
	res, err := c.List(ctx, creds, path, ports.ListQuery{Page: 1, Limit: 1})
	if err != nil {
		return 0, err
	}
	if res.ServerPaged {
		return res.Total, nil
	}
	return len(res.Records), nil
}

// Me returns the profile behind creds.
func (c *Client) Me(ctx context.Context, creds ports.Credentials) (realty.Record, error) {
	body, err := c.call(ctx, creds, request{method: http.MethodGet, path: "api/profiles/me"})
	if err != nil {
		return nil, err
	}
	return decodeRecord(body)
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func (c *Client) call(ctx context.Context, creds ports.Credentials, in request) ([]byte, error) {
	start := time.Now()
	status, body, err := c.do(ctx, creds, in)
	metrics.EmitUpstreamCall(c.sink, metrics.UpstreamCall{
		Resource: resourceOf(in.path),
		Method:   in.method,
		Status:   status,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		c.logger.DebugContext(ctx, "api call failed",
			"method", in.method, "path", in.path, "status", status, "error", err)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, creds ports.Credentials, in request) (int, []byte, error) {
	// in.path is already escaped; parsing keeps an escaped "/" in an id intact.
	ref, err := url.Parse(strings.TrimPrefix(in.path, "/"))
	if err != nil {
		if closer, ok := in.body.(io.Closer); ok {
			_ = closer.Close()
		}
		return 0, nil, fmt.Errorf("api path %q: %w", in.path, err)
	}
	u := c.base.ResolveReference(ref)
	if len(in.query) > 0 {
		u.RawQuery = in.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, in.method, u.String(), in.body)
	if err != nil {
		if closer, ok := in.body.(io.Closer); ok {
			_ = closer.Close()
		}
		return 0, nil, fmt.Errorf("create api request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in.contentType != "" {
		req.Header.Set("Content-Type", in.contentType)
	}
	if creds.Token != "" {
		req.Header.Set("Authorization", "Bearer "+creds.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, apperrors.FromTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		appErr := apperrors.FromStatus(resp.StatusCode, errorMessage(raw))
		appErr.Cause = fmt.Errorf("%s %s: status %d", in.method, in.path, resp.StatusCode)
		return resp.StatusCode, nil, appErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, apperrors.FromTransport(fmt.Errorf("read api response: %w", err))
	}
	return resp.StatusCode, body, nil
}

// errorMessage extracts {"message": ...} or {"error": ...} from an error body.
func errorMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

func join(path, id string) (string, error) {
	if id == "" || id == "." || id == ".." {
		return "", apperrors.NotFound("Record not found.")
	}
	return strings.TrimSuffix(path, "/") + "/" + url.PathEscape(id), nil
}

// resourceOf returns the collection segment used as the metrics tag, e.g.
// "api/properties/42" → "properties".
func resourceOf(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 1 && parts[0] == "api" {
		return parts[1]
	}
	return parts[0]
}
