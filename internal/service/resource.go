package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/realty-admin/internal/domain/realty"
	apperrors "github.com/target/realty-admin/internal/errors"
	"github.com/target/realty-admin/internal/ports"
	"github.com/target/realty-admin/internal/tableview"
)

// ListRequest is what the list page asks for.
type ListRequest struct {
	Search string
	Page   int
	Size   int
	// PrevSize is the page size the previous render used. A different Size
	// restarts at page 1.
	PrevSize int
}

// ListPage is one page of records plus its window.
type ListPage struct {
	Records []realty.Record
	Window  tableview.Window
	// Filtered is the number of records matching the search.
	Filtered int
}

// DecisionResult reports what happened after a decision.
type DecisionResult struct {
	Record realty.Record
	// Notified is false when no email was queued; NotifyErr says why.
	Notified  bool
	NotifyErr error
}

// ResourceServiceOptions groups dependencies for ResourceService.
type ResourceServiceOptions struct {
	API      ports.RealtyAPI      // Required
	Notifier *NotificationService // Optional: decisions send no email without it
	Logger   *slog.Logger         // Optional
}

// ResourceService manages records through the backend API.
type ResourceService struct {
	api      ports.RealtyAPI
	notifier *NotificationService
	logger   *slog.Logger
}

// NewResourceService constructs a ResourceService.
func NewResourceService(opts ResourceServiceOptions) *ResourceService {
	if opts.API == nil {
		panic("ResourceService requires a RealtyAPI")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ResourceService{
		api:      opts.API,
		notifier: opts.Notifier,
		logger:   logger.With("component", "resource_service"),
	}
}

// List returns the requested page of res.
//
// When the API pages server-side its total is the source of truth and a page
// past the end is re-fetched clamped. Otherwise the API returned the whole
// collection and the search is applied here before slicing.
func (s *ResourceService) List(ctx context.Context, creds ports.Credentials, res realty.Resource, req ListRequest) (ListPage, error) {
	size := max(req.Size, 1)
	page := max(tableview.PageAfterResize(req.PrevSize, size, req.Page), 1)

	out, err := s.api.List(ctx, creds, res.APIPath, ports.ListQuery{Search: req.Search, Page: page, Limit: size})
	if err != nil {
		return ListPage{}, err
	}

	if out.ServerPaged {
		w := tableview.NewWindow(page, size, out.Total)
		if w.CurrentPage != page {
			out, err = s.api.List(ctx, creds, res.APIPath, ports.ListQuery{Search: req.Search, Page: w.CurrentPage, Limit: size})
			if err != nil {
				return ListPage{}, err
			}
			w = tableview.NewWindow(w.CurrentPage, size, out.Total)
		}
		return ListPage{Records: out.Records, Window: w, Filtered: out.Total}, nil
	}

	filtered := make([]realty.Record, 0, len(out.Records))
	for _, rec := range out.Records {
		if rec.Matches(req.Search, res.SearchFields) {
			filtered = append(filtered, rec)
		}
	}
	w := tableview.NewWindow(page, size, len(filtered))
	return ListPage{Records: tableview.Paginate(filtered, w), Window: w, Filtered: len(filtered)}, nil
}

// Get returns one record.
func (s *ResourceService) Get(ctx context.Context, creds ports.Credentials, res realty.Resource, id string) (realty.Record, error) {
	return s.api.Get(ctx, creds, res.APIPath, id)
}

// Create creates a record.
func (s *ResourceService) Create(ctx context.Context, creds ports.Credentials, res realty.Resource, p ports.Payload) (realty.Record, error) {
	if res.ReadOnly {
		return nil, apperrors.Validationf("%s cannot be created from the admin.", res.Title)
	}
	rec, err := s.api.Create(ctx, creds, res.APIPath, p)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "record created", "resource", res.Key, "id", rec.ID())
	return rec, nil
}

// Update replaces a record.
func (s *ResourceService) Update(ctx context.Context, creds ports.Credentials, res realty.Resource, id string, p ports.Payload) (realty.Record, error) {
	if res.ReadOnly {
		return nil, apperrors.Validationf("%s cannot be edited from the admin.", res.Title)
	}
	rec, err := s.api.Update(ctx, creds, res.APIPath, id, p)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "record updated", "resource", res.Key, "id", id)
	return rec, nil
}

// Delete removes a record.
func (s *ResourceService) Delete(ctx context.Context, creds ports.Credentials, res realty.Resource, id string) error {
	if err := s.api.Delete(ctx, creds, res.APIPath, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "record deleted", "resource", res.Key, "id", id)
	return nil
}

// Decide applies decision action to a record and queues its email. A failed
// email does not undo the status change; the result carries the reason.
func (s *ResourceService) Decide(ctx context.Context, creds ports.Credentials, res realty.Resource, id, action string) (DecisionResult, error) {
	d, ok := res.Decision(action)
	if !ok {
		return DecisionResult{}, apperrors.NotFoundf("Unknown action %q for %s.", action, res.Title)
	}

	rec, err := s.api.SetStatus(ctx, creds, res.APIPath, id, d.Status)
	if err != nil {
		return DecisionResult{}, err
	}
	// Some APIs answer a PATCH with only the changed fields.
	if rec.String("email") == "" {
		full, getErr := s.api.Get(ctx, creds, res.APIPath, id)
		if getErr != nil {
			return DecisionResult{Record: rec, NotifyErr: fmt.Errorf("reload record: %w", getErr)}, nil
		}
		rec = full
	}
	rec = withID(rec, id)
	s.logger.InfoContext(ctx, "decision applied", "resource", res.Key, "id", id, "status", d.Status)

	result := DecisionResult{Record: rec}
	if s.notifier == nil || d.Template == "" {
		return result, nil
	}
	if _, err := s.notifier.NotifyDecision(ctx, res, d, rec); err != nil {
		if !errors.Is(err, ErrAlreadyQueued) {
			s.logger.WarnContext(ctx, "decision email not queued", "resource", res.Key, "id", id, "error", err)
		}
		result.NotifyErr = err
		return result, nil
	}
	result.Notified = true
	return result, nil
}

// Reply sends a free-text email to the person behind a record.
func (s *ResourceService) Reply(ctx context.Context, creds ports.Credentials, res realty.Resource, id, message string) error {
	if s.notifier == nil {
		return apperrors.Internal("Email is not configured.")
	}
	rec, err := s.api.Get(ctx, creds, res.APIPath, id)
	if err != nil {
		return err
	}
	_, err = s.notifier.Reply(ctx, res, withID(rec, id), message)
	return err
}

// Profile returns the signed-in user's profile.
func (s *ResourceService) Profile(ctx context.Context, creds ports.Credentials) (realty.Record, error) {
	return s.api.Me(ctx, creds)
}

func withID(rec realty.Record, id string) realty.Record {
	if rec == nil {
		rec = realty.Record{}
	}
	if rec.ID() == "" {
		rec["id"] = id
	}
	return rec
}
