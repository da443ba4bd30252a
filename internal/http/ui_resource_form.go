package httpx

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/target/realty-admin/internal/domain/realty"
	"github.com/target/realty-admin/internal/ports"
)

// maxImageBytes bounds a single uploaded file.
const maxImageBytes = 10 << 20

// resourceSubmission is a parsed create/edit post.
type resourceSubmission struct {
	Fields url.Values
	// Submitted holds the raw values for re-rendering the form.
	Submitted map[string]string
	files     []fileUpload
}

type fileUpload struct {
	field  string
	header *multipart.FileHeader
}

// payload opens the uploaded files. The returned func closes them.
func (s resourceSubmission) payload() (ports.Payload, func(), error) {
	p := ports.Payload{Fields: s.Fields}
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, u := range s.files {
		f, err := u.header.Open()
		if err != nil {
			closeAll()
			return ports.Payload{}, func() {}, fmt.Errorf("open upload %s: %w", u.header.Filename, err)
		}
		opened = append(opened, f)
		p.Files = append(p.Files, ports.Upload{
			Field:       u.field,
			Filename:    u.header.Filename,
			ContentType: u.header.Header.Get("Content-Type"),
			Content:     f,
		})
	}
	return p, closeAll, nil
}

// parseResourceForm reads the form fields of res, validates them with their
// rules and collects uploaded images.
func (h *UIHandlers) parseResourceForm(res realty.Resource, mode FormMode) FormParser[resourceSubmission] {
	return func(r *http.Request) (resourceSubmission, map[string]string) {
		sub := resourceSubmission{Fields: url.Values{}, Submitted: map[string]string{}}
		if err := parseSubmittedForm(r); err != nil {
			return sub, map[string]string{"_form": "The form could not be read. Uploads may be too large."}
		}

		for _, f := range res.Form {
			if f.Type == realty.FieldFile {
				continue
			}
			v := strings.TrimSpace(r.PostFormValue(f.Name))
			sub.Submitted[f.Name] = v
			// An edit sends cleared fields as empty so the API drops the old value.
			if v != "" || mode == FormModeEdit {
				sub.Fields.Set(f.Name, v)
			}
		}
		errs := h.validator().Check(res.Form, sub.Fields)

		if r.MultipartForm != nil {
			for _, f := range res.Form {
				if f.Type != realty.FieldFile {
					continue
				}
				headers := r.MultipartForm.File[f.Name]
				if !f.Multiple && len(headers) > 1 {
					headers = headers[:1]
				}
				for _, fh := range headers {
					if msg := checkImage(fh); msg != "" {
						if errs == nil {
							errs = map[string]string{}
						}
						errs[f.Name] = msg
						continue
					}
					sub.files = append(sub.files, fileUpload{field: f.Name, header: fh})
				}
			}
		}
		return sub, errs
	}
}

// parseSubmittedForm parses the body unless the CSRF check already did.
func parseSubmittedForm(r *http.Request) error {
	if r.PostForm != nil {
		return nil
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)
		return r.ParseMultipartForm(multipartMemory)
	}
	return r.ParseForm()
}

func checkImage(fh *multipart.FileHeader) string {
	if fh.Size > maxImageBytes {
		return fh.Filename + " is larger than 10 MB."
	}
	ct := fh.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "image/") {
		return fh.Filename + " is not an image."
	}
	return ""
}

// formPageMeta is the page metadata of a resource form.
func formPageMeta(res realty.Resource, mode FormMode) PageMeta {
	title := "New " + res.Singular
	if mode == FormModeEdit {
		title = "Edit " + res.Singular
	}
	return PageMeta{PageTitle: title, CurrentPage: PageResourceForm, Section: string(res.Key)}
}

func formAction(res realty.Resource, mode FormMode, id string) string {
	if mode == FormModeEdit {
		return "/" + string(res.Key) + "/" + url.PathEscape(id)
	}
	return "/" + string(res.Key)
}

// renderResourceForm shows the form in the modal for htmx requests and as a
// page otherwise.
func (h *UIHandlers) renderResourceForm(w http.ResponseWriter, r *http.Request, data map[string]any) {
	if sub, ok := data["FormData"].(resourceSubmission); ok {
		data["Values"] = sub.Submitted
	}
	if IsHTMX(r) && HXTarget(r) != "main-content" {
		h.renderFragment(w, r, tmplResourceForm, data)
		return
	}
	h.renderDashboardPage(w, r, data)
}

// ResourceNew serves the empty create form.
func (h *UIHandlers) ResourceNew(res realty.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := h.templateData(r, formPageMeta(res, FormModeCreate)).
			With("Resource", res).
			With("Mode", FormModeCreate).
			With("Action", formAction(res, FormModeCreate, "")).
			Build()
		h.renderResourceForm(w, r, data)
	}
}

// ResourceEdit serves the edit form filled from the API record.
func (h *UIHandlers) ResourceEdit(res realty.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		rec, err := h.Resources.Get(r.Context(), CredentialsFromContext(r.Context()), res, id)
		if err != nil {
			h.handleServiceError(w, r, err, "load "+res.Singular)
			return
		}
		data := h.templateData(r, formPageMeta(res, FormModeEdit)).
			With("Resource", res).
			With("Mode", FormModeEdit).
			With("ID", id).
			With("Record", rec).
			With("Action", formAction(res, FormModeEdit, id)).
			Build()
		h.renderResourceForm(w, r, data)
	}
}

// ResourceCreate handles the create form post.
func (h *UIHandlers) ResourceCreate(res realty.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.handleResourceForm(w, r, res, FormModeCreate)
	}
}

// ResourceUpdate handles the edit form post.
func (h *UIHandlers) ResourceUpdate(res realty.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.handleResourceForm(w, r, res, FormModeEdit)
	}
}

func (h *UIHandlers) handleResourceForm(w http.ResponseWriter, r *http.Request, res realty.Resource, mode FormMode) {
	creds := CredentialsFromContext(r.Context())
	id := r.PathValue("id")

	HandleForm(FormHandlerOpts[resourceSubmission]{
		W:        w,
		R:        r,
		Mode:     mode,
		Parser:   h.parseResourceForm(res, mode),
		Renderer: h.renderResourceForm,
		AppName:  h.appName(),
		PageMeta: formPageMeta(res, mode),
		ExtraData: map[string]any{
			"Resource": res,
			"ID":       id,
			"Action":   formAction(res, mode, id),
		},
		Save: func(ctx context.Context, id string, sub resourceSubmission) error {
			p, closeFiles, err := sub.payload()
			if err != nil {
				return err
			}
			defer closeFiles()
			if mode == FormModeEdit {
				_, err = h.Resources.Update(ctx, creds, res, id, p)
				return err
			}
			_, err = h.Resources.Create(ctx, creds, res, p)
			if err == nil {
				h.invalidateDashboard(ctx)
			}
			return err
		},
		OnSuccess: func(w http.ResponseWriter, r *http.Request, _ resourceSubmission) {
			msg := res.Singular + " created."
			if mode == FormModeEdit {
				msg = res.Singular + " saved."
			}
			if !IsHTMX(r) {
				http.Redirect(w, r, "/"+string(res.Key), http.StatusSeeOther)
				return
			}
			HTMX(w).
				Toast(msg, toastSuccess).
				Trigger(eventCloseModal, true).
				Trigger(eventRecordsChanged, true)
			w.WriteHeader(http.StatusNoContent)
		},
	})
}
