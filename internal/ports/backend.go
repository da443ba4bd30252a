package ports

import (
	"context"
	"io"
	"net/url"

	"github.com/target/realty-admin/internal/domain/realty"
)

// Credentials authenticate a backend API call on behalf of a signed-in user.
// They are passed explicitly on every call; nothing reads them from ambient state.
type Credentials struct {
	Token string
}

// ListQuery is forwarded to the API's list endpoint.
type ListQuery struct {
	Search string
	Page   int
	Limit  int
}

// ListResult is a page (or the whole collection) returned by the API.
// ServerPaged is true when the API answered with an envelope carrying a
// total; Records then hold only the requested page.
type ListResult struct {
	Records     []realty.Record
	Total       int
	ServerPaged bool
}

// Upload is one file part of a multipart payload.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Content     io.Reader
}

// Payload is a create/update body: plain form fields plus uploaded files.
type Payload struct {
	Fields url.Values
	Files  []Upload
}

// RealtyAPI is the backend REST API the admin manages records through.
type RealtyAPI interface {
	List(ctx context.Context, creds Credentials, path string, q ListQuery) (ListResult, error)
	Get(ctx context.Context, creds Credentials, path, id string) (realty.Record, error)
	Create(ctx context.Context, creds Credentials, path string, p Payload) (realty.Record, error)
	Update(ctx context.Context, creds Credentials, path, id string, p Payload) (realty.Record, error)
	Delete(ctx context.Context, creds Credentials, path, id string) error
	SetStatus(ctx context.Context, creds Credentials, path, id, status string) (realty.Record, error)
	Count(ctx context.Context, creds Credentials, path string) (int, error)
	// Me returns the profile of the user the credentials belong to.
	Me(ctx context.Context, creds Credentials) (realty.Record, error)
}
