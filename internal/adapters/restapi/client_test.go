package restapi

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/target/realty-admin/internal/errors"
	"github.com/target/realty-admin/internal/ports"
)

var testCreds = ports.Credentials{Token: "tok-123"}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL + "/v1", Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)

	_, err = NewClient(Config{BaseURL: "not a url"})
	require.Error(t, err)

	c, err := NewClient(Config{BaseURL: "https://api.example.ph"})
	require.NoError(t, err)
	assert.Equal(t, "/", c.base.Path)
}

func TestList_BareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/api/properties", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "azure", r.URL.Query().Get("search"))
		_, _ = io.WriteString(w, `[{"_id":"1","name":"Azure Tower","price":1000000},{"_id":"2","name":"Azure Bay"}]`)
	})

	res, err := c.List(context.Background(), testCreds, "api/properties", ports.ListQuery{Search: "azure"})
	require.NoError(t, err)
	assert.False(t, res.ServerPaged)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "1", res.Records[0].ID())
	assert.Equal(t, float64(1000000), res.Records[0]["price"])
}

func TestList_Envelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, `{"data":[{"id":11}],"total":31}`)
	})

	res, err := c.List(context.Background(), testCreds, "api/news", ports.ListQuery{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.True(t, res.ServerPaged)
	assert.Equal(t, 31, res.Total)
	assert.Equal(t, "11", res.Records[0].ID())
}

func TestList_UnexpectedShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true}`)
	})

	_, err := c.List(context.Background(), testCreds, "api/news", ports.ListQuery{})
	require.Error(t, err)
	assert.True(t, apperrors.IsInternal(err))
}

func TestErrorsMapToAppErrors(t *testing.T) {
	tests := []struct {
		status  int
		body    string
		check   func(error) bool
		message string
	}{
		{http.StatusNotFound, ``, apperrors.IsNotFound, "Record not found."},
		{http.StatusUnprocessableEntity, `{"message":"price must be positive"}`, apperrors.IsValidation, "price must be positive"},
		{http.StatusUnauthorized, `{"error":"token expired"}`, apperrors.IsUnauthorized, "token expired"},
		{http.StatusBadGateway, `<html>`, apperrors.IsInternal, ""},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Get(context.Background(), testCreds, "api/listings", "9")
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected code %s", apperrors.GetCode(err))
			if tt.message != "" {
				assert.Equal(t, tt.message, apperrors.UserMessage(err))
			}
		})
	}
}

func TestGet_UnwrapsDataEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/api/videos/v1", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":{"_id":"v1","title":"Tour"}}`)
	})

	rec, err := c.Get(context.Background(), testCreds, "api/videos", "v1")
	require.NoError(t, err)
	assert.Equal(t, "Tour", rec.String("title"))
}

func TestCreate_StreamsMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		assert.Equal(t, "multipart/form-data", mediaType)

		mr := multipart.NewReader(r.Body, params["boundary"])
		got := map[string]string{}
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			b, _ := io.ReadAll(part)
			key := part.FormName()
			if part.FileName() != "" {
				key += ":" + part.FileName() + ":" + part.Header.Get("Content-Type")
			}
			got[key] = string(b)
		}
		assert.Equal(t, map[string]string{
			"name":                        "Azure Tower",
			"price":                       "1000000",
			"images:tower.jpg:image/jpeg": "JPEGDATA",
		}, got)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"_id": "p9", "name": "Azure Tower"})
	})

	rec, err := c.Create(context.Background(), testCreds, "api/properties", ports.Payload{
		Fields: url.Values{"name": {"Azure Tower"}, "price": {"1000000"}},
		Files: []ports.Upload{{
			Field:       "images",
			Filename:    "tower.jpg",
			ContentType: "image/jpeg",
			Content:     strings.NewReader("JPEGDATA"),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "p9", rec.ID())
}

func TestSetStatus_PatchesJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v1/api/schedules/s1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Accepted", body["status"])
		_, _ = io.WriteString(w, `{"_id":"s1","status":"Accepted","email":"client@example.ph"}`)
	})

	rec, err := c.SetStatus(context.Background(), testCreds, "api/schedules", "s1", "Accepted")
	require.NoError(t, err)
	assert.Equal(t, "Accepted", rec.String("status"))
}

func TestDelete_NoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.Delete(context.Background(), testCreds, "api/testimonials", "t1"))
}

func TestCount(t *testing.T) {
	paged := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"items":[{"id":1}],"totalCount":57}`)
	})
	n, err := paged.Count(context.Background(), testCreds, "api/listings")
	require.NoError(t, err)
	assert.Equal(t, 57, n)

	bare := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1},{"id":2},{"id":3}]`)
	})
	n, err = bare.Count(context.Background(), testCreds, "api/listings")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestNoTokenSendsNoAuthorization(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[]`)
	})
	_, err := c.List(context.Background(), ports.Credentials{}, "api/news", ports.ListQuery{})
	require.NoError(t, err)
}

func TestContextDeadline(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Me(ctx, testCreds)
	require.Error(t, err)
	assert.True(t, apperrors.IsTimeout(err))
}

func TestRecordIDsAreEscaped(t *testing.T) {
	var gotPath, gotRaw, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotRaw, gotQuery = r.URL.Path, r.URL.EscapedPath(), r.URL.RawQuery
		_, _ = io.WriteString(w, `{"_id":"x"}`)
	})
	ctx := context.Background()

	require.NoError(t, c.Delete(ctx, testCreds, "api/schedules", "../profiles/7"))
	assert.Equal(t, "/v1/api/schedules/../profiles/7", gotPath)
	assert.Equal(t, "/v1/api/schedules/..%2Fprofiles%2F7", gotRaw)

	_, err := c.Get(ctx, testCreds, "api/news", "a?b#c")
	require.NoError(t, err)
	assert.Equal(t, "/v1/api/news/a?b#c", gotPath)
	assert.Empty(t, gotQuery)
}

func TestDotIDsAreNotFound(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	for _, id := range []string{"", ".", ".."} {
		err := c.Delete(context.Background(), testCreds, "api/schedules", id)
		assert.True(t, apperrors.IsNotFound(err), "id %q", id)
	}
	assert.False(t, called)
}

func TestResourceOf(t *testing.T) {
	assert.Equal(t, "properties", resourceOf("api/properties/12"))
	assert.Equal(t, "health", resourceOf("/health"))
}
