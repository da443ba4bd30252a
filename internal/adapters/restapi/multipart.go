package restapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"

	"github.com/target/realty-admin/internal/ports"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartRequest streams p as multipart/form-data through a pipe so large
// uploads are never buffered in memory.
func multipartRequest(method, path string, p ports.Payload) request {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writePayload(mw, p))
	}()
	return request{method: method, path: path, body: pr, contentType: mw.FormDataContentType()}
}

func writePayload(mw *multipart.Writer, p ports.Payload) error {
	keys := make([]string, 0, len(p.Fields))
	for k := range p.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, v := range p.Fields[k] {
			if err := mw.WriteField(k, v); err != nil {
				return fmt.Errorf("write field %s: %w", k, err)
			}
		}
	}

	for _, f := range p.Files {
		if err := writeFile(mw, f); err != nil {
			return err
		}
	}
	return mw.Close()
}

func writeFile(mw *multipart.Writer, f ports.Upload) error {
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(f.Field), quoteEscaper.Replace(f.Filename)))
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create part %s: %w", f.Field, err)
	}
	if f.Content == nil {
		return nil
	}
	if _, err := io.Copy(part, f.Content); err != nil {
		return fmt.Errorf("copy upload %s: %w", f.Filename, err)
	}
	return nil
}
