package restapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/target/realty-admin/internal/domain/realty"
	apperrors "github.com/target/realty-admin/internal/errors"
	"github.com/target/realty-admin/internal/ports"
)

// Envelope keys seen in list responses, in lookup order.
var (
	listKeys  = []string{"data", "items", "results"}
	totalKeys = []string{"total", "totalCount", "count"}
)

var errUnexpectedShape = errors.New("unexpected payload shape")

func decodeList(body []byte) (ports.ListResult, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ports.ListResult{}, nil
	}

	switch body[0] {
	case '[':
		var rows []map[string]any
		if err := json.Unmarshal(body, &rows); err != nil {
			return ports.ListResult{}, fmt.Errorf("decode list: %w", err)
		}
		records := toRecords(rows)
		return ports.ListResult{Records: records, Total: len(records)}, nil
	case '{':
		return decodeEnvelope(body)
	default:
		return ports.ListResult{}, errUnexpectedShape
	}
}

func decodeEnvelope(body []byte) (ports.ListResult, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return ports.ListResult{}, fmt.Errorf("decode list envelope: %w", err)
	}

	var rows []map[string]any
	found := false
	for _, k := range listKeys {
		raw, ok := env[k]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &rows); err != nil {
			return ports.ListResult{}, fmt.Errorf("decode %s: %w", k, err)
		}
		found = true
		break
	}
	if !found {
		return ports.ListResult{}, errUnexpectedShape
	}

	records := toRecords(rows)
	res := ports.ListResult{Records: records, Total: len(records)}
	for _, k := range totalKeys {
		raw, ok := env[k]
		if !ok {
			continue
		}
		var total int
		if err := json.Unmarshal(raw, &total); err != nil {
			return ports.ListResult{}, fmt.Errorf("decode %s: %w", k, err)
		}
		res.Total = total
		res.ServerPaged = true
		break
	}
	return res, nil
}

// decodeRecord accepts a bare object or {"data": {...}}. An empty body
// (204 No Content) yields an empty record.
func decodeRecord(body []byte) (realty.Record, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return realty.Record{}, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Unexpected response from the backend API.")
	}
	if inner, ok := obj["data"].(map[string]any); ok {
		return realty.Record(inner), nil
	}
	return realty.Record(obj), nil
}

func toRecords(rows []map[string]any) []realty.Record {
	out := make([]realty.Record, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			out = append(out, realty.Record(r))
		}
	}
	return out
}
