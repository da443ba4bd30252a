package realty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/target/realty-admin/internal/domain/realty"
)

func TestFieldValue(t *testing.T) {
	rec := domain.Record{"name": "Azure Tower", "publishedAt": "2026-03-07T10:00:00Z", "price": float64(2500000)}

	assert.Equal(t, "Azure Tower", FieldValue(rec, nil, "name"))
	assert.Equal(t, "2026-03-07", FieldValue(rec, nil, "publishedAt"))
	assert.Equal(t, "2500000", FieldValue(rec, nil, "price"))
	assert.Equal(t, "edited", FieldValue(rec, map[string]string{"name": "edited"}, "name"))
	assert.Empty(t, FieldValue(nil, nil, "name"))
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown("# Open house\n\nVisit **Saturday**.\n\n<script>alert(1)</script>")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<h1>Open house</h1>")
	assert.Contains(t, string(out), "<strong>Saturday</strong>")
	assert.NotContains(t, string(out), "<script>")
}

func TestParsePageSize(t *testing.T) {
	assert.Equal(t, 25, ParsePageSize("25", 10))
	assert.Equal(t, 10, ParsePageSize("7", 10))
	assert.Equal(t, 10, ParsePageSize("", 10))
}

func TestFuncs_Peso(t *testing.T) {
	peso := Funcs()["peso"].(func(any) string)
	assert.Equal(t, "₱1,000,000.00", peso(float64(1000000)))
	assert.Equal(t, "TBA", peso("TBA"))
}
