package tableview

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Badge CSS classes.
const (
	BadgeSuccess = "badge-success"
	BadgeWarning = "badge-warning"
	BadgeInfo    = "badge-info"
	BadgeDanger  = "badge-danger"
	BadgePrimary = "badge-primary"
	BadgeDark    = "badge-dark"
	BadgeNeutral = "badge-secondary"
)

const pesoSign = "₱"

// LongTextLines is how many lines a long-text cell shows before clamping.
const LongTextLines = 2

// longTextRunes caps the cell text itself; the full value goes into the title.
const longTextRunes = 160

// Badge is the label and style of a status or category value.
type Badge struct {
	Label string
	Class string
}

type statusStyle struct {
	label string
	class string
}

// Keys are lowercased.
var statusStyles = map[string]statusStyle{
	"under construction":  {"UC", BadgeWarning},
	"ready for occupancy": {"RFO", BadgeSuccess},
	"pre-selling":         {"", BadgeInfo},
	"sold out":            {"", BadgeDanger},
	"available":           {"", BadgeSuccess},
	"pending":             {"", BadgeWarning},
	"accepted":            {"", BadgeSuccess},
	"approved":            {"", BadgeSuccess},
	"declined":            {"", BadgeDanger},
	"rejected":            {"", BadgeDanger},
}

var categoryStyles = map[string]string{
	"condominium":   BadgePrimary,
	"house and lot": BadgeSuccess,
	"lot only":      BadgeWarning,
	"townhouse":     BadgeInfo,
	"commercial":    BadgeDark,
	"announcement":  BadgeInfo,
	"promo":         BadgeDanger,
	"event":         BadgePrimary,
}

var longTextFields = map[string]struct{}{
	"description": {},
	"content":     {},
	"location":    {},
}

var pesoPrinter = message.NewPrinter(language.English)

// StatusBadge maps a status string to its badge. "Under Construction" and
// "Ready For Occupancy" are abbreviated to UC and RFO; unknown statuses keep
// their literal text on a neutral badge.
func StatusBadge(status string) Badge {
	style, ok := statusStyles[normalizeKey(status)]
	if !ok {
		return Badge{Label: status, Class: BadgeNeutral}
	}
	label := style.label
	if label == "" {
		label = status
	}
	return Badge{Label: label, Class: style.class}
}

// CategoryBadge returns the badge for a known category. ok is false for
// categories outside the fixed set; those render as plain text.
func CategoryBadge(category string) (Badge, bool) {
	class, ok := categoryStyles[normalizeKey(category)]
	if !ok {
		return Badge{Label: category}, false
	}
	return Badge{Label: category, Class: class}, true
}

// IsLongTextField reports whether a field is rendered line-clamped. Dotted
// paths are matched on their last segment.
func IsLongTextField(field string) bool {
	if i := strings.LastIndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	_, ok := longTextFields[strings.ToLower(strings.TrimSpace(field))]
	return ok
}

// FormatPeso renders v as Philippine pesos with grouping and two decimals,
// e.g. ₱1,000,000.00. ok is false when v is not numeric; the caller then
// shows the raw value.
func FormatPeso(v any) (string, bool) {
	f, ok := toFloat(v)
	if !ok {
		return "", false
	}
	amount := pesoPrinter.Sprintf("%.2f", math.Abs(f))
	if f < 0 && amount != "0.00" {
		return "-" + pesoSign + amount, true
	}
	return pesoSign + amount, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return toFloat(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(n), pesoSign))
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return toFloat(f)
	default:
		return 0, false
	}
}

// displayString renders a raw value as cell text.
func displayString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case bool:
		if s {
			return "Yes"
		}
		return "No"
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	r := []rune(s)
	return strings.TrimRightFunc(string(r[:maxRunes-1]), isSpace) + "…"
}

func isSpace(r rune) bool { return r == ' ' || r == '\n' || r == '\t' || r == '\r' }

func normalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
