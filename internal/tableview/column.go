package tableview

import (
	"fmt"

	"github.com/jmespath-community/go-jmespath"
)

// Kind selects the display formatting of a column.
type Kind int

const (
	// Plain renders the value as text.
	Plain Kind = iota
	// Status renders the value as a status badge.
	Status
	// Price renders the value as pesos.
	Price
	// Category renders known categories as badges.
	Category
)

func (k Kind) String() string {
	switch k {
	case Status:
		return "status"
	case Price:
		return "price"
	case Category:
		return "category"
	default:
		return "plain"
	}
}

// Accessor extracts a column's display value from an opaque row. The result
// is a string, a number or a template.HTML fragment.
type Accessor func(row any) any

// Column describes one table column. Field names the value for long-text
// detection and, when Accessor is nil, is the JMESPath expression the value
// is read with.
type Column struct {
	Label    string
	Field    string
	Kind     Kind
	Accessor Accessor
}

// PathAccessor compiles expr once and returns an accessor that evaluates it
// against each row. A row the expression does not match yields nil.
func PathAccessor(expr string) (Accessor, error) {
	compiled, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile column path %q: %w", expr, err)
	}
	return func(row any) any {
		v, searchErr := compiled.Search(row)
		if searchErr != nil {
			return nil
		}
		return v
	}, nil
}

// MustPath is PathAccessor for column tables declared at init time.
func MustPath(expr string) Accessor {
	acc, err := PathAccessor(expr)
	if err != nil {
		panic(err)
	}
	return acc
}

// Field declares a column read from field with the given kind.
func Field(label, field string, kind Kind) Column {
	return Column{Label: label, Field: field, Kind: kind, Accessor: MustPath(field)}
}

// Value returns the column's raw value for row.
func (c Column) Value(row any) any {
	if c.Accessor != nil {
		return c.Accessor(row)
	}
	if c.Field == "" {
		return nil
	}
	acc, err := PathAccessor(c.Field)
	if err != nil {
		return nil
	}
	return acc(row)
}
