// Package database builds parameterised list and count queries with
// sanitised identifiers.
package database

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
)

type ConditionType string

const (
	Equal       ConditionType = "="
	NotEqual    ConditionType = "!="
	GreaterThan ConditionType = ">"
	LessThan    ConditionType = "<"
	ILike       ConditionType = "ILIKE"
	In          ConditionType = "IN"

	unset = -1
)

// Condition is one WHERE predicate. A nil or empty-slice value for In is
// skipped.
type Condition struct {
	Field string
	Type  ConditionType
	Value any
}

func WhereCond(field string, condType ConditionType, value any) Condition {
	return Condition{Field: field, Type: condType, Value: value}
}

type ListQueryOptions struct {
	Table      string
	Columns    []string
	CountOnly  bool
	Conditions []Condition
	OrderBy    string
	OrderDir   string
	Limit      int
	Offset     int
}

type ListQueryOption func(*ListQueryOptions)

func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	o := &ListQueryOptions{Table: table, Limit: unset, Offset: unset}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) { o.Columns = cols }
}

// WithCondition adds cond when keep is true. It lets callers add optional
// filters inline.
func WithCondition(cond Condition, keep bool) ListQueryOption {
	return func(o *ListQueryOptions) {
		if keep {
			o.Conditions = append(o.Conditions, cond)
		}
	}
}

func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = column
		o.OrderDir = direction
	}
}

// WithPage sets LIMIT and OFFSET. Negative values leave the clause out.
func WithPage(limit, offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

func WithCountOnly() ListQueryOption {
	return func(o *ListQueryOptions) { o.CountOnly = true }
}

// BuildListQuery renders options into SQL and positional arguments.
func BuildListQuery(o *ListQueryOptions) (string, []any) {
	if o == nil {
		return "", nil
	}

	var q strings.Builder
	q.WriteString(selectClause(o))
	q.WriteString(" FROM ")
	q.WriteString(ident(o.Table))

	var (
		preds []string
		args  []any
	)
	for _, c := range o.Conditions {
		pred, condArgs := renderCondition(c, len(args)+1)
		if pred == "" {
			continue
		}
		preds = append(preds, pred)
		args = append(args, condArgs...)
	}
	if len(preds) > 0 {
		q.WriteString(" WHERE ")
		q.WriteString(strings.Join(preds, " AND "))
	}
	if o.CountOnly {
		return q.String(), args
	}

	if o.OrderBy != "" {
		q.WriteString(" ORDER BY ")
		q.WriteString(ident(o.OrderBy))
		if dir := strings.ToUpper(o.OrderDir); dir == "ASC" || dir == "DESC" {
			q.WriteString(" " + dir)
		}
	}
	if o.Limit != unset {
		args = append(args, o.Limit)
		fmt.Fprintf(&q, " LIMIT $%d", len(args))
	}
	if o.Offset != unset {
		args = append(args, o.Offset)
		fmt.Fprintf(&q, " OFFSET $%d", len(args))
	}
	return q.String(), args
}

func selectClause(o *ListQueryOptions) string {
	if o.CountOnly {
		return "SELECT COUNT(*)"
	}
	if len(o.Columns) == 0 {
		return "SELECT *"
	}
	cols := make([]string, len(o.Columns))
	for i, c := range o.Columns {
		cols[i] = ident(c)
	}
	return "SELECT " + strings.Join(cols, ", ")
}

func renderCondition(c Condition, next int) (string, []any) {
	field := ident(c.Field)
	if c.Type != In {
		return fmt.Sprintf("%s %s $%d", field, c.Type, next), []any{c.Value}
	}

	rv := reflect.ValueOf(c.Value)
	if rv.Kind() != reflect.Slice || rv.Len() == 0 {
		return "", nil
	}
	marks := make([]string, rv.Len())
	args := make([]any, rv.Len())
	for i := range rv.Len() {
		marks[i] = fmt.Sprintf("$%d", next+i)
		args[i] = rv.Index(i).Interface()
	}
	return fmt.Sprintf("%s IN (%s)", field, strings.Join(marks, ", ")), args
}

// ident quotes a possibly qualified identifier such as "table.column".
func ident(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}
