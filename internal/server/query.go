package server

import (
	"fmt"
	"net/url"
	"strings"
)

// ListQuery is the parsed form of a PostgREST-style query string: equality
// row filters plus an optional ordering clause.
type ListQuery struct {
	Filters map[string]string
	OrderBy string
	Desc    bool
}

// ParseListQuery interprets query parameters of the form `col=eq.value` and
// `order=col.asc|desc`. Columns outside the allowed set and operators other
// than eq are rejected.
func ParseListQuery(values url.Values, columns map[string]bool) (*ListQuery, error) {
	q := &ListQuery{Filters: make(map[string]string)}

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		value := vals[0]

		if key == "order" {
			column, direction, ok := strings.Cut(value, ".")
			if !ok || !columns[column] || (direction != "asc" && direction != "desc") {
				return nil, fmt.Errorf("invalid order clause %q", value)
			}
			q.OrderBy = column
			q.Desc = direction == "desc"
			continue
		}

		if !columns[key] {
			return nil, fmt.Errorf("unknown filter column %q", key)
		}
		operand, ok := strings.CutPrefix(value, "eq.")
		if !ok {
			return nil, fmt.Errorf("unsupported filter %q (only eq. is supported)", value)
		}
		q.Filters[key] = operand
	}

	return q, nil
}

// OrderClause renders the ORDER BY fragment, or "" when no order was asked
// for. The column name was validated against the allow list in parsing.
func (q *ListQuery) OrderClause() string {
	if q.OrderBy == "" {
		return ""
	}
	if q.Desc {
		return q.OrderBy + " DESC"
	}
	return q.OrderBy + " ASC"
}
