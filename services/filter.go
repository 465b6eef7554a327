package services

import (
	"strings"

	"gorm.io/gorm"
)

// cond keeps one predicate fragment together with the values bound to its
// placeholders. The two never travel separately.
type cond struct {
	fragment string
	values   []interface{}
}

// ListFilter builds the WHERE clause for a list query as a single ordered
// artifact of (fragment, bound values) pairs. Both the data query and its
// sibling count query consume it through Apply, so they always see the
// same predicate with the same bindings; pagination is layered on top of
// the data query only, after Apply.
type ListFilter struct {
	conds []cond
}

// NewListFilter returns a filter whose base predicate matches everything.
func NewListFilter() *ListFilter {
	return &ListFilter{}
}

// Equal adds an exact-match condition. Empty values are skipped so callers
// can pass query parameters through without checking them first.
func (f *ListFilter) Equal(column, value string) *ListFilter {
	if value == "" {
		return f
	}
	f.conds = append(f.conds, cond{
		fragment: column + " = ?",
		values:   []interface{}{value},
	})
	return f
}

// Search adds a case-insensitive substring match ORed across the given
// columns. LOWER(...) LIKE keeps the behavior identical on SQLite and
// PostgreSQL.
func (f *ListFilter) Search(term string, columns ...string) *ListFilter {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return f
	}

	pattern := "%" + strings.ToLower(term) + "%"
	fragments := make([]string, 0, len(columns))
	values := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		fragments = append(fragments, "LOWER("+column+") LIKE ?")
		values = append(values, pattern)
	}

	f.conds = append(f.conds, cond{
		fragment: "(" + strings.Join(fragments, " OR ") + ")",
		values:   values,
	})
	return f
}

// Apply binds every condition onto the query in order.
func (f *ListFilter) Apply(query *gorm.DB) *gorm.DB {
	for _, c := range f.conds {
		query = query.Where(c.fragment, c.values...)
	}
	return query
}
