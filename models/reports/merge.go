package reports

import (
	"strconv"
	"strings"
)

const (
	DefaultPage       = 1
	DefaultReportSize = 5
	MaxPageSize       = 100
)

// Query is a normalised page request. Page is 1-indexed.
type Query struct {
	Page     int
	PageSize int
	Search   string
}

// ParseQuery applies the paging policy: missing or non-numeric values take
// the defaults, page < 1 becomes 1, pageSize is clamped to [1, MaxPageSize].
func ParseQuery(page, pageSize, search string, defaultSize int) Query {
	q := Query{
		Page:     DefaultPage,
		PageSize: defaultSize,
		Search:   strings.TrimSpace(search),
	}
	if n, err := strconv.Atoi(strings.TrimSpace(page)); err == nil {
		q.Page = max(n, 1)
	}
	if n, err := strconv.Atoi(strings.TrimSpace(pageSize)); err == nil {
		q.PageSize = n
	}
	q.PageSize = min(max(q.PageSize, 1), MaxPageSize)
	return q
}

// MergeByKey walks base in order and projects every entity together with its
// aggregate. Entities missing from aggregates get the zero aggregate, so no
// entity is ever dropped and the output order is the base order.
func MergeByKey[E any, K comparable, A any, R any](
	base []E,
	aggregates []A,
	entityKey func(E) K,
	aggregateKey func(A) K,
	project func(E, A) R,
) []R {
	byKey := make(map[K]A, len(aggregates))
	for _, a := range aggregates {
		byKey[aggregateKey(a)] = a
	}
	out := make([]R, 0, len(base))
	for _, e := range base {
		out = append(out, project(e, byKey[entityKey(e)]))
	}
	return out
}

// Paginate returns the 1-indexed page of rows and the page count. A page past
// the end yields an empty, non-nil slice.
func Paginate[T any](rows []T, page, pageSize int) ([]T, int) {
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}
	totalPages := len(rows) / pageSize
	if len(rows)%pageSize != 0 {
		totalPages++
	}
	// Compare pages before multiplying so huge page numbers cannot overflow.
	if page > totalPages {
		return []T{}, totalPages
	}
	start := (page - 1) * pageSize
	end := start + min(pageSize, len(rows)-start)
	out := make([]T, end-start)
	copy(out, rows[start:end])
	return out, totalPages
}
