package listing

import (
	"cmp"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Query narrows and orders a collection already held in memory.
// Filter values of "" or "all" are ignored.
type Query struct {
	Filters  map[string]string
	Search   string
	From, To time.Time
	SortKey  string
	Desc     bool
	Page     int
	PageSize int
}

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Schema describes how a view filters, searches and sorts T.
type Schema[T any] struct {
	Fields map[string]func(T) string
	Sorts  map[string]func(a, b T) int
	Search []string
	// Time feeds the From/To window. Items with a zero time are excluded
	// whenever a window is set.
	Time func(T) time.Time
}

// Apply filters, stable-sorts and paginates items. The input is not modified.
func Apply[T any](items []T, s Schema[T], q Query) Page[T] {
	return paginate(Select(items, s, q), q.Page, q.PageSize)
}

// Select filters and stable-sorts items without paginating, as exports need
// every matching row.
func Select[T any](items []T, s Schema[T], q Query) []T {
	kept := make([]T, 0, len(items))
	for _, it := range items {
		if s.match(it, q) {
			kept = append(kept, it)
		}
	}
	if less, ok := s.Sorts[q.SortKey]; ok {
		slices.SortStableFunc(kept, func(a, b T) int {
			if q.Desc {
				return less(b, a)
			}
			return less(a, b)
		})
	}
	return kept
}

func (s Schema[T]) match(it T, q Query) bool {
	for k, v := range q.Filters {
		if v == "" || strings.EqualFold(v, "all") {
			continue
		}
		field, ok := s.Fields[k]
		if !ok {
			continue
		}
		if !strings.EqualFold(field(it), v) {
			return false
		}
	}
	if needle := strings.ToLower(strings.TrimSpace(q.Search)); needle != "" {
		found := false
		for _, name := range s.Search {
			field, ok := s.Fields[name]
			if ok && strings.Contains(strings.ToLower(field(it)), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if s.Time != nil && (!q.From.IsZero() || !q.To.IsZero()) {
		t := s.Time(it)
		if t.IsZero() {
			return false
		}
		if !q.From.IsZero() && t.Before(q.From) {
			return false
		}
		if !q.To.IsZero() && t.After(q.To) {
			return false
		}
	}
	return true
}

func paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	total := len(items)
	pages := max(1, (total+size-1)/size)
	page = min(max(page, 1), pages)

	start := (page - 1) * size
	end := min(start+size, total)
	out := make([]T, end-start)
	copy(out, items[start:end])
	return Page[T]{Items: out, Page: page, PageSize: size, Total: total, TotalPages: pages}
}

// UniqueValues lists the distinct non-empty values of field, sorted.
func UniqueValues[T any](items []T, field func(T) string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, it := range items {
		v := field(it)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// ByString and ByTime build comparators for Schema.Sorts.
func ByString[T any](field func(T) string) func(a, b T) int {
	return func(a, b T) int { return strings.Compare(strings.ToLower(field(a)), strings.ToLower(field(b))) }
}

func ByTime[T any](field func(T) time.Time) func(a, b T) int {
	return func(a, b T) int { return field(a).Compare(field(b)) }
}

func ByNumber[T any, N cmp.Ordered](field func(T) N) func(a, b T) int {
	return func(a, b T) int { return cmp.Compare(field(a), field(b)) }
}

// Reserved query parameters; everything else is a filter.
var reserved = map[string]bool{
	"page": true, "page_size": true, "sort": true, "order": true, "q": true, "from": true, "to": true,
}

// ParseQuery reads page, page_size, sort, order (asc|desc), q, from and to
// (RFC 3339 or YYYY-MM-DD) from v. Remaining keys become filters. A date-only
// "to" covers the whole day.
func ParseQuery(v url.Values) Query {
	q := Query{Filters: map[string]string{}}
	q.Page, _ = strconv.Atoi(v.Get("page"))
	q.PageSize, _ = strconv.Atoi(v.Get("page_size"))
	q.SortKey = v.Get("sort")
	q.Desc = strings.EqualFold(v.Get("order"), "desc")
	q.Search = v.Get("q")
	q.From, _ = parseBound(v.Get("from"), false)
	q.To, _ = parseBound(v.Get("to"), true)
	for k := range v {
		if !reserved[k] {
			q.Filters[k] = v.Get(k)
		}
	}
	return q
}

func parseBound(s string, end bool) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, false
	}
	if end {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, true
}

// WithDefaultSort sets the sort when the caller gave none.
func (q Query) WithDefaultSort(key string, desc bool) Query {
	if q.SortKey == "" {
		q.SortKey = key
		q.Desc = desc
	}
	return q
}
