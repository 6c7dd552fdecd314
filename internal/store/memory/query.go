package memory

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/mulearn/dashboard/internal/core"
)

// sortField extracts the value a listing sorts on.
type sortField[T any] func(T) any

func compareAny(a, b any) int {
	switch x := a.(type) {
	case string:
		return cmp.Compare(strings.ToLower(x), strings.ToLower(b.(string)))
	case int:
		return cmp.Compare(x, b.(int))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case time.Time:
		return x.Compare(b.(time.Time))
	}
	return 0
}

// sortBy orders items in place by the query's sort key, stably.
func sortBy[T any](items []T, q core.PageQuery, allowed []string, fields map[string]sortField[T]) {
	order := core.ParseSort(q.SortBy, allowed)
	get, ok := fields[order.Key]
	if !ok {
		return
	}
	slices.SortStableFunc(items, func(a, b T) int {
		c := compareAny(get(a), get(b))
		if order.Desc {
			return -c
		}
		return c
	})
}

// pageOf returns the items on page q.
func pageOf[T any](items []T, q core.PageQuery) []T {
	start := q.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+q.PerPage, len(items))
	return items[start:end]
}

// matches reports whether any value contains the search term, case-insensitively.
func matches(search string, values ...string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), search) {
			return true
		}
	}
	return false
}
