package core

import "strings"

// Sort keys accepted by each listing. The first entry is the default.
var (
	TaskSortKeys = []string{
		"created_at", "id", "hashtag", "title", "karma", "channel", "type", "active",
		"variable_karma", "usage_count", "created_by",
	}
	StudentSortKeys = []string{"first_name", "last_name", "email", "karma", "level", "joined"}
	UserSortKeys    = []string{
		"created_at", "first_name", "last_name", "email", "mobile", "total_karma",
		"company", "college", "department", "graduation_year",
	}
)

// SortOrder is a validated sort key and direction.
type SortOrder struct {
	Key  string
	Desc bool
}

// ParseSort resolves a "key" or "-key" sort parameter against allowed.
// Unknown keys fall back to allowed[0] ascending.
func ParseSort(sortBy string, allowed []string) SortOrder {
	sortBy = strings.TrimSpace(sortBy)
	desc := strings.HasPrefix(sortBy, "-")
	key := strings.TrimPrefix(sortBy, "-")

	for _, k := range allowed {
		if k == key {
			return SortOrder{Key: k, Desc: desc}
		}
	}
	if len(allowed) == 0 {
		return SortOrder{}
	}
	return SortOrder{Key: allowed[0]}
}

// Normalize clamps page and page size into range.
func (q PageQuery) Normalize(defaultSize, maxSize int) PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = defaultSize
	}
	if maxSize > 0 && q.PerPage > maxSize {
		q.PerPage = maxSize
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// Offset returns the number of rows before the page.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// NewPagination describes page q of a listing with count rows in total.
func NewPagination(count int64, q PageQuery) Pagination {
	p := Pagination{Count: count}
	if q.PerPage > 0 {
		p.TotalPages = int((count + int64(q.PerPage) - 1) / int64(q.PerPage))
	}
	p.IsPrev = q.Page > 1
	p.IsNext = q.Page < p.TotalPages
	if p.IsNext {
		next := q.Page + 1
		p.NextPage = &next
	}
	return p
}

// Page is one page of a listing in the envelope shape the dashboard expects.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}
