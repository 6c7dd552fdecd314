package postgres

import (
	"fmt"
	"strings"

	"github.com/mulearn/dashboard/internal/core"
)

// whereBuilder accumulates AND-ed conditions with numbered placeholders.
type whereBuilder struct {
	conditions []string
	args       []any
}

// next returns the placeholder for value and records it.
func (wb *whereBuilder) next(value any) string {
	wb.args = append(wb.args, value)
	return fmt.Sprintf("$%d", len(wb.args))
}

// Add appends a condition whose single "?" is replaced by a placeholder.
func (wb *whereBuilder) Add(cond string, value any) {
	wb.conditions = append(wb.conditions, strings.Replace(cond, "?", wb.next(value), 1))
}

// AddSearch matches term case-insensitively against any of exprs. A blank
// term adds nothing.
func (wb *whereBuilder) AddSearch(term string, exprs ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(exprs) == 0 {
		return
	}
	ph := wb.next("%" + escapeLike(term) + "%")
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = fmt.Sprintf("%s ILIKE %s", e, ph)
	}
	wb.conditions = append(wb.conditions, "("+strings.Join(parts, " OR ")+")")
}

// Build returns the WHERE clause (with a leading space) and its arguments.
func (wb *whereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", wb.args
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// orderClause renders the sort for q. columns maps every sort key to its
// SQL expression; keys missing from columns fall back to the default.
// tiebreak keeps pages stable when sort values repeat.
func orderClause(q core.PageQuery, allowed []string, columns map[string]string, tiebreak string) string {
	order := core.ParseSort(q.SortBy, allowed)
	expr, ok := columns[order.Key]
	if !ok {
		expr = columns[allowed[0]]
	}
	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}
	if tiebreak == "" || tiebreak == expr {
		return fmt.Sprintf(" ORDER BY %s %s", expr, dir)
	}
	return fmt.Sprintf(" ORDER BY %s %s, %s ASC", expr, dir, tiebreak)
}

// pageClause renders LIMIT/OFFSET for q using the next placeholders.
func (wb *whereBuilder) pageClause(q core.PageQuery) string {
	limit := wb.next(q.PerPage)
	offset := wb.next(q.Offset())
	return fmt.Sprintf(" LIMIT %s OFFSET %s", limit, offset)
}
