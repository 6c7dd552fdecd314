package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mulearn/dashboard/internal/core"
)

// orgLinkSelect reads a user's organization links with the location and
// department details colleges carry.
const orgLinkSelect = `
SELECT o.id::text, o.title, o.org_type,
       COALESCE(d.title, ''), COALESCE(uol.graduation_year, ''),
       COALESCE(co.name, ''), COALESCE(st.name, ''), COALESCE(di.name, '')
FROM user_organization_link uol
JOIN organization o ON o.id = uol.org_id
LEFT JOIN department d ON d.id = uol.department_id
LEFT JOIN district di ON di.id = o.district_id
LEFT JOIN zone z ON z.id = di.zone_id
LEFT JOIN state st ON st.id = z.state_id
LEFT JOIN country co ON co.id = st.country_id
WHERE uol.user_id = $1`

func scanOrgLink(row pgx.Row) (core.OrgLink, error) {
	var l core.OrgLink
	err := row.Scan(&l.OrgID, &l.Title, &l.OrgType,
		&l.Department, &l.GraduationYear, &l.Country, &l.State, &l.District)
	if err != nil {
		return l, err
	}
	if l.OrgType != core.OrgCollege {
		l = core.OrgLink{OrgID: l.OrgID, Title: l.Title, OrgType: l.OrgType}
	}
	return l, nil
}

func (s *Store) CollegeLink(ctx context.Context, userID string) (core.OrgLink, error) {
	uid, err := parseID(userID)
	if err != nil {
		return core.OrgLink{}, err
	}
	link, err := scanOrgLink(s.db.QueryRow(ctx,
		orgLinkSelect+` AND o.org_type = $2 ORDER BY uol.created_at ASC LIMIT 1`,
		uid, string(core.OrgCollege)))
	return link, translate(err, "college of "+userID)
}

const studentSelect = `
SELECT u.id::text, COALESCE(u.mu_id, ''), u.first_name, COALESCE(u.last_name, ''),
       u.email, kr.karma, COALESCE(l.name, ''), u.created_at
FROM user_organization_link uol
JOIN "user" u ON u.id = uol.user_id
LEFT JOIN LATERAL (
    SELECT COALESCE(SUM(k.karma), 0)::int AS karma
    FROM karma_activity_log k WHERE k.user_id = u.id
) kr ON true
LEFT JOIN user_lvl_link ull ON ull.user_id = u.id
LEFT JOIN level l ON l.id = ull.level_id`

var studentColumns = map[string]string{
	"first_name": "u.first_name",
	"last_name":  "u.last_name",
	"email":      "u.email",
	"karma":      "kr.karma",
	"level":      "l.name",
	"joined":     "u.created_at",
}

func collectStudents(rows pgx.Rows) ([]core.Student, error) {
	defer rows.Close()

	var students []core.Student
	for rows.Next() {
		var st core.Student
		if err := rows.Scan(&st.UserID, &st.MuID, &st.FirstName, &st.LastName,
			&st.Email, &st.Karma, &st.Level, &st.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return students, nil
}

func (s *Store) Students(ctx context.Context, orgID string, q core.PageQuery) ([]core.Student, int64, error) {
	oid, err := parseID(orgID)
	if err != nil {
		return nil, 0, err
	}

	var wb whereBuilder
	wb.Add("uol.org_id = ?", oid)
	wb.AddSearch(q.Search, "u.first_name", "u.last_name", "u.email", "u.mu_id")
	where, args := wb.Build()

	var count int64
	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_organization_link uol JOIN "user" u ON u.id = uol.user_id`+where,
		args...,
	).Scan(&count)
	if err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	query := studentSelect + where + orderClause(q, core.StudentSortKeys, studentColumns, "u.id") + wb.pageClause(q)
	rows, err := s.db.Query(ctx, query, wb.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query students: %w", err)
	}
	students, err := collectStudents(rows)
	return students, count, err
}

func (s *Store) AllStudents(ctx context.Context, orgID string) ([]core.Student, error) {
	oid, err := parseID(orgID)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx, studentSelect+` WHERE uol.org_id = $1 ORDER BY u.first_name ASC, u.id ASC`, oid)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	return collectStudents(rows)
}
