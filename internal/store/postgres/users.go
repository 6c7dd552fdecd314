package postgres

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mulearn/dashboard/internal/core"
)

// firstLink picks the user's earliest link to an organization of one type.
const firstLink = `
LEFT JOIN LATERAL (
    SELECT o.title, d.title AS department, l.graduation_year
    FROM user_organization_link l
    JOIN organization o ON o.id = l.org_id
    LEFT JOIN department d ON d.id = l.department_id
    WHERE l.user_id = u.id AND o.org_type = '%s'
    ORDER BY l.created_at ASC
    LIMIT 1
) %s ON true`

var userSummarySelect = `
SELECT u.id::text, COALESCE(u.discord_id, ''), u.first_name, COALESCE(u.last_name, ''),
       u.email, COALESCE(u.mobile, ''), COALESCE(u.gender, ''),
       COALESCE(to_char(u.dob, 'YYYY-MM-DD'), ''), u.admin, u.active, u.exist_in_guild,
       u.created_at, company.title, college.title, kr.karma,
       college.department, college.graduation_year
FROM "user" u
LEFT JOIN LATERAL (
    SELECT COALESCE(SUM(k.karma), 0)::int AS karma
    FROM karma_activity_log k WHERE k.user_id = u.id
) kr ON true` +
	fmt.Sprintf(firstLink, core.OrgCompany, "company") +
	fmt.Sprintf(firstLink, core.OrgCollege, "college")

var userColumns = map[string]string{
	"created_at":      "u.created_at",
	"first_name":      "u.first_name",
	"last_name":       "u.last_name",
	"email":           "u.email",
	"mobile":          "u.mobile",
	"total_karma":     "kr.karma",
	"company":         "company.title",
	"college":         "college.title",
	"department":      "college.department",
	"graduation_year": "college.graduation_year",
}

// userFieldColumns maps editable fields onto "user" columns.
var userFieldColumns = map[string]string{
	core.FieldFirstName: "first_name",
	core.FieldLastName:  "last_name",
	core.FieldEmail:     "email",
	core.FieldMobile:    "mobile",
	core.FieldGender:    "gender",
	core.FieldDOB:       "dob",
}

func (s *Store) ListUsers(ctx context.Context, q core.PageQuery) ([]core.UserSummary, int64, error) {
	var wb whereBuilder
	wb.AddSearch(q.Search, "u.first_name", "u.last_name", "u.email", "u.mobile", "u.discord_id")
	where, args := wb.Build()

	var count int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM "user" u`+where, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := userSummarySelect + where + orderClause(q, core.UserSortKeys, userColumns, "u.id") + wb.pageClause(q)
	rows, err := s.db.Query(ctx, query, wb.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []core.UserSummary
	for rows.Next() {
		var u core.UserSummary
		var company, college, department, graduation pgtype.Text
		if err := rows.Scan(&u.ID, &u.DiscordID, &u.FirstName, &u.LastName,
			&u.Email, &u.Mobile, &u.Gender, &u.DOB, &u.Admin, &u.Active, &u.ExistInGuild,
			&u.CreatedAt, &company, &college, &u.TotalKarma, &department, &graduation); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		u.Company = company.String
		u.College = college.String
		u.Department = department.String
		u.GraduationYear = graduation.String
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}
	return users, count, nil
}

func (s *Store) UserProfile(ctx context.Context, id string) (core.UserProfile, error) {
	uid, err := parseID(id)
	if err != nil {
		return core.UserProfile{}, err
	}

	p := core.UserProfile{}
	err = s.db.QueryRow(ctx, `
SELECT u.id::text, u.first_name, COALESCE(u.last_name, ''), u.email,
       COALESCE(u.mobile, ''), COALESCE(u.gender, ''), COALESCE(to_char(u.dob, 'YYYY-MM-DD'), '')
FROM "user" u WHERE u.id = $1`, uid,
	).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Mobile, &p.Gender, &p.DOB)
	if err != nil {
		return core.UserProfile{}, translate(err, "user "+id)
	}

	if p.Roles, err = s.texts(ctx, `
SELECT r.title FROM user_role_link url JOIN role r ON r.id = url.role_id
WHERE url.user_id = $1 ORDER BY url.created_at ASC`, uid); err != nil {
		return core.UserProfile{}, fmt.Errorf("roles of %s: %w", id, err)
	}
	if p.InterestGroups, err = s.texts(ctx, `
SELECT ig.name FROM user_ig_link uil JOIN interest_group ig ON ig.id = uil.ig_id
WHERE uil.user_id = $1 ORDER BY uil.created_at ASC`, uid); err != nil {
		return core.UserProfile{}, fmt.Errorf("interest groups of %s: %w", id, err)
	}

	rows, err := s.db.Query(ctx, orgLinkSelect+` ORDER BY uol.created_at ASC`, uid)
	if err != nil {
		return core.UserProfile{}, fmt.Errorf("organizations of %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		link, err := scanOrgLink(rows)
		if err != nil {
			return core.UserProfile{}, fmt.Errorf("scan organization: %w", err)
		}
		p.Organizations = append(p.Organizations, link)
	}
	if err := rows.Err(); err != nil {
		return core.UserProfile{}, fmt.Errorf("rows error: %w", err)
	}
	return p, nil
}

// texts runs a single-column text query.
func (s *Store) texts(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *Store) EmailInUse(ctx context.Context, email, excludeUserID string) (bool, error) {
	var inUse bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM "user" WHERE lower(email) = lower($1) AND id::text <> $2)`,
		email, excludeUserID,
	).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return inUse, nil
}

// ApplyUserChanges writes field updates and replaces link sets in one
// transaction.
func (s *Store) ApplyUserChanges(ctx context.Context, c core.UserChanges) error {
	uid, err := parseID(c.UserID)
	if err != nil {
		return err
	}
	set, args, err := userUpdate(c.Fields)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		var locked string
		err := tx.QueryRow(ctx, `SELECT id::text FROM "user" WHERE id = $1 FOR UPDATE`, uid).Scan(&locked)
		if err != nil {
			return translate(err, "user "+c.UserID)
		}

		if set != "" {
			args = append(args, uid)
			query := fmt.Sprintf(`UPDATE "user" SET %s WHERE id = $%d`, set, len(args))
			if _, err := tx.Exec(ctx, query, args...); err != nil {
				return translate(err, "update user "+c.UserID)
			}
		}
		if c.Orgs != nil {
			if err := replaceOrgLinks(ctx, tx, uid, c); err != nil {
				return err
			}
		}
		if c.IGs != nil {
			if err := replaceIGLinks(ctx, tx, uid, c); err != nil {
				return err
			}
		}
		return nil
	})
}

// userUpdate renders the SET list for fields in a fixed column order.
func userUpdate(fields map[string]string) (string, []any, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if _, ok := userFieldColumns[k]; !ok {
			return "", nil, fmt.Errorf("unknown user field %q", k)
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, k := range keys {
		var v any = fields[k]
		switch {
		case k == core.FieldDOB && fields[k] == "":
			v = nil
		case k == core.FieldDOB:
			dob, err := time.Parse("2006-01-02", fields[k])
			if err != nil {
				return "", nil, fmt.Errorf("dob %q: %w", fields[k], err)
			}
			v = dob
		}
		args = append(args, v)
		parts = append(parts, fmt.Sprintf("%s = $%d", quoteIdentifier(userFieldColumns[k]), len(args)))
	}
	return strings.Join(parts, ", "), args, nil
}

func replaceOrgLinks(ctx context.Context, tx pgx.Tx, uid uuid.UUID, c core.UserChanges) error {
	if _, err := tx.Exec(ctx, `DELETE FROM user_organization_link WHERE user_id = $1`, uid); err != nil {
		return fmt.Errorf("clear organizations: %w", err)
	}
	dept, err := optionalID(nonEmpty(c.Orgs.Department))
	if err != nil {
		return err
	}
	var deptArg any
	if dept != nil {
		deptArg = *dept
	}

	for _, id := range c.Orgs.IDs {
		oid, err := optionalID(&id)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
INSERT INTO user_organization_link
    (id, user_id, org_id, department_id, graduation_year, verified, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, true, $6, $7)`,
			uuid.New(), uid, *oid, deptArg, nullableText(c.Orgs.GraduationYear),
			nullableText(c.ActorID), c.Timestamp,
		)
		if err != nil {
			return translate(err, "link organization "+id)
		}
	}
	return nil
}

func replaceIGLinks(ctx context.Context, tx pgx.Tx, uid uuid.UUID, c core.UserChanges) error {
	if _, err := tx.Exec(ctx, `DELETE FROM user_ig_link WHERE user_id = $1`, uid); err != nil {
		return fmt.Errorf("clear interest groups: %w", err)
	}
	for _, id := range c.IGs.IDs {
		igid, err := optionalID(&id)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
INSERT INTO user_ig_link (id, user_id, ig_id, created_by, created_at)
VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), uid, *igid, nullableText(c.ActorID), c.Timestamp,
		)
		if err != nil {
			return translate(err, "link interest group "+id)
		}
	}
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
