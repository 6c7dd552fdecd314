package postgres

import (
	"context"

	"github.com/mulearn/dashboard/internal/core"
)

func (s *Store) ChannelByName(ctx context.Context, name string) (core.Channel, error) {
	var c core.Channel
	err := s.db.QueryRow(ctx,
		`SELECT id::text, name FROM channel WHERE name = $1 LIMIT 1`, name,
	).Scan(&c.ID, &c.Name)
	return c, translate(err, "channel "+name)
}

func (s *Store) TaskTypeByTitle(ctx context.Context, title string) (core.TaskType, error) {
	var t core.TaskType
	err := s.db.QueryRow(ctx,
		`SELECT id::text, title FROM task_type WHERE title = $1 LIMIT 1`, title,
	).Scan(&t.ID, &t.Title)
	return t, translate(err, "task type "+title)
}

func (s *Store) LevelByName(ctx context.Context, name string) (core.Level, error) {
	var l core.Level
	err := s.db.QueryRow(ctx,
		`SELECT id::text, name FROM level WHERE name = $1 LIMIT 1`, name,
	).Scan(&l.ID, &l.Name)
	return l, translate(err, "level "+name)
}

func (s *Store) InterestGroupByName(ctx context.Context, name string) (core.InterestGroup, error) {
	var ig core.InterestGroup
	err := s.db.QueryRow(ctx,
		`SELECT id::text, name FROM interest_group WHERE name = $1 LIMIT 1`, name,
	).Scan(&ig.ID, &ig.Name)
	return ig, translate(err, "interest group "+name)
}

func (s *Store) OrganizationByCode(ctx context.Context, code string) (core.Organization, error) {
	var o core.Organization
	err := s.db.QueryRow(ctx,
		`SELECT id::text, title, code, org_type FROM organization WHERE code = $1 LIMIT 1`, code,
	).Scan(&o.ID, &o.Title, &o.Code, &o.OrgType)
	return o, translate(err, "organization "+code)
}
