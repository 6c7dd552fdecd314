package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mulearn/dashboard/internal/core"
)

const taskSelect = `
SELECT t.id::text, t.hashtag, t.title, COALESCE(t.description, ''), t.karma,
       t.usage_count, t.variable_karma, t.active,
       t.channel_id::text, COALESCE(c.name, ''), t.type_id::text, COALESCE(tt.title, ''),
       t.level_id::text, t.ig_id::text, t.org_id::text,
       COALESCE(t.created_by::text, ''), t.created_at,
       COALESCE(t.updated_by::text, ''), t.updated_at
FROM task_list t
LEFT JOIN channel c ON c.id = t.channel_id
LEFT JOIN task_type tt ON tt.id = t.type_id`

var taskColumns = map[string]string{
	"created_at":     "t.created_at",
	"id":             "t.id",
	"hashtag":        "t.hashtag",
	"title":          "t.title",
	"karma":          "t.karma",
	"channel":        "c.name",
	"type":           "tt.title",
	"active":         "t.active",
	"variable_karma": "t.variable_karma",
	"usage_count":    "t.usage_count",
	"created_by":     "t.created_by",
}

func scanTask(row pgx.Row) (core.Task, error) {
	var t core.Task
	err := row.Scan(
		&t.ID, &t.Hashtag, &t.Title, &t.Description, &t.Karma,
		&t.UsageCount, &t.VariableKarma, &t.Active,
		&t.ChannelID, &t.Channel, &t.TypeID, &t.Type,
		&t.LevelID, &t.IGID, &t.OrgID,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedBy, &t.UpdatedAt,
	)
	return t, err
}

func collectTasks(rows pgx.Rows) ([]core.Task, error) {
	defer rows.Close()

	var tasks []core.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return tasks, nil
}

func (s *Store) HashtagExists(ctx context.Context, hashtag string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM task_list WHERE hashtag = $1)`, hashtag,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check hashtag: %w", err)
	}
	return exists, nil
}

func (s *Store) CreateTask(ctx context.Context, t core.Task) error {
	id, err := parseID(t.ID)
	if err != nil {
		return err
	}
	refs, err := taskRefs(t)
	if err != nil {
		return err
	}

	args := []any{id, t.Hashtag, t.Title, t.Description, t.Karma, t.UsageCount, t.VariableKarma, t.Active}
	args = append(args, refs...)
	args = append(args, nullableText(t.CreatedBy), t.CreatedAt, nullableText(t.UpdatedBy), t.UpdatedAt)

	_, err = s.db.Exec(ctx, `
INSERT INTO task_list (
    id, hashtag, title, description, karma, usage_count, variable_karma, active,
    channel_id, type_id, level_id, ig_id, org_id,
    created_by, created_at, updated_by, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`, args...)
	return translate(err, "create task "+t.Hashtag)
}

func (s *Store) UpdateTask(ctx context.Context, t core.Task) error {
	id, err := parseID(t.ID)
	if err != nil {
		return err
	}

	tag, err := s.db.Exec(ctx, `
UPDATE task_list
SET hashtag = $2, title = $3, karma = $4, active = $5, variable_karma = $6,
    usage_count = $7, updated_by = $8, updated_at = $9
WHERE id = $1`,
		id, t.Hashtag, t.Title, t.Karma, t.Active, t.VariableKarma,
		t.UsageCount, nullableText(t.UpdatedBy), t.UpdatedAt,
	)
	if err != nil {
		return translate(err, "update task "+t.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("task %s: %w", t.ID, core.ErrNotFound)
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, id string) (core.Task, error) {
	uid, err := parseID(id)
	if err != nil {
		return core.Task{}, err
	}
	t, err := scanTask(s.db.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, uid))
	return t, translate(err, "task "+id)
}

func (s *Store) AllTasks(ctx context.Context) ([]core.Task, error) {
	rows, err := s.db.Query(ctx, taskSelect+` ORDER BY t.created_at ASC, t.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	return collectTasks(rows)
}

func (s *Store) ListTasks(ctx context.Context, q core.PageQuery) ([]core.Task, int64, error) {
	var wb whereBuilder
	wb.AddSearch(q.Search, "t.hashtag", "t.title")
	where, args := wb.Build()

	var count int64
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM task_list t`+where, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := taskSelect + where + orderClause(q, core.TaskSortKeys, taskColumns, "t.id") + wb.pageClause(q)
	rows, err := s.db.Query(ctx, query, wb.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}
	tasks, err := collectTasks(rows)
	return tasks, count, err
}

// taskRefs parses the channel, type, level, interest group and organization
// ids of t in insert order. Absent optional references stay nil.
func taskRefs(t core.Task) ([]any, error) {
	ids := []*string{&t.ChannelID, &t.TypeID, t.LevelID, t.IGID, t.OrgID}
	refs := make([]any, len(ids))
	for i, id := range ids {
		u, err := optionalID(id)
		if err != nil {
			return nil, err
		}
		if u != nil {
			refs[i] = *u
		}
	}
	return refs, nil
}

// nullableText stores an empty audit id as NULL.
func nullableText(s string) any {
	if s == "" {
		return nil
	}
	return s
}
