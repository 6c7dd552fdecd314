package memory

import (
	"context"
	"fmt"

	"github.com/mulearn/dashboard/internal/core"
)

var taskSortFields = map[string]sortField[core.Task]{
	"id":             func(t core.Task) any { return t.ID },
	"hashtag":        func(t core.Task) any { return t.Hashtag },
	"title":          func(t core.Task) any { return t.Title },
	"karma":          func(t core.Task) any { return t.Karma },
	"channel":        func(t core.Task) any { return t.Channel },
	"type":           func(t core.Task) any { return t.Type },
	"active":         func(t core.Task) any { return t.Active },
	"variable_karma": func(t core.Task) any { return t.VariableKarma },
	"usage_count":    func(t core.Task) any { return t.UsageCount },
	"created_by":     func(t core.Task) any { return t.CreatedBy },
	"created_at":     func(t core.Task) any { return t.CreatedAt },
}

func (s *Store) HashtagExists(_ context.Context, hashtag string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hashtagTaken(hashtag, ""), nil
}

func (s *Store) hashtagTaken(hashtag, exceptID string) bool {
	for id, t := range s.tasks {
		if t.Hashtag == hashtag && id != exceptID {
			return true
		}
	}
	return false
}

func (s *Store) checkTaskRefs(t core.Task) error {
	if _, ok := s.channels[t.ChannelID]; !ok {
		return fmt.Errorf("channel %s: %w", t.ChannelID, core.ErrInvalidReference)
	}
	if _, ok := s.taskTypes[t.TypeID]; !ok {
		return fmt.Errorf("task type %s: %w", t.TypeID, core.ErrInvalidReference)
	}
	if t.LevelID != nil {
		if _, ok := s.levels[*t.LevelID]; !ok {
			return fmt.Errorf("level %s: %w", *t.LevelID, core.ErrInvalidReference)
		}
	}
	if t.IGID != nil {
		if _, ok := s.igs[*t.IGID]; !ok {
			return fmt.Errorf("interest group %s: %w", *t.IGID, core.ErrInvalidReference)
		}
	}
	if t.OrgID != nil {
		if _, ok := s.orgs[*t.OrgID]; !ok {
			return fmt.Errorf("organization %s: %w", *t.OrgID, core.ErrInvalidReference)
		}
	}
	return nil
}

func (s *Store) CreateTask(_ context.Context, t core.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hashtagTaken(t.Hashtag, "") {
		return fmt.Errorf("task %s: %w", t.Hashtag, core.ErrHashtagExists)
	}
	if err := s.checkTaskRefs(t); err != nil {
		return err
	}
	if _, ok := s.tasks[t.ID]; ok {
		return fmt.Errorf("task %s: duplicate key", t.ID)
	}

	s.tasks[t.ID] = t
	s.taskOrder = append(s.taskOrder, t.ID)
	return nil
}

func (s *Store) UpdateTask(_ context.Context, t core.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[t.ID]; !ok {
		return fmt.Errorf("task %s: %w", t.ID, core.ErrNotFound)
	}
	if s.hashtagTaken(t.Hashtag, t.ID) {
		return fmt.Errorf("task %s: %w", t.Hashtag, core.ErrHashtagExists)
	}
	if err := s.checkTaskRefs(t); err != nil {
		return err
	}
	s.tasks[t.ID] = t
	return nil
}

// withNames fills the display names the listing joins in.
func (s *Store) withNames(t core.Task) core.Task {
	t.Channel = s.channels[t.ChannelID].Name
	t.Type = s.taskTypes[t.TypeID].Title
	return t
}

func (s *Store) GetTask(_ context.Context, id string) (core.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return core.Task{}, fmt.Errorf("task %s: %w", id, core.ErrNotFound)
	}
	return s.withNames(t), nil
}

func (s *Store) allTasks() []core.Task {
	out := make([]core.Task, 0, len(s.taskOrder))
	for _, id := range s.taskOrder {
		out = append(out, s.withNames(s.tasks[id]))
	}
	return out
}

func (s *Store) AllTasks(_ context.Context) ([]core.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allTasks(), nil
}

func (s *Store) ListTasks(_ context.Context, q core.PageQuery) ([]core.Task, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []core.Task
	for _, t := range s.allTasks() {
		if matches(q.Search, t.Hashtag, t.Title) {
			filtered = append(filtered, t)
		}
	}
	sortBy(filtered, q, core.TaskSortKeys, taskSortFields)
	return pageOf(filtered, q), int64(len(filtered)), nil
}
