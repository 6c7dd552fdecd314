package core

import (
	"context"
	"fmt"
	"io"
)

// ListTasks returns one page of the task list.
func (s *Service) ListTasks(ctx context.Context, q PageQuery) (Page[Task], error) {
	q = s.page(q)
	tasks, count, err := s.store.ListTasks(ctx, q)
	if err != nil {
		return Page[Task]{}, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return Page[Task]{Data: tasks, Pagination: NewPagination(count, q)}, nil
}

// GetTask returns a task by id.
func (s *Service) GetTask(ctx context.Context, id string) (Task, error) {
	return s.store.GetTask(ctx, id)
}

// CreateTask validates in and stores it as a new active task.
func (s *Service) CreateTask(ctx context.Context, in TaskInput) (Task, error) {
	if err := Validate(in); err != nil {
		return Task{}, err
	}
	caller, err := s.caller(ctx)
	if err != nil {
		return Task{}, err
	}

	exists, err := s.store.HashtagExists(ctx, in.Hashtag)
	if err != nil {
		return Task{}, fmt.Errorf("check hashtag: %w", err)
	}
	if exists {
		return Task{}, ErrHashtagExists
	}

	now := s.now()
	t := Task{
		ID:            s.newID(),
		Hashtag:       in.Hashtag,
		Title:         in.Title,
		Description:   in.Description,
		Karma:         in.Karma,
		UsageCount:    in.UsageCount,
		VariableKarma: in.VariableKarma,
		Active:        in.Active == nil || *in.Active,
		ChannelID:     in.ChannelID,
		TypeID:        in.TypeID,
		LevelID:       in.LevelID,
		IGID:          in.IGID,
		OrgID:         in.OrgID,
		CreatedBy:     caller.UserID,
		CreatedAt:     now,
		UpdatedBy:     caller.UserID,
		UpdatedAt:     now,
	}
	if err := s.store.CreateTask(ctx, t); err != nil {
		return Task{}, fmt.Errorf("create task: %w", err)
	}
	return s.store.GetTask(ctx, t.ID)
}

// UpdateTask applies patch to the task with id.
func (s *Service) UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error) {
	if err := Validate(patch); err != nil {
		return Task{}, err
	}
	caller, err := s.caller(ctx)
	if err != nil {
		return Task{}, err
	}

	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return Task{}, err
	}

	if patch.Hashtag != nil && *patch.Hashtag != t.Hashtag {
		exists, err := s.store.HashtagExists(ctx, *patch.Hashtag)
		if err != nil {
			return Task{}, fmt.Errorf("check hashtag: %w", err)
		}
		if exists {
			return Task{}, ErrHashtagExists
		}
		t.Hashtag = *patch.Hashtag
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Karma != nil {
		t.Karma = *patch.Karma
	}
	if patch.Active != nil {
		t.Active = *patch.Active
	}
	if patch.VariableKarma != nil {
		t.VariableKarma = *patch.VariableKarma
	}
	if patch.UsageCount != nil {
		t.UsageCount = *patch.UsageCount
	}

	return s.saveTask(ctx, t, caller)
}

// DeactivateTask marks the task inactive.
func (s *Service) DeactivateTask(ctx context.Context, id string) (Task, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return Task{}, err
	}
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return Task{}, err
	}
	t.Active = false
	return s.saveTask(ctx, t, caller)
}

func (s *Service) saveTask(ctx context.Context, t Task, caller Identity) (Task, error) {
	t.UpdatedBy = caller.UserID
	t.UpdatedAt = s.now()
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return Task{}, fmt.Errorf("update task %s: %w", t.ID, err)
	}
	return s.store.GetTask(ctx, t.ID)
}

// ExportTasksCSV writes every task as CSV.
func (s *Service) ExportTasksCSV(ctx context.Context, w io.Writer) error {
	tasks, err := s.store.AllTasks(ctx)
	if err != nil {
		return fmt.Errorf("export tasks: %w", err)
	}
	records := make([][]string, len(tasks))
	for i, t := range tasks {
		records[i] = t.csvRecord()
	}
	return writeCSV(w, TaskCSVHeader, records)
}
