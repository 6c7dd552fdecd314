package memory

import (
	"context"

	"github.com/mulearn/dashboard/internal/core"
)

func findBy[T any](m map[string]T, match func(T) bool) (T, error) {
	for _, v := range m {
		if match(v) {
			return v, nil
		}
	}
	var zero T
	return zero, core.ErrNotFound
}

func (s *Store) ChannelByName(_ context.Context, name string) (core.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findBy(s.channels, func(c core.Channel) bool { return c.Name == name })
}

func (s *Store) TaskTypeByTitle(_ context.Context, title string) (core.TaskType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findBy(s.taskTypes, func(t core.TaskType) bool { return t.Title == title })
}

func (s *Store) LevelByName(_ context.Context, name string) (core.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findBy(s.levels, func(l core.Level) bool { return l.Name == name })
}

func (s *Store) InterestGroupByName(_ context.Context, name string) (core.InterestGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findBy(s.igs, func(ig core.InterestGroup) bool { return ig.Name == name })
}

func (s *Store) OrganizationByCode(_ context.Context, code string) (core.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findBy(s.orgs, func(o core.Organization) bool { return o.Code == code })
}
