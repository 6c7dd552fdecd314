// Package memory implements core.Store in process memory. It backs
// STORE_DRIVER=memory for local development and the HTTP tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mulearn/dashboard/internal/core"
)

// Location places an organization geographically.
type Location struct {
	Country  string
	State    string
	District string
}

// User is a platform member as the memory store keeps it.
type User struct {
	ID           string
	MuID         string
	DiscordID    string
	FirstName    string
	LastName     string
	Email        string
	Mobile       string
	Gender       string
	DOB          string
	Admin        bool
	Active       bool
	ExistInGuild bool
	Level        string
	CreatedAt    time.Time
}

type orgLink struct {
	userID         string
	orgID          string
	departmentID   string
	graduationYear string
	verified       bool
	createdBy      string
	createdAt      time.Time
}

type igLink struct {
	userID    string
	igID      string
	createdBy string
	createdAt time.Time
}

// Store holds every table in maps guarded by one lock.
type Store struct {
	mu sync.RWMutex

	channels    map[string]core.Channel
	taskTypes   map[string]core.TaskType
	levels      map[string]core.Level
	igs         map[string]core.InterestGroup
	orgs        map[string]core.Organization
	locations   map[string]Location
	departments map[string]string

	tasks     map[string]core.Task
	taskOrder []string

	users     map[string]*User
	userOrder []string
	orgLinks  []orgLink
	igLinks   []igLink
	roles     map[string][]string
	karma     map[string]int
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		channels:    make(map[string]core.Channel),
		taskTypes:   make(map[string]core.TaskType),
		levels:      make(map[string]core.Level),
		igs:         make(map[string]core.InterestGroup),
		orgs:        make(map[string]core.Organization),
		locations:   make(map[string]Location),
		departments: make(map[string]string),
		tasks:       make(map[string]core.Task),
		users:       make(map[string]*User),
		roles:       make(map[string][]string),
		karma:       make(map[string]int),
	}
}

var _ core.Store = (*Store)(nil)

// AddChannel registers a channel.
func (s *Store) AddChannel(c core.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[c.ID] = c
}

// AddTaskType registers a task type.
func (s *Store) AddTaskType(t core.TaskType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskTypes[t.ID] = t
}

// AddLevel registers a level.
func (s *Store) AddLevel(l core.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[l.ID] = l
}

// AddInterestGroup registers an interest group.
func (s *Store) AddInterestGroup(ig core.InterestGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.igs[ig.ID] = ig
}

// AddOrganization registers an organization at loc.
func (s *Store) AddOrganization(o core.Organization, loc Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[o.ID] = o
	s.locations[o.ID] = loc
}

// AddDepartment registers a college department.
func (s *Store) AddDepartment(id, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.departments[id] = title
}

// AddUser registers a user.
func (s *Store) AddUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		s.userOrder = append(s.userOrder, u.ID)
	}
	s.users[u.ID] = &u
}

// LinkOrganization adds a membership of user in org.
func (s *Store) LinkOrganization(userID, orgID, departmentID, graduationYear string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return fmt.Errorf("user %s: %w", userID, core.ErrInvalidReference)
	}
	if _, ok := s.orgs[orgID]; !ok {
		return fmt.Errorf("organization %s: %w", orgID, core.ErrInvalidReference)
	}
	s.orgLinks = append(s.orgLinks, orgLink{
		userID: userID, orgID: orgID, departmentID: departmentID,
		graduationYear: graduationYear, verified: true, createdAt: time.Now().UTC(),
	})
	return nil
}

// LinkInterestGroup adds user to ig.
func (s *Store) LinkInterestGroup(userID, igID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.igs[igID]; !ok {
		return fmt.Errorf("interest group %s: %w", igID, core.ErrInvalidReference)
	}
	s.igLinks = append(s.igLinks, igLink{userID: userID, igID: igID, createdAt: time.Now().UTC()})
	return nil
}

// AssignRole gives user a role; the first role assigned is the primary one.
func (s *Store) AssignRole(userID, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[userID] = append(s.roles[userID], role)
}

// AddKarma logs karma earned by user.
func (s *Store) AddKarma(userID string, karma int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.karma[userID] += karma
}

// Ping satisfies the health check.
func (s *Store) Ping(context.Context) error { return nil }
