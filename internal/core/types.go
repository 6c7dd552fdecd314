package core

import (
	"context"
	"time"
)

// Role titles recognised by the dashboard.
const (
	RoleAdmin      = "Admin"
	RoleCampusLead = "Campus Lead"
	RoleStudent    = "Student"
	RoleEnabler    = "Enabler"
)

// OrgType is the kind of organization a user or task is linked to.
type OrgType string

const (
	OrgCollege   OrgType = "College"
	OrgCompany   OrgType = "Company"
	OrgCommunity OrgType = "Community"
)

// Channel is a discussion channel tasks are submitted through.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskType groups tasks by kind.
type TaskType struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Level is a learning level a task can belong to.
type Level struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InterestGroup is a named sub-community.
type InterestGroup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Organization is a college, company or community.
type Organization struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Code    string  `json:"code"`
	OrgType OrgType `json:"org_type"`
}

// Task is a persisted task list entry. Hashtag is unique across all tasks.
type Task struct {
	ID            string    `json:"id"`
	Hashtag       string    `json:"hashtag"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Karma         int       `json:"karma"`
	UsageCount    int       `json:"usage_count"`
	VariableKarma bool      `json:"variable_karma"`
	Active        bool      `json:"active"`
	ChannelID     string    `json:"channel_id"`
	Channel       string    `json:"channel"`
	TypeID        string    `json:"type_id"`
	Type          string    `json:"type"`
	LevelID       *string   `json:"level_id"`
	IGID          *string   `json:"ig_id"`
	OrgID         *string   `json:"org_id"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedBy     string    `json:"updated_by"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TaskCSVHeader is the column order of task list exports.
var TaskCSVHeader = []string{
	"id", "hashtag", "title", "description", "karma", "usage_count", "variable_karma",
	"active", "channel", "type", "level_id", "ig_id", "org_id",
	"created_by", "created_at", "updated_by", "updated_at",
}

// Student is one entry of a campus roster.
type Student struct {
	UserID    string    `json:"user_id"`
	MuID      string    `json:"muid"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Karma     int       `json:"karma"`
	Level     string    `json:"level"`
	JoinedAt  time.Time `json:"joined"`
	Rank      int       `json:"rank,omitempty"`
}

// StudentCSVHeader is the column order of campus roster exports.
var StudentCSVHeader = []string{"user_id", "muid", "first_name", "last_name", "email", "karma", "level", "joined"}

// OrgLink is a user's membership in an organization, with college details
// populated only for OrgCollege links.
type OrgLink struct {
	OrgID          string
	Title          string
	OrgType        OrgType
	Department     string
	GraduationYear string
	Country        string
	State          string
	District       string
}

// UserSummary is one row of the admin user listing.
type UserSummary struct {
	ID             string    `json:"id"`
	DiscordID      string    `json:"discord_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Mobile         string    `json:"mobile"`
	Gender         string    `json:"gender"`
	DOB            string    `json:"dob"`
	Admin          bool      `json:"admin"`
	Active         bool      `json:"active"`
	ExistInGuild   bool      `json:"exist_in_guild"`
	CreatedAt      time.Time `json:"created_at"`
	Company        string    `json:"company"`
	College        string    `json:"college"`
	TotalKarma     int       `json:"total_karma"`
	Department     string    `json:"department"`
	GraduationYear string    `json:"graduation_year"`
}

// UserProfile is the editable part of a user plus their links.
type UserProfile struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	Mobile         string
	Gender         string
	DOB            string
	Roles          []string
	Organizations  []OrgLink
	InterestGroups []string
}

// LinkSet is the replacement set of organization or interest group links
// written by EditUser. A nil LinkSet leaves existing links untouched.
type LinkSet struct {
	IDs            []string
	Department     string
	GraduationYear string
}

// UserChanges is the persisted form of a validated user edit.
type UserChanges struct {
	UserID    string
	Fields    map[string]string
	Orgs      *LinkSet
	IGs       *LinkSet
	ActorID   string
	Timestamp time.Time
}

// PageQuery carries list parameters: 1-based page, page size, a free-text
// search term and a sort key ("-karma" sorts descending).
type PageQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
}

// Pagination describes one page of a listing.
type Pagination struct {
	Count      int64 `json:"count"`
	TotalPages int   `json:"totalPages"`
	IsNext     bool  `json:"isNext"`
	IsPrev     bool  `json:"isPrev"`
	NextPage   *int  `json:"nextPage"`
}

// Directory resolves reference entities by their natural keys.
// Each lookup returns ErrNotFound when no entity matches.
type Directory interface {
	ChannelByName(ctx context.Context, name string) (Channel, error)
	TaskTypeByTitle(ctx context.Context, title string) (TaskType, error)
	LevelByName(ctx context.Context, name string) (Level, error)
	InterestGroupByName(ctx context.Context, name string) (InterestGroup, error)
	OrganizationByCode(ctx context.Context, code string) (Organization, error)
}

// TaskWriter is the persistence the importer needs.
type TaskWriter interface {
	HashtagExists(ctx context.Context, hashtag string) (bool, error)
	CreateTask(ctx context.Context, t Task) error
}

// TaskRepository stores task list entries.
type TaskRepository interface {
	TaskWriter
	GetTask(ctx context.Context, id string) (Task, error)
	ListTasks(ctx context.Context, q PageQuery) ([]Task, int64, error)
	AllTasks(ctx context.Context) ([]Task, error)
	UpdateTask(ctx context.Context, t Task) error
}

// CampusRepository reads college membership and rosters.
type CampusRepository interface {
	// CollegeLink returns the first College link of the user.
	CollegeLink(ctx context.Context, userID string) (OrgLink, error)
	Students(ctx context.Context, orgID string, q PageQuery) ([]Student, int64, error)
	AllStudents(ctx context.Context, orgID string) ([]Student, error)
}

// UserRepository reads and edits dashboard users.
type UserRepository interface {
	ListUsers(ctx context.Context, q PageQuery) ([]UserSummary, int64, error)
	UserProfile(ctx context.Context, id string) (UserProfile, error)
	EmailInUse(ctx context.Context, email, excludeUserID string) (bool, error)
	// ApplyUserChanges writes field updates and link replacements atomically.
	ApplyUserChanges(ctx context.Context, c UserChanges) error
}

// Store is the full persistence surface used by Service.
type Store interface {
	Directory
	TaskRepository
	CampusRepository
	UserRepository
}
