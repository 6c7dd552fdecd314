package memory

import (
	"time"

	"github.com/mulearn/dashboard/internal/core"
)

// Fixed ids of the demo data loaded by Seed.
const (
	SeedAdminID    = "00000000-0000-0000-0000-00000000a001"
	SeedLeadID     = "00000000-0000-0000-0000-00000000a002"
	SeedStudentID  = "00000000-0000-0000-0000-00000000a003"
	SeedStudent2ID = "00000000-0000-0000-0000-00000000a004"
	SeedCollegeID  = "00000000-0000-0000-0000-00000000c001"
	SeedCompanyID  = "00000000-0000-0000-0000-00000000c002"
	SeedDeptID     = "00000000-0000-0000-0000-00000000d001"
	SeedIGID       = "00000000-0000-0000-0000-00000000e001"
)

// Seed loads a small, consistent data set for local development: the
// reference entities a task import needs, a college with a campus lead and
// two students, and an admin.
func Seed(s *Store) {
	s.AddChannel(core.Channel{ID: "00000000-0000-0000-0000-00000000b001", Name: "general"})
	s.AddChannel(core.Channel{ID: "00000000-0000-0000-0000-00000000b002", Name: "web-dev"})
	s.AddTaskType(core.TaskType{ID: "00000000-0000-0000-0000-00000000f001", Title: "Event"})
	s.AddTaskType(core.TaskType{ID: "00000000-0000-0000-0000-00000000f002", Title: "Learning"})
	s.AddLevel(core.Level{ID: "00000000-0000-0000-0000-000000001001", Name: "Level 1"})
	s.AddLevel(core.Level{ID: "00000000-0000-0000-0000-000000001002", Name: "Level 2"})
	s.AddInterestGroup(core.InterestGroup{ID: SeedIGID, Name: "Web Development"})

	s.AddOrganization(
		core.Organization{ID: SeedCollegeID, Title: "Model Engineering College", Code: "MEC", OrgType: core.OrgCollege},
		Location{Country: "India", State: "Kerala", District: "Ernakulam"},
	)
	s.AddOrganization(
		core.Organization{ID: SeedCompanyID, Title: "Acme Labs", Code: "ACME", OrgType: core.OrgCompany},
		Location{Country: "India", State: "Kerala", District: "Thiruvananthapuram"},
	)
	s.AddDepartment(SeedDeptID, "Computer Science")

	joined := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	s.AddUser(User{ID: SeedAdminID, MuID: "admin@mulearn", FirstName: "Ada", LastName: "Admin",
		Email: "admin@example.com", Admin: true, Active: true, CreatedAt: joined})
	s.AddUser(User{ID: SeedLeadID, MuID: "lead@mulearn", FirstName: "Lena", LastName: "Lead",
		Email: "lead@example.com", Active: true, Level: "Level 2", CreatedAt: joined})
	s.AddUser(User{ID: SeedStudentID, MuID: "sam@mulearn", FirstName: "Sam", LastName: "Student",
		Email: "sam@example.com", Active: true, Level: "Level 1", CreatedAt: joined.AddDate(0, 1, 0)})
	s.AddUser(User{ID: SeedStudent2ID, MuID: "bea@mulearn", FirstName: "Bea", LastName: "Student",
		Email: "bea@example.com", Active: true, Level: "Level 2", CreatedAt: joined.AddDate(0, 2, 0)})

	s.AssignRole(SeedAdminID, core.RoleAdmin)
	s.AssignRole(SeedLeadID, core.RoleCampusLead)
	s.AssignRole(SeedStudentID, core.RoleStudent)
	s.AssignRole(SeedStudent2ID, core.RoleStudent)

	for _, id := range []string{SeedLeadID, SeedStudentID, SeedStudent2ID} {
		_ = s.LinkOrganization(id, SeedCollegeID, SeedDeptID, "2025")
	}
	_ = s.LinkInterestGroup(SeedStudentID, SeedIGID)

	s.AddKarma(SeedLeadID, 300)
	s.AddKarma(SeedStudentID, 120)
	s.AddKarma(SeedStudent2ID, 450)
}
