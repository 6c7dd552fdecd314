package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/mulearn/dashboard/internal/core"
)

var studentSortFields = map[string]sortField[core.Student]{
	"first_name": func(s core.Student) any { return s.FirstName },
	"last_name":  func(s core.Student) any { return s.LastName },
	"email":      func(s core.Student) any { return s.Email },
	"karma":      func(s core.Student) any { return s.Karma },
	"level":      func(s core.Student) any { return s.Level },
	"joined":     func(s core.Student) any { return s.JoinedAt },
}

var userSortFields = map[string]sortField[core.UserSummary]{
	"created_at":      func(u core.UserSummary) any { return u.CreatedAt },
	"first_name":      func(u core.UserSummary) any { return u.FirstName },
	"last_name":       func(u core.UserSummary) any { return u.LastName },
	"email":           func(u core.UserSummary) any { return u.Email },
	"mobile":          func(u core.UserSummary) any { return u.Mobile },
	"total_karma":     func(u core.UserSummary) any { return u.TotalKarma },
	"company":         func(u core.UserSummary) any { return u.Company },
	"college":         func(u core.UserSummary) any { return u.College },
	"department":      func(u core.UserSummary) any { return u.Department },
	"graduation_year": func(u core.UserSummary) any { return u.GraduationYear },
}

// linkView resolves a stored link into its domain form.
func (s *Store) linkView(l orgLink) core.OrgLink {
	org := s.orgs[l.orgID]
	out := core.OrgLink{OrgID: org.ID, Title: org.Title, OrgType: org.OrgType}
	if org.OrgType == core.OrgCollege {
		loc := s.locations[org.ID]
		out.Department = s.departments[l.departmentID]
		out.GraduationYear = l.graduationYear
		out.Country = loc.Country
		out.State = loc.State
		out.District = loc.District
	}
	return out
}

func (s *Store) linksOf(userID string) []core.OrgLink {
	var out []core.OrgLink
	for _, l := range s.orgLinks {
		if l.userID == userID {
			out = append(out, s.linkView(l))
		}
	}
	return out
}

func firstOfType(links []core.OrgLink, t core.OrgType) (core.OrgLink, bool) {
	for _, l := range links {
		if l.OrgType == t {
			return l, true
		}
	}
	return core.OrgLink{}, false
}

// Campus

func (s *Store) CollegeLink(_ context.Context, userID string) (core.OrgLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := firstOfType(s.linksOf(userID), core.OrgCollege)
	if !ok {
		return core.OrgLink{}, core.ErrNotFound
	}
	return link, nil
}

func (s *Store) members(orgID string) []core.Student {
	var out []core.Student
	for _, l := range s.orgLinks {
		if l.orgID != orgID {
			continue
		}
		u, ok := s.users[l.userID]
		if !ok {
			continue
		}
		out = append(out, core.Student{
			UserID:    u.ID,
			MuID:      u.MuID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Karma:     s.karma[u.ID],
			Level:     u.Level,
			JoinedAt:  u.CreatedAt,
		})
	}
	return out
}

func (s *Store) Students(_ context.Context, orgID string, q core.PageQuery) ([]core.Student, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []core.Student
	for _, st := range s.members(orgID) {
		if matches(q.Search, st.FirstName, st.LastName, st.Email, st.MuID) {
			filtered = append(filtered, st)
		}
	}
	sortBy(filtered, q, core.StudentSortKeys, studentSortFields)
	return pageOf(filtered, q), int64(len(filtered)), nil
}

func (s *Store) AllStudents(_ context.Context, orgID string) ([]core.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members(orgID), nil
}

// Users

func (s *Store) summary(u *User) core.UserSummary {
	links := s.linksOf(u.ID)
	out := core.UserSummary{
		ID:           u.ID,
		DiscordID:    u.DiscordID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Mobile:       u.Mobile,
		Gender:       u.Gender,
		DOB:          u.DOB,
		Admin:        u.Admin,
		Active:       u.Active,
		ExistInGuild: u.ExistInGuild,
		CreatedAt:    u.CreatedAt,
		TotalKarma:   s.karma[u.ID],
	}
	if c, ok := firstOfType(links, core.OrgCompany); ok {
		out.Company = c.Title
	}
	if c, ok := firstOfType(links, core.OrgCollege); ok {
		out.College = c.Title
		out.Department = c.Department
		out.GraduationYear = c.GraduationYear
	}
	return out
}

func (s *Store) ListUsers(_ context.Context, q core.PageQuery) ([]core.UserSummary, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []core.UserSummary
	for _, id := range s.userOrder {
		sum := s.summary(s.users[id])
		if matches(q.Search, sum.FirstName, sum.LastName, sum.Email, sum.Mobile, sum.DiscordID) {
			filtered = append(filtered, sum)
		}
	}
	sortBy(filtered, q, core.UserSortKeys, userSortFields)
	return pageOf(filtered, q), int64(len(filtered)), nil
}

func (s *Store) UserProfile(_ context.Context, id string) (core.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return core.UserProfile{}, fmt.Errorf("user %s: %w", id, core.ErrNotFound)
	}

	p := core.UserProfile{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Mobile:        u.Mobile,
		Gender:        u.Gender,
		DOB:           u.DOB,
		Roles:         append([]string(nil), s.roles[id]...),
		Organizations: s.linksOf(id),
	}
	for _, l := range s.igLinks {
		if l.userID == id {
			p.InterestGroups = append(p.InterestGroups, s.igs[l.igID].Name)
		}
	}
	return p, nil
}

func (s *Store) EmailInUse(_ context.Context, email, excludeUserID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, u := range s.users {
		if id != excludeUserID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// ApplyUserChanges validates every reference before mutating anything, so a
// failed edit leaves the user untouched.
func (s *Store) ApplyUserChanges(_ context.Context, c core.UserChanges) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[c.UserID]
	if !ok {
		return fmt.Errorf("user %s: %w", c.UserID, core.ErrNotFound)
	}
	if c.Orgs != nil {
		for _, id := range c.Orgs.IDs {
			if _, ok := s.orgs[id]; !ok {
				return fmt.Errorf("organization %s: %w", id, core.ErrInvalidReference)
			}
		}
		if d := c.Orgs.Department; d != "" {
			if _, ok := s.departments[d]; !ok {
				return fmt.Errorf("department %s: %w", d, core.ErrInvalidReference)
			}
		}
	}
	if c.IGs != nil {
		for _, id := range c.IGs.IDs {
			if _, ok := s.igs[id]; !ok {
				return fmt.Errorf("interest group %s: %w", id, core.ErrInvalidReference)
			}
		}
	}

	updated := *u
	for field, v := range c.Fields {
		switch field {
		case core.FieldFirstName:
			updated.FirstName = v
		case core.FieldLastName:
			updated.LastName = v
		case core.FieldEmail:
			updated.Email = v
		case core.FieldMobile:
			updated.Mobile = v
		case core.FieldGender:
			updated.Gender = v
		case core.FieldDOB:
			updated.DOB = v
		default:
			return fmt.Errorf("unknown user field %q", field)
		}
	}
	*u = updated

	if c.Orgs != nil {
		kept := s.orgLinks[:0]
		for _, l := range s.orgLinks {
			if l.userID != c.UserID {
				kept = append(kept, l)
			}
		}
		for _, id := range c.Orgs.IDs {
			kept = append(kept, orgLink{
				userID: c.UserID, orgID: id, departmentID: c.Orgs.Department,
				graduationYear: c.Orgs.GraduationYear, verified: true,
				createdBy: c.ActorID, createdAt: c.Timestamp,
			})
		}
		s.orgLinks = kept
	}
	if c.IGs != nil {
		kept := s.igLinks[:0]
		for _, l := range s.igLinks {
			if l.userID != c.UserID {
				kept = append(kept, l)
			}
		}
		for _, id := range c.IGs.IDs {
			kept = append(kept, igLink{userID: c.UserID, igID: id, createdBy: c.ActorID, createdAt: c.Timestamp})
		}
		s.igLinks = kept
	}
	return nil
}
