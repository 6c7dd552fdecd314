package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/mulearn/dashboard/internal/logging"
)

// Editable user fields, keyed as in UserChanges.Fields.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldMobile    = "mobile"
	FieldGender    = "gender"
	FieldDOB       = "dob"
)

// UserEditView is what an admin sees before editing a user.
type UserEditView struct {
	UserID         string             `json:"user_id"`
	FirstName      string             `json:"first_name"`
	LastName       string             `json:"last_name"`
	Email          string             `json:"email"`
	Mobile         string             `json:"mobile"`
	Gender         string             `json:"gender"`
	DOB            string             `json:"dob"`
	Role           *string            `json:"role"`
	Organizations  []OrganizationView `json:"organizations"`
	InterestGroups []string           `json:"interest_groups"`
}

// ListUsers returns one page of the admin user listing.
func (s *Service) ListUsers(ctx context.Context, q PageQuery) (Page[UserSummary], error) {
	q = s.page(q)
	users, count, err := s.store.ListUsers(ctx, q)
	if err != nil {
		return Page[UserSummary]{}, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []UserSummary{}
	}
	return Page[UserSummary]{Data: users, Pagination: NewPagination(count, q)}, nil
}

// GetUserEdit returns the edit view of user id.
func (s *Service) GetUserEdit(ctx context.Context, id string) (UserEditView, error) {
	p, err := s.store.UserProfile(ctx, id)
	if err != nil {
		return UserEditView{}, err
	}
	return newUserEditView(p), nil
}

func newUserEditView(p UserProfile) UserEditView {
	v := UserEditView{
		UserID:         p.ID,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Mobile:         p.Mobile,
		Gender:         p.Gender,
		DOB:            p.DOB,
		InterestGroups: p.InterestGroups,
	}
	if v.InterestGroups == nil {
		v.InterestGroups = []string{}
	}

	// Only the first role is shown, and only when it is a member role.
	if len(p.Roles) > 0 && (p.Roles[0] == RoleStudent || p.Roles[0] == RoleEnabler) {
		role := p.Roles[0]
		v.Role = &role
	}

	for _, link := range p.Organizations {
		v.Organizations = append(v.Organizations, NewOrganizationView(link))
	}
	return v
}

// EditUser applies edit to user id. Field updates and link replacements are
// written in one transaction.
func (s *Service) EditUser(ctx context.Context, id string, edit UserEdit) (UserEditView, error) {
	if edit.Email != nil {
		email := strings.TrimSpace(*edit.Email)
		edit.Email = &email
	}
	if err := Validate(edit); err != nil {
		return UserEditView{}, err
	}
	caller, err := s.caller(ctx)
	if err != nil {
		return UserEditView{}, err
	}

	if _, err := s.store.UserProfile(ctx, id); err != nil {
		return UserEditView{}, err
	}

	if edit.Email != nil {
		inUse, err := s.store.EmailInUse(ctx, *edit.Email, id)
		if err != nil {
			return UserEditView{}, fmt.Errorf("check email: %w", err)
		}
		if inUse {
			return UserEditView{}, ErrEmailInUse
		}
	}

	changes := UserChanges{
		UserID:    id,
		Fields:    make(map[string]string),
		ActorID:   caller.UserID,
		Timestamp: s.now(),
	}
	setField(changes.Fields, FieldFirstName, edit.FirstName)
	setField(changes.Fields, FieldLastName, edit.LastName)
	setField(changes.Fields, FieldEmail, edit.Email)
	setField(changes.Fields, FieldMobile, edit.Mobile)
	setField(changes.Fields, FieldGender, edit.Gender)
	setField(changes.Fields, FieldDOB, edit.DOB)

	if edit.Orgs.Present {
		changes.Orgs = &LinkSet{
			IDs:            dedupe(edit.Orgs.IDs),
			Department:     deref(edit.Department),
			GraduationYear: deref(edit.GraduationYear),
		}
	}
	if edit.IGs.Present {
		changes.IGs = &LinkSet{IDs: dedupe(edit.IGs.IDs)}
	}

	if err := s.store.ApplyUserChanges(ctx, changes); err != nil {
		return UserEditView{}, fmt.Errorf("edit user %s: %w", id, err)
	}

	logging.FromContext(ctx).Info("user edited",
		"target_user", id,
		"fields", sortedKeys(changes.Fields),
		"orgs_replaced", changes.Orgs != nil,
		"igs_replaced", changes.IGs != nil,
	)

	return s.GetUserEdit(ctx, id)
}

func setField(fields map[string]string, key string, v *string) {
	if v != nil {
		fields[key] = *v
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
