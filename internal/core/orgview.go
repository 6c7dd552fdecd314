package core

// OrganizationView is the rendering of one organization link. The concrete
// type depends on the organization's type.
type OrganizationView interface {
	Kind() OrgType
}

// CollegeView adds the academic details only colleges carry.
type CollegeView struct {
	Title          string  `json:"title"`
	OrgType        OrgType `json:"org_type"`
	Department     string  `json:"department"`
	GraduationYear string  `json:"graduation_year"`
	Country        string  `json:"country"`
	State          string  `json:"state"`
	District       string  `json:"district"`
}

func (CollegeView) Kind() OrgType { return OrgCollege }

// CompanyView shows a company link.
type CompanyView struct {
	Title   string  `json:"title"`
	OrgType OrgType `json:"org_type"`
}

func (CompanyView) Kind() OrgType { return OrgCompany }

// CommunityView shows a community link.
type CommunityView struct {
	Title   string  `json:"title"`
	OrgType OrgType `json:"org_type"`
}

func (CommunityView) Kind() OrgType { return OrgCommunity }

// NewOrganizationView picks the view for link by its org type. Unknown
// types render as communities.
func NewOrganizationView(link OrgLink) OrganizationView {
	switch link.OrgType {
	case OrgCollege:
		return NewCollegeView(link)
	case OrgCompany:
		return CompanyView{Title: link.Title, OrgType: link.OrgType}
	default:
		return CommunityView{Title: link.Title, OrgType: link.OrgType}
	}
}

// NewCollegeView renders link with its academic details.
func NewCollegeView(link OrgLink) CollegeView {
	return CollegeView{
		Title:          link.Title,
		OrgType:        link.OrgType,
		Department:     link.Department,
		GraduationYear: link.GraduationYear,
		Country:        link.Country,
		State:          link.State,
		District:       link.District,
	}
}
