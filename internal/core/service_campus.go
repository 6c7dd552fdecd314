package core

import (
	"context"
	"fmt"
	"io"
)

// collegeOf returns the caller's first college link.
func (s *Service) collegeOf(ctx context.Context) (OrgLink, error) {
	caller, err := s.caller(ctx)
	if err != nil {
		return OrgLink{}, err
	}
	link, err := s.store.CollegeLink(ctx, caller.UserID)
	if err != nil {
		return OrgLink{}, fmt.Errorf("college of %s: %w", caller.UserID, err)
	}
	return link, nil
}

// CampusDetails describes the caller's college.
func (s *Service) CampusDetails(ctx context.Context) (CollegeView, error) {
	link, err := s.collegeOf(ctx)
	if err != nil {
		return CollegeView{}, err
	}
	return NewCollegeView(link), nil
}

// StudentRoster returns one page of the caller's college members, ranked
// by karma within the page.
func (s *Service) StudentRoster(ctx context.Context, q PageQuery) (Page[Student], error) {
	link, err := s.collegeOf(ctx)
	if err != nil {
		return Page[Student]{}, err
	}

	q = s.page(q)
	students, count, err := s.store.Students(ctx, link.OrgID, q)
	if err != nil {
		return Page[Student]{}, fmt.Errorf("list students: %w", err)
	}
	return Page[Student]{Data: RankByKarma(students), Pagination: NewPagination(count, q)}, nil
}

// ExportStudentsCSV writes every member of the caller's college as CSV.
func (s *Service) ExportStudentsCSV(ctx context.Context, w io.Writer) error {
	link, err := s.collegeOf(ctx)
	if err != nil {
		return err
	}
	students, err := s.store.AllStudents(ctx, link.OrgID)
	if err != nil {
		return fmt.Errorf("export students: %w", err)
	}
	records := make([][]string, len(students))
	for i, st := range students {
		records[i] = st.csvRecord()
	}
	return writeCSV(w, StudentCSVHeader, records)
}
