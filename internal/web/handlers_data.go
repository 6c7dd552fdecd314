package web

// handlers_data.go serves the read-only listings and CSV exports.

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mulearn/dashboard/internal/core"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.ListTasks(r.Context(), parsePageQuery(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, page)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.service.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, task)
}

func (s *Server) handleExportTasks(w http.ResponseWriter, r *http.Request) {
	sendCSV(w, r, core.TaskExportName, func(out io.Writer) error {
		return s.service.ExportTasksCSV(r.Context(), out)
	})
}

func (s *Server) handleCampusDetails(w http.ResponseWriter, r *http.Request) {
	details, err := s.service.CampusDetails(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, details)
}

func (s *Server) handleStudentRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := s.service.StudentRoster(r.Context(), parsePageQuery(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, roster)
}

func (s *Server) handleExportStudents(w http.ResponseWriter, r *http.Request) {
	sendCSV(w, r, core.StudentExportName, func(out io.Writer) error {
		return s.service.ExportStudentsCSV(r.Context(), out)
	})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.ListUsers(r.Context(), parsePageQuery(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, page)
}

func (s *Server) handleGetUserEdit(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.GetUserEdit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, view)
}
