package web

// handlers_mutations.go handles requests that change tasks and users.

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mulearn/dashboard/internal/core"
)

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in core.TaskInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	task, err := s.service.CreateTask(r.Context(), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch core.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondError(w, r, err)
		return
	}

	task, err := s.service.UpdateTask(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, task)
}

// handleDeactivateTask soft-deletes a task.
func (s *Server) handleDeactivateTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.service.DeactivateTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, task)
}

func (s *Server) handleEditUser(w http.ResponseWriter, r *http.Request) {
	var edit core.UserEdit
	if err := decodeJSON(w, r, &edit); err != nil {
		respondError(w, r, err)
		return
	}

	view, err := s.service.EditUser(r.Context(), chi.URLParam(r, "id"), edit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, view)
}
