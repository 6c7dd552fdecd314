package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mulearn/dashboard/internal/core"
)

// importField is the multipart field carrying the task list.
const importField = "task_list"

// handleImportTasks imports an uploaded CSV or XLSX task list. Per-row
// failures are reported in the Failed list with a 200. Batch failures such
// as a missing file or column are errors, and an import that stops partway
// still reports the rows it got through.
func (s *Server) handleImportTasks(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respondError(w, r, fmt.Errorf("%w: limit %d bytes", core.ErrFileTooLarge, maxSize))
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", core.ErrNoFile, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(importField)
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", core.ErrNoFile, err))
		return
	}
	defer file.Close()

	outcome, err := s.service.ImportTasks(r.Context(), header.Filename, file)
	if err != nil {
		respondImportError(w, r, err, outcome)
		return
	}
	respondJSON(w, r, http.StatusOK, outcome)
}
