package web

// handlers_common.go holds request parsing and download helpers shared by
// the handlers.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/mulearn/dashboard/internal/core"
	"github.com/mulearn/dashboard/internal/logging"
)

// maxJSONBody bounds JSON payloads.
const maxJSONBody = 1 << 20

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parsePageQuery reads pageIndex, perPage, search and sortBy. Sizes are
// clamped by the service.
func parsePageQuery(r *http.Request) core.PageQuery {
	q := r.URL.Query()
	return core.PageQuery{
		Page:    parseIntParam(r, "pageIndex", 1),
		PerPage: parseIntParam(r, "perPage", 0),
		Search:  q.Get("search"),
		SortBy:  q.Get("sortBy"),
	}
}

// decodeJSON decodes a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", core.ErrMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", core.ErrMalformedBody)
	}
	return nil
}

// sendCSV renders a CSV export into memory first so a failed export still
// gets an error envelope, then sends it as a download named filename.csv.
func sendCSV(w http.ResponseWriter, r *http.Request, filename string, export func(io.Writer) error) {
	var buf bytes.Buffer
	if err := export(&buf); err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Warn("csv write failed", "file", filename, "error", err)
	}
}
