package web

// errors.go renders every response in the dashboard envelope:
//
//	{"hasError": false, "statusCode": 200, "message": {"general": []}, "response": {...}}
//
// Errors are mapped through core.MapError. The technical error is logged
// with the request id; only the user message reaches the client.

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"

	"github.com/mulearn/dashboard/internal/core"
	"github.com/mulearn/dashboard/internal/logging"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	HasError   bool                `json:"hasError"`
	StatusCode int                 `json:"statusCode"`
	Message    map[string][]string `json:"message"`
	Response   any                 `json:"response"`
}

// respondJSON writes v as a successful envelope.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	if v == nil {
		v = struct{}{}
	}
	writeEnvelope(w, r, Envelope{
		StatusCode: status,
		Message:    map[string][]string{"general": {}},
		Response:   v,
	})
}

// respondError logs err and writes the mapped user message. Validation
// failures also list each field's problem under its JSON name.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, core.NewUserError(err), nil)
}

// respondImportError reports an import that stopped partway. Rows handled
// before the failure are returned as Success and Failed next to the code and
// action, since the accepted ones are already persisted.
func respondImportError(w http.ResponseWriter, r *http.Request, err error, outcome core.ImportOutcome) {
	if outcome.Total() == 0 {
		respondError(w, r, err)
		return
	}
	accepted, rejected := outcome.Accepted, outcome.Rejected
	if accepted == nil {
		accepted = []*core.ImportRow{}
	}
	if rejected == nil {
		rejected = []*core.ImportRow{}
	}
	writeError(w, r, core.NewUserError(err), map[string]any{
		"Success": accepted,
		"Failed":  rejected,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, ue *core.UserError, extra map[string]any) {
	msg := ue.User
	status := msg.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	log := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", ue.Technical.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		log.Error("request error", attrs...)
	} else {
		log.Warn("request rejected", attrs...)
	}

	message := map[string][]string{"general": {msg.Message}}
	var verr *core.ValidationError
	if errors.As(ue, &verr) {
		for field, problem := range verr.Fields {
			message[field] = []string{problem}
		}
	}

	response := map[string]any{"code": msg.Code, "action": msg.Action}
	maps.Copy(response, extra)

	writeEnvelope(w, r, Envelope{
		HasError:   true,
		StatusCode: status,
		Message:    message,
		Response:   response,
	})
}

func writeEnvelope(w http.ResponseWriter, r *http.Request, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
