package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/stufe/internal/app"
	"github.com/okian/stufe/internal/domain/overview"
)

// SessionHandler handles the session-scoped assessment endpoints.
type SessionHandler struct {
	deps Dependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps Dependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

type sessionResponse struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
}

type answersRequest struct {
	Answers map[string]string `json:"answers"`
}

type answersResponse struct {
	Accepted     int      `json:"accepted"`
	Unrecognized []string `json:"unrecognized,omitempty"`
}

type targetRequest struct {
	Target float64 `json:"target"`
}

// HandleSessions handles POST /sessions requests.
func (h *SessionHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	sess, err := h.deps.CreateSession(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// HandleSession dispatches /sessions/{id}[/...] requests.
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/sessions/")
	parts := strings.SplitN(rest, "/", 3)
	id := parts[0]
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodDelete {
			http.NotFound(w, r)
			return
		}
		h.endSession(w, r, id)
		return
	}

	switch parts[1] {
	case "answers":
		h.submitAnswers(w, r, id)
	case "target":
		h.setGlobalTarget(w, r, id)
	case "targets":
		if len(parts) < 3 || parts[2] == "" {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		h.setDimensionTarget(w, r, id, parts[2])
	case "annotations":
		if len(parts) < 3 || parts[2] == "" {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		h.setAnnotation(w, r, id, parts[2])
	case "overview":
		h.getOverview(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionHandler) endSession(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.deps.EndSession(r.Context(), id); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) submitAnswers(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req answersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Answers) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	unrecognized, err := h.deps.SubmitAnswers(r.Context(), id, req.Answers)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answersResponse{
		Accepted:     len(req.Answers),
		Unrecognized: unrecognized,
	})
}

func (h *SessionHandler) setGlobalTarget(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := h.deps.SetGlobalTarget(r.Context(), id, req.Target); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) setDimensionTarget(w http.ResponseWriter, r *http.Request, id, code string) {
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := h.deps.SetDimensionTarget(r.Context(), id, code, req.Target); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) setAnnotation(w http.ResponseWriter, r *http.Request, id, code string) {
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var note overview.Annotation
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := h.deps.SetAnnotation(r.Context(), id, code, note); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) getOverview(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rows, err := h.deps.Overview(r.Context(), id)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// writeSessionError translates service errors into HTTP statuses.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrUnknownDimension),
		errors.Is(err, service.ErrInvalidTarget):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
