package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/stufe/internal/adapters/repository"
	"github.com/okian/stufe/internal/domain/competency"
	"github.com/okian/stufe/internal/domain/forecast"
	"github.com/okian/stufe/internal/domain/similarity"
	"github.com/okian/stufe/internal/domain/types"
)

// CompetencyHandler handles the history-backed competency endpoints.
type CompetencyHandler struct {
	deps Dependencies
}

// NewCompetencyHandler creates a new competency handler.
func NewCompetencyHandler(deps Dependencies) *CompetencyHandler {
	return &CompetencyHandler{deps: deps}
}

type responseRequest struct {
	Profile string             `json:"profile"`
	Role    string             `json:"role"`
	TakenAt string             `json:"taken_at"`
	Scores  map[string]float64 `json:"scores"`
}

type responseAck struct {
	Created bool      `json:"created"`
	Values  []float64 `json:"values"`
}

type requirementRequest struct {
	Role    string    `json:"role"`
	TakenAt string    `json:"taken_at"`
	Values  []float64 `json:"values"`
}

type requirementAck struct {
	Created bool `json:"created"`
}

type forecastRequest struct {
	Profile   string             `json:"profile"`
	Role      string             `json:"role"`
	Trainings []forecastTraining `json:"trainings,omitempty"`
	Trends    []int              `json:"trends,omitempty"`
}

type forecastTraining struct {
	Name        string    `json:"name"`
	Effects     []float64 `json:"effects"`
	Activations []int     `json:"activations"`
}

// HandlePostResponse handles POST /responses requests.
func (h *CompetencyHandler) HandlePostResponse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req responseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if strings.TrimSpace(req.Profile) == "" || len(req.Scores) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	takenAt, err := parseTime(req.TakenAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_timestamp", err)
		return
	}

	values, created, err := h.deps.SubmitResponse(r.Context(), competency.ResponseRecord{
		Profile: req.Profile,
		Role:    req.Role,
		TakenAt: takenAt,
		Scores:  req.Scores,
	})
	if err != nil {
		writeCompetencyError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, responseAck{Created: created, Values: values})
}

// HandlePostRequirement handles POST /requirements requests.
func (h *CompetencyHandler) HandlePostRequirement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req requirementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if strings.TrimSpace(req.Role) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	takenAt, err := parseTime(req.TakenAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_timestamp", err)
		return
	}

	created, err := h.deps.SubmitRequirement(r.Context(), repository.Requirement{
		Role:    req.Role,
		TakenAt: takenAt,
		Values:  req.Values,
	})
	if err != nil {
		writeCompetencyError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, requirementAck{Created: created})
}

// HandleGetDifferences handles GET /differences requests comparing a
// profile snapshot against a role requirement.
func (h *CompetencyHandler) HandleGetDifferences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	profileAt, err := parseTime(q.Get("profile_at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_timestamp", err)
		return
	}
	roleAt, err := parseTime(q.Get("role_at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_timestamp", err)
		return
	}

	diffs, err := h.deps.ClusterDifferences(r.Context(), q.Get("profile"), profileAt, q.Get("role"), roleAt)
	if err != nil {
		writeCompetencyError(w, err)
		return
	}
	writeDifferences(w, diffs)
}

// HandleGetProfileTimeDifferences handles GET /differences/profile requests.
func (h *CompetencyHandler) HandleGetProfileTimeDifferences(w http.ResponseWriter, r *http.Request) {
	h.handleTimeDifferences(w, r, "profile", h.deps.ProfileTimeDifferences)
}

// HandleGetRoleTimeDifferences handles GET /differences/role requests.
func (h *CompetencyHandler) HandleGetRoleTimeDifferences(w http.ResponseWriter, r *http.Request) {
	h.handleTimeDifferences(w, r, "role", h.deps.RoleTimeDifferences)
}

func (h *CompetencyHandler) handleTimeDifferences(
	w http.ResponseWriter,
	r *http.Request,
	identityParam string,
	diff func(ctx context.Context, identity string, from, to time.Time) ([]types.Difference, error),
) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	from, err := parseTime(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_timestamp", err)
		return
	}
	to, err := parseTime(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_timestamp", err)
		return
	}

	diffs, err := diff(r.Context(), q.Get(identityParam), from, to)
	if err != nil {
		writeCompetencyError(w, err)
		return
	}
	writeDifferences(w, diffs)
}

// HandleGetDevelopmentGap handles GET /development requests.
func (h *CompetencyHandler) HandleGetDevelopmentGap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	from, err := parseTime(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_timestamp", err)
		return
	}
	to, err := parseTime(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_timestamp", err)
		return
	}

	diffs, err := h.deps.DevelopmentGap(r.Context(), q.Get("profile"), q.Get("role"), from, to)
	if err != nil {
		writeCompetencyError(w, err)
		return
	}
	writeDifferences(w, diffs)
}

// HandlePostForecast handles POST /forecast requests.
func (h *CompetencyHandler) HandlePostForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req forecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	trainings := make([]forecast.Training, 0, len(req.Trainings))
	for _, t := range req.Trainings {
		trainings = append(trainings, forecast.Training{
			Name:        t.Name,
			Effects:     t.Effects,
			Activations: t.Activations,
		})
	}
	trends := make([]forecast.TrendLevel, 0, len(req.Trends))
	for _, t := range req.Trends {
		trends = append(trends, forecast.TrendLevel(t))
	}

	result, err := h.deps.Forecast(r.Context(), req.Profile, req.Role, trainings, trends)
	if err != nil {
		writeCompetencyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleGetSimilarProfiles handles GET /similar/profiles requests.
func (h *CompetencyHandler) HandleGetSimilarProfiles(w http.ResponseWriter, r *http.Request) {
	h.handleSimilar(w, r, "profile", h.deps.SimilarProfiles)
}

// HandleGetSimilarRoles handles GET /similar/roles requests.
func (h *CompetencyHandler) HandleGetSimilarRoles(w http.ResponseWriter, r *http.Request) {
	h.handleSimilar(w, r, "role", h.deps.SimilarRoles)
}

func (h *CompetencyHandler) handleSimilar(
	w http.ResponseWriter,
	r *http.Request,
	identityParam string,
	rank func(ctx context.Context, identity string, metric similarity.Metric, topN int) ([]types.Match, error),
) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	identity := q.Get(identityParam)
	if identity == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	metric, err := parseMetric(q.Get("metric"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_metric", err)
		return
	}

	topN := 0
	if raw := q.Get("top_n"); raw != "" {
		topN, err = strconv.Atoi(raw)
		if err != nil || topN < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
	}

	matches, err := rank(r.Context(), identity, metric, topN)
	if err != nil {
		writeCompetencyError(w, err)
		return
	}
	if matches == nil {
		matches = []types.Match{}
	}
	writeJSON(w, http.StatusOK, matches)
}

// HandleGetProfiles handles GET /profiles requests.
func (h *CompetencyHandler) HandleGetProfiles(w http.ResponseWriter, r *http.Request) {
	h.handleIdentities(w, r, h.deps.Profiles)
}

// HandleGetRoles handles GET /roles requests.
func (h *CompetencyHandler) HandleGetRoles(w http.ResponseWriter, r *http.Request) {
	h.handleIdentities(w, r, h.deps.Roles)
}

func (h *CompetencyHandler) handleIdentities(
	w http.ResponseWriter,
	r *http.Request,
	list func(ctx context.Context) ([]string, error),
) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	identities, err := list(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if identities == nil {
		identities = []string{}
	}
	writeJSON(w, http.StatusOK, identities)
}

func writeDifferences(w http.ResponseWriter, diffs []types.Difference) {
	if diffs == nil {
		diffs = []types.Difference{}
	}
	writeJSON(w, http.StatusOK, diffs)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, errors.New("invalid timestamp; must be RFC3339")
	}
	return t, nil
}

func parseMetric(raw string) (similarity.Metric, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "euclidean":
		return similarity.Euclidean, nil
	case "manhattan":
		return similarity.Manhattan, nil
	default:
		return 0, errors.New("unknown metric; use euclidean or manhattan")
	}
}

// writeCompetencyError translates domain errors into HTTP statuses.
func writeCompetencyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, competency.ErrScoreOutOfRange),
		errors.Is(err, competency.ErrUnknownCluster),
		errors.Is(err, competency.ErrEmptyCluster),
		errors.Is(err, repository.ErrBadRecord):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, forecast.ErrInsufficientHistory),
		errors.Is(err, forecast.ErrShapeMismatch):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_data", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
