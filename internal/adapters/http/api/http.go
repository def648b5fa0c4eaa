// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/stufe/internal/adapters/repository"
	service "github.com/okian/stufe/internal/app"
	"github.com/okian/stufe/internal/domain/competency"
	"github.com/okian/stufe/internal/domain/forecast"
	"github.com/okian/stufe/internal/domain/overview"
	"github.com/okian/stufe/internal/domain/similarity"
	"github.com/okian/stufe/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Session operations hold per-user assessment state.
	CreateSession(ctx context.Context) (*service.Session, error)
	EndSession(ctx context.Context, id string) error
	SubmitAnswers(ctx context.Context, id string, raw map[string]string) ([]string, error)
	SetGlobalTarget(ctx context.Context, id string, target float64) error
	SetDimensionTarget(ctx context.Context, id, code string, target float64) error
	SetAnnotation(ctx context.Context, id, code string, note overview.Annotation) error
	Overview(ctx context.Context, id string) ([]overview.Row, error)

	// Competency operations work against the history store.
	SubmitResponse(ctx context.Context, rec competency.ResponseRecord) ([]float64, bool, error)
	SubmitRequirement(ctx context.Context, req repository.Requirement) (bool, error)
	ClusterDifferences(ctx context.Context, profile string, profileAt time.Time, role string, roleAt time.Time) ([]types.Difference, error)
	ProfileTimeDifferences(ctx context.Context, profile string, from, to time.Time) ([]types.Difference, error)
	RoleTimeDifferences(ctx context.Context, role string, from, to time.Time) ([]types.Difference, error)
	DevelopmentGap(ctx context.Context, profile, role string, from, to time.Time) ([]types.Difference, error)
	Forecast(ctx context.Context, profile, role string, trainings []forecast.Training, trends []forecast.TrendLevel) (service.ForecastResult, error)
	SimilarProfiles(ctx context.Context, profile string, metric similarity.Metric, topN int) ([]types.Match, error)
	SimilarRoles(ctx context.Context, role string, metric similarity.Metric, topN int) ([]types.Match, error)
	Profiles(ctx context.Context) ([]string, error)
	Roles(ctx context.Context) ([]string, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	sessionHandler    *SessionHandler
	competencyHandler *CompetencyHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		sessionHandler:    NewSessionHandler(deps),
		competencyHandler: NewCompetencyHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionHandler.HandleSessions, "sessions"))
	mux.HandleFunc("/sessions/", MetricsMiddleware(s.sessionHandler.HandleSession, "session"))

	mux.HandleFunc("/responses", MetricsMiddleware(s.competencyHandler.HandlePostResponse, "responses"))
	mux.HandleFunc("/requirements", MetricsMiddleware(s.competencyHandler.HandlePostRequirement, "requirements"))
	mux.HandleFunc("/differences", MetricsMiddleware(s.competencyHandler.HandleGetDifferences, "differences"))
	mux.HandleFunc("/differences/profile", MetricsMiddleware(s.competencyHandler.HandleGetProfileTimeDifferences, "differences_profile"))
	mux.HandleFunc("/differences/role", MetricsMiddleware(s.competencyHandler.HandleGetRoleTimeDifferences, "differences_role"))
	mux.HandleFunc("/development", MetricsMiddleware(s.competencyHandler.HandleGetDevelopmentGap, "development"))
	mux.HandleFunc("/forecast", MetricsMiddleware(s.competencyHandler.HandlePostForecast, "forecast"))
	mux.HandleFunc("/similar/profiles", MetricsMiddleware(s.competencyHandler.HandleGetSimilarProfiles, "similar_profiles"))
	mux.HandleFunc("/similar/roles", MetricsMiddleware(s.competencyHandler.HandleGetSimilarRoles, "similar_roles"))
	mux.HandleFunc("/profiles", MetricsMiddleware(s.competencyHandler.HandleGetProfiles, "profiles"))
	mux.HandleFunc("/roles", MetricsMiddleware(s.competencyHandler.HandleGetRoles, "roles"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
