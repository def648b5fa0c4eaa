// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/stufe/internal/adapters/repository"
	"github.com/okian/stufe/internal/domain/competency"
	"github.com/okian/stufe/internal/domain/forecast"
	"github.com/okian/stufe/internal/domain/model"
	"github.com/okian/stufe/internal/domain/scoring"
	"github.com/okian/stufe/internal/domain/similarity"
	"github.com/okian/stufe/internal/domain/types"
	"github.com/okian/stufe/pkg/logger"
	"github.com/okian/stufe/pkg/metrics"
)

// Service implements the API dependencies for the assessment system.
type Service struct {
	mu sync.RWMutex

	// Core components
	model   *model.Model
	catalog *competency.Catalog
	scorer  *scoring.Engine
	store   repository.Store

	// Session state, keyed by session id
	sessions map[string]*Session

	// Configuration
	modelPath             string
	storePath             string
	cacheTTL              time.Duration
	globalTarget          float64
	fullyReachedThreshold float64
	maxSimilar            int
	horizonYears          int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModelPath sets the maturity-model artifact path. Empty keeps the
// built-in model.
func WithModelPath(path string) Option {
	return func(s *Service) {
		s.modelPath = path
	}
}

// WithStorePath sets the sqlite history database path. Empty keeps the
// in-memory store.
func WithStorePath(path string) Option {
	return func(s *Service) {
		s.storePath = path
	}
}

// WithCacheTTL bounds staleness of cached history reads.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithGlobalTarget sets the default maturity target level.
func WithGlobalTarget(target float64) Option {
	return func(s *Service) {
		if target >= model.MinLevel && target <= model.MaxLevel {
			s.globalTarget = target
		}
	}
}

// WithFullyReachedThreshold sets the level-average at or above which a
// maturity level counts as fully reached.
func WithFullyReachedThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold > 0 && threshold <= 1 {
			s.fullyReachedThreshold = threshold
		}
	}
}

// WithMaxSimilar caps the number of neighbors returned by similarity queries.
func WithMaxSimilar(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSimilar = n
		}
	}
}

// WithHorizonYears sets how many years past the last observation forecasts
// project.
func WithHorizonYears(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.horizonYears = n
		}
	}
}

// WithStore injects a pre-built history store, mostly for tests.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:              make(map[string]*Session),
		cacheTTL:              30 * time.Second,
		globalTarget:          3.0,
		fullyReachedThreshold: 0.99,
		maxSimilar:            similarity.DefaultTopN,
		horizonYears:          5,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting assessment service...")

	if s.model == nil {
		if s.modelPath != "" {
			m, err := model.Load(s.modelPath)
			if err != nil {
				return fmt.Errorf("load model artifact: %w", err)
			}
			s.model = m
			s.logger.Info(ctx, "loaded model artifact", logger.String("path", s.modelPath))
		} else {
			s.model = model.Default()
			s.logger.Info(ctx, "using built-in model")
		}
	}
	s.catalog = competency.DefaultCatalog()
	s.scorer = scoring.New(scoring.WithFullyReachedThreshold(s.fullyReachedThreshold))

	if s.store == nil {
		if s.storePath != "" {
			store, err := repository.NewSQLiteStore(ctx, s.storePath)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			s.store = repository.NewCachedStore(store, repository.WithTTL(s.cacheTTL))
			s.logger.Info(ctx, "using sqlite history store", logger.String("path", s.storePath))
		} else {
			s.store = repository.NewCachedStore(repository.NewMemStore(ctx), repository.WithTTL(s.cacheTTL))
			s.logger.Info(ctx, "using in-memory history store")
		}
	}

	s.started = true
	s.logger.Info(ctx, "assessment service started",
		logger.String("model", s.model.Name),
		logger.Int("dimensions", len(s.model.Dimensions)),
		logger.Int("clusters", s.catalog.Size()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping assessment service...")

	if s.store != nil {
		if closer, ok := s.store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "assessment service stopped")
}

// Model returns the loaded maturity model.
func (s *Service) Model(_ context.Context) *model.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Catalog returns the competency cluster catalog.
func (s *Service) Catalog(_ context.Context) *competency.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// SubmitResponse aggregates a raw competency response into per-cluster
// values and appends the snapshot to the profile's history. Returns the
// aggregated vector alongside whether a new history record was created.
func (s *Service) SubmitResponse(ctx context.Context, rec competency.ResponseRecord) ([]float64, bool, error) {
	values, err := s.catalog.ClusterValues(rec)
	if err != nil {
		return nil, false, err
	}
	metrics.RecordClusterAggregate()

	created, err := s.store.PutSnapshot(ctx, repository.Snapshot{
		Profile: rec.Profile,
		Role:    rec.Role,
		TakenAt: rec.TakenAt,
		Values:  values,
	})
	if err != nil {
		return nil, false, err
	}
	metrics.UpdateHistoryRecords(s.store.Count(ctx))
	return values, created, nil
}

// SubmitRequirement appends a role requirement vector to the role's history.
func (s *Service) SubmitRequirement(ctx context.Context, req repository.Requirement) (bool, error) {
	if len(req.Values) != s.catalog.Size() {
		return false, fmt.Errorf("%w: requirement for %q carries %d values, want %d",
			repository.ErrBadRecord, req.Role, len(req.Values), s.catalog.Size())
	}
	for _, v := range req.Values {
		if v < competency.MinScore || v > competency.MaxScore {
			return false, fmt.Errorf("%w: requirement value %v out of range", repository.ErrBadRecord, v)
		}
	}

	created, err := s.store.PutRequirement(ctx, req)
	if err != nil {
		return false, err
	}
	metrics.UpdateHistoryRecords(s.store.Count(ctx))
	return created, nil
}

// ClusterDifferences compares a profile snapshot against a role requirement,
// each looked up at its own timestamp. Missing history on either side yields
// an empty result, which downstream rendering treats as "no data".
func (s *Service) ClusterDifferences(ctx context.Context, profile string, profileAt time.Time, role string, roleAt time.Time) ([]types.Difference, error) {
	snap, err := s.store.SnapshotAt(ctx, profile, profileAt)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	req, err := s.store.RequirementAt(ctx, role, roleAt)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return competency.Differences(s.catalog.Names(), snap.Values, req.Values), nil
}

// ProfileTimeDifferences compares two snapshots of the same profile.
func (s *Service) ProfileTimeDifferences(ctx context.Context, profile string, from, to time.Time) ([]types.Difference, error) {
	earlier, err := s.store.SnapshotAt(ctx, profile, from)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	later, err := s.store.SnapshotAt(ctx, profile, to)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return competency.Differences(s.catalog.Names(), later.Values, earlier.Values), nil
}

// RoleTimeDifferences compares two requirement vectors of the same role.
func (s *Service) RoleTimeDifferences(ctx context.Context, role string, from, to time.Time) ([]types.Difference, error) {
	earlier, err := s.store.RequirementAt(ctx, role, from)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	later, err := s.store.RequirementAt(ctx, role, to)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return competency.Differences(s.catalog.Names(), later.Values, earlier.Values), nil
}

// DevelopmentGap joins the profile's temporal delta against the role's
// temporal delta over the same period, by cluster identity.
func (s *Service) DevelopmentGap(ctx context.Context, profile, role string, from, to time.Time) ([]types.Difference, error) {
	profileDelta, err := s.ProfileTimeDifferences(ctx, profile, from, to)
	if err != nil {
		return nil, err
	}
	roleDelta, err := s.RoleTimeDifferences(ctx, role, from, to)
	if err != nil {
		return nil, err
	}
	return competency.DevelopmentGap(profileDelta, roleDelta), nil
}

// ForecastResult carries the projected per-year vectors for a profile and
// the role it is compared against, over the same horizon.
type ForecastResult struct {
	Clusters []string              `json:"clusters"`
	Years    []int                 `json:"years"`
	Profile  []forecast.Projection `json:"profile"`
	Role     []forecast.Projection `json:"role"`
}

// Forecast fits linear trends over the profile's and the role's histories
// and projects both over the configured horizon. Trainings overlay the
// profile projection; trend levels overlay the role projection.
func (s *Service) Forecast(ctx context.Context, profile, role string, trainings []forecast.Training, trends []forecast.TrendLevel) (ForecastResult, error) {
	profileHist, err := s.snapshotObservations(ctx, profile)
	if err != nil {
		return ForecastResult{}, err
	}
	roleHist, err := s.requirementObservations(ctx, role)
	if err != nil {
		return ForecastResult{}, err
	}

	profileLines, err := forecast.Fit(profileHist)
	if err != nil {
		metrics.RecordForecastRejected()
		return ForecastResult{}, fmt.Errorf("profile %q: %w", profile, err)
	}
	roleLines, err := forecast.Fit(roleHist)
	if err != nil {
		metrics.RecordForecastRejected()
		return ForecastResult{}, fmt.Errorf("role %q: %w", role, err)
	}

	lastYear := profileHist[len(profileHist)-1].Year
	if ry := roleHist[len(roleHist)-1].Year; ry > lastYear {
		lastYear = ry
	}
	years := forecast.Horizon(lastYear+1, lastYear+s.horizonYears)

	profileProj := profileLines.Project(years)
	roleProj := roleLines.Project(years)
	forecast.ApplyTrainings(profileProj, trainings)
	forecast.ApplyTrend(roleProj, trends)

	metrics.RecordForecast()
	return ForecastResult{
		Clusters: s.catalog.Names(),
		Years:    years,
		Profile:  profileProj,
		Role:     roleProj,
	}, nil
}

// SimilarProfiles ranks other profiles by distance to the given profile's
// latest snapshot. Every historical snapshot of every candidate competes;
// the ranker keeps each profile's nearest one.
func (s *Service) SimilarProfiles(ctx context.Context, profile string, metric similarity.Metric, topN int) ([]types.Match, error) {
	hist, err := s.store.SnapshotHistory(ctx, profile)
	if err != nil {
		return nil, err
	}
	if len(hist) == 0 {
		return nil, nil
	}
	target := hist[len(hist)-1].Values

	profiles, err := s.store.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	var candidates []similarity.Candidate
	for _, p := range profiles {
		if p == profile {
			continue
		}
		snaps, err := s.store.SnapshotHistory(ctx, p)
		if err != nil {
			return nil, err
		}
		for _, snap := range snaps {
			candidates = append(candidates, similarity.Candidate{
				Identity: snap.Profile,
				TakenAt:  snap.TakenAt,
				Values:   snap.Values,
			})
		}
	}

	metrics.RecordSimilarityQuery()
	return similarity.Rank(target, candidates, metric, []string{profile}, s.capTopN(topN)), nil
}

// SimilarRoles ranks other roles by distance to the given role's latest
// requirement vector. Every historical vector of every candidate competes;
// the ranker keeps each role's nearest one.
func (s *Service) SimilarRoles(ctx context.Context, role string, metric similarity.Metric, topN int) ([]types.Match, error) {
	hist, err := s.store.RequirementHistory(ctx, role)
	if err != nil {
		return nil, err
	}
	if len(hist) == 0 {
		return nil, nil
	}
	target := hist[len(hist)-1].Values

	roles, err := s.store.Roles(ctx)
	if err != nil {
		return nil, err
	}
	var candidates []similarity.Candidate
	for _, r := range roles {
		if r == role {
			continue
		}
		reqs, err := s.store.RequirementHistory(ctx, r)
		if err != nil {
			return nil, err
		}
		for _, req := range reqs {
			candidates = append(candidates, similarity.Candidate{
				Identity: req.Role,
				TakenAt:  req.TakenAt,
				Values:   req.Values,
			})
		}
	}

	metrics.RecordSimilarityQuery()
	return similarity.Rank(target, candidates, metric, []string{role}, s.capTopN(topN)), nil
}

// Profiles lists all profile identities with history.
func (s *Service) Profiles(ctx context.Context) ([]string, error) {
	return s.store.Profiles(ctx)
}

// Roles lists all role identities with history.
func (s *Service) Roles(ctx context.Context) ([]string, error) {
	return s.store.Roles(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"sessions":     len(s.sessions),
		"horizonYears": s.horizonYears,
		"maxSimilar":   s.maxSimilar,
	}

	if s.started {
		stats["model"] = s.model.Name
		stats["dimensions"] = len(s.model.Dimensions)
		stats["clusters"] = s.catalog.Size()
		stats["historyRecords"] = s.store.Count(ctx)

		metrics.UpdateActiveSessions(len(s.sessions))
		metrics.UpdateHistoryRecords(s.store.Count(ctx))
	}

	return stats
}

func (s *Service) capTopN(topN int) int {
	if topN <= 0 || topN > s.maxSimilar {
		return s.maxSimilar
	}
	return topN
}

// snapshotObservations reduces a profile's history to one observation per
// year, keeping the latest snapshot of each year.
func (s *Service) snapshotObservations(ctx context.Context, profile string) ([]forecast.Observation, error) {
	hist, err := s.store.SnapshotHistory(ctx, profile)
	if err != nil {
		return nil, err
	}
	obs := make([]forecast.Observation, 0, len(hist))
	for _, snap := range hist {
		year := snap.TakenAt.Year()
		if n := len(obs); n > 0 && obs[n-1].Year == year {
			obs[n-1].Values = snap.Values
			continue
		}
		obs = append(obs, forecast.Observation{Year: year, Values: snap.Values})
	}
	return obs, nil
}

func (s *Service) requirementObservations(ctx context.Context, role string) ([]forecast.Observation, error) {
	hist, err := s.store.RequirementHistory(ctx, role)
	if err != nil {
		return nil, err
	}
	obs := make([]forecast.Observation, 0, len(hist))
	for _, req := range hist {
		year := req.TakenAt.Year()
		if n := len(obs); n > 0 && obs[n-1].Year == year {
			obs[n-1].Values = req.Values
			continue
		}
		obs = append(obs, forecast.Observation{Year: year, Values: req.Values})
	}
	return obs, nil
}
