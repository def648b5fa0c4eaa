package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/okian/stufe/internal/domain/answer"
	"github.com/okian/stufe/internal/domain/model"
	"github.com/okian/stufe/internal/domain/overview"
	"github.com/okian/stufe/pkg/logger"
	"github.com/okian/stufe/pkg/metrics"
)

// Session holds one user's assessment state: answers, targets and
// annotations. State lives in memory only and is discarded when the
// session ends; the overview table is recomputed from it on demand.
type Session struct {
	ID        string
	CreatedAt time.Time

	answers answer.Set
	targets overview.Targets
	notes   map[string]overview.Annotation
}

// CreateSession starts a new assessment session against the loaded model.
func (s *Service) CreateSession(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}

	global := s.globalTarget
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		answers:   make(answer.Set),
		targets: overview.Targets{
			Global:       &global,
			PerDimension: make(map[string]float64),
		},
		notes: make(map[string]overview.Annotation),
	}
	s.sessions[sess.ID] = sess
	metrics.UpdateActiveSessions(len(s.sessions))

	s.logger.Debug(ctx, "session created", logger.String("session", sess.ID))
	return sess, nil
}

// EndSession discards a session and all of its state.
func (s *Service) EndSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	metrics.UpdateActiveSessions(len(s.sessions))

	s.logger.Debug(ctx, "session ended", logger.String("session", id))
	return nil
}

// SubmitAnswers decodes raw answer labels and merges them into the session.
// Unrecognized labels degrade to the lowest score; they are logged and
// returned so the caller can surface them, never dropped silently.
func (s *Service) SubmitAnswers(ctx context.Context, id string, raw map[string]string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	var unrecognized []string
	for questionID, label := range raw {
		value, known := answer.Decode(label)
		if !known {
			unrecognized = append(unrecognized, questionID)
			s.logger.Warn(ctx, "unrecognized answer label",
				logger.String("session", id),
				logger.String("question", questionID),
				logger.String("label", label),
			)
		}
		sess.answers[questionID] = value
	}
	return unrecognized, nil
}

// SetGlobalTarget sets the session-wide target level (half-step granularity).
func (s *Service) SetGlobalTarget(_ context.Context, id string, target float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err := validTarget(target); err != nil {
		return err
	}
	sess.targets.Global = &target
	return nil
}

// SetDimensionTarget overrides the target level for one dimension.
func (s *Service) SetDimensionTarget(_ context.Context, id, code string, target float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if _, found := s.model.Dimension(code); !found {
		return fmt.Errorf("%w: %s", ErrUnknownDimension, code)
	}
	if err := validTarget(target); err != nil {
		return err
	}
	sess.targets.PerDimension[code] = target
	return nil
}

// SetAnnotation attaches planning fields to a dimension for this session.
func (s *Service) SetAnnotation(_ context.Context, id, code string, note overview.Annotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if _, found := s.model.Dimension(code); !found {
		return fmt.Errorf("%w: %s", ErrUnknownDimension, code)
	}
	sess.notes[code] = note
	return nil
}

// Overview recomputes the per-dimension gap table for a session.
func (s *Service) Overview(_ context.Context, id string) ([]overview.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	rows := overview.Build(s.model, sess.answers, sess.targets, sess.notes, s.scorer)
	metrics.RecordOverviewBuilt()
	for range rows {
		metrics.RecordDimensionScored()
	}
	return rows, nil
}

// validTarget enforces the 1.0-5.0 range and half-step granularity of
// target levels.
func validTarget(target float64) error {
	if target < model.MinLevel || target > model.MaxLevel {
		return fmt.Errorf("%w: target %v outside %d-%d", ErrInvalidTarget, target, model.MinLevel, model.MaxLevel)
	}
	if steps := target * 2; steps != math.Trunc(steps) {
		return fmt.Errorf("%w: target %v not on a half-step", ErrInvalidTarget, target)
	}
	return nil
}
