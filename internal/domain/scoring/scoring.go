// Package scoring computes per-dimension maturity from decoded answers.
package scoring

import (
	"math"

	"github.com/okian/stufe/internal/domain/answer"
	"github.com/okian/stufe/internal/domain/model"
)

// Default scoring constants.
const (
	// defaultFullyReachedThreshold treats a level average at or above this
	// value as fully reached, absorbing floating error at 1.0.
	defaultFullyReachedThreshold = 0.99

	// gridDivisions quantizes maturity to quarter levels.
	gridDivisions = 4
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithFullyReachedThreshold overrides the level average at which a level
// counts as fully reached. Values outside (0,1] are ignored.
func WithFullyReachedThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold > 0 && threshold <= 1 {
			e.fullyReached = threshold
		}
	}
}

// Engine evaluates the gated maturity ladder of a dimension.
type Engine struct {
	fullyReached float64
}

// New creates a scoring engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{
		fullyReached: defaultFullyReachedThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DimensionMaturity converts the answers of a dimension into its Ist-level.
//
// Levels are walked in ascending order. A level's average over its applicable
// scores either counts as fully reached (continue climbing) or becomes the
// fractional remainder (stop: gating forbids higher levels from contributing
// once a level is not fully satisfied). The raw result is always rounded DOWN
// to the quarter-level grid.
//
// Per-question policy, deliberately asymmetric:
//   - unanswered questions score 0.0 and stay in the denominator
//   - not-applicable questions leave the denominator entirely
//
// Returns NaN when level 1 has no applicable questions at all; a dimension
// cannot be assessed if its foundational level has no applicable criteria.
// A level above 1 with no applicable questions ends the ladder early.
// All other inputs degrade to 0.0, never to an error.
func (e *Engine) DimensionMaturity(dim model.Dimension, answers answer.Set) float64 {
	fullyReached := 0
	partial := 0.0

	for _, lvl := range dim.Levels {
		scores := applicableScores(lvl, answers)

		if len(scores) == 0 {
			if lvl.Number == model.MinLevel {
				return math.NaN()
			}
			break
		}

		avg := mean(scores)
		if avg >= e.fullyReached {
			fullyReached++
			continue
		}
		partial = avg
		break
	}

	raw := float64(fullyReached) + partial
	return math.Floor(raw*gridDivisions) / gridDivisions
}

// applicableScores collects the level's scores under the asymmetric
// unanswered/not-applicable policy.
func applicableScores(lvl model.Level, answers answer.Set) []float64 {
	scores := make([]float64, 0, len(lvl.Questions))
	for _, q := range lvl.Questions {
		v, present := answers[q.ID]
		if !present {
			scores = append(scores, 0.0)
			continue
		}
		switch v.Kind {
		case answer.KindNotApplicable:
			// excluded from the denominator
		case answer.KindApplicable:
			scores = append(scores, v.Score)
		default:
			scores = append(scores, 0.0)
		}
	}
	return scores
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
