// Package forecast fits per-cluster linear trends over yearly competency
// vectors and projects them forward with scenario and trend overlays.
package forecast

import (
	"fmt"
	"sort"
)

// Valid value range of the competency scale; every historical and projected
// value is clamped into it before use.
const (
	scaleMin = 1.0
	scaleMax = 5.0
)

// minObservations is the smallest history an ordinary-least-squares line can
// be fitted on. Anything less is underdetermined and must be rejected.
const minObservations = 2

// Observation is one historical per-cluster vector for a single year.
type Observation struct {
	Year   int
	Values []float64
}

// Projection is one projected (or historical, clamped) per-cluster vector.
type Projection struct {
	Year   int       `json:"year"`
	Values []float64 `json:"values"`
}

// Training is a discrete scenario: a fixed per-cluster effect vector pinned
// to one or more activation years. Once activated, the effect applies to the
// activation year and every later year of the horizon; repeated activations
// accumulate additively.
type Training struct {
	Name        string
	Effects     []float64
	Activations []int
}

// TrendLevel is the 5-point ordinal importance trend of a cluster.
type TrendLevel int

const (
	TrendStrongDecline TrendLevel = iota + 1
	TrendDecline
	TrendStable
	TrendGrowth
	TrendStrongGrowth
)

// trendDeltas maps the ordinal trend scale to its fixed per-year drift.
var trendDeltas = map[TrendLevel]float64{
	TrendStrongDecline: -0.1,
	TrendDecline:       -0.05,
	TrendStable:        0,
	TrendGrowth:        0.05,
	TrendStrongGrowth:  0.1,
}

// Delta returns the per-year drift of a trend level; unknown levels are
// treated as stable.
func (t TrendLevel) Delta() float64 {
	return trendDeltas[t]
}

// Lines holds one fitted univariate regression (year → value) per cluster.
type Lines struct {
	slopes     []float64
	intercepts []float64
}

// Fit computes ordinary-least-squares lines over the history, one per
// cluster dimension. Historical values are clamped into the valid scale
// before fitting. Fewer than two observations cannot determine a line and
// yield ErrInsufficientHistory; a degenerate fit must never masquerade as a
// forecast.
func Fit(history []Observation) (*Lines, error) {
	if len(history) < minObservations {
		return nil, fmt.Errorf("%w: have %d observations, need %d", ErrInsufficientHistory, len(history), minObservations)
	}
	dims := len(history[0].Values)
	for _, obs := range history {
		if len(obs.Values) != dims {
			return nil, fmt.Errorf("%w: observation for %d has %d values, want %d", ErrShapeMismatch, obs.Year, len(obs.Values), dims)
		}
	}

	// All regressions share the same x axis.
	meanYear := 0.0
	for _, obs := range history {
		meanYear += float64(obs.Year)
	}
	meanYear /= float64(len(history))

	denom := 0.0
	for _, obs := range history {
		dx := float64(obs.Year) - meanYear
		denom += dx * dx
	}
	if denom == 0 {
		// Every observation in the same year: as underdetermined as a
		// single point.
		return nil, fmt.Errorf("%w: all observations share one year", ErrInsufficientHistory)
	}

	l := &Lines{
		slopes:     make([]float64, dims),
		intercepts: make([]float64, dims),
	}
	for d := 0; d < dims; d++ {
		meanVal := 0.0
		for _, obs := range history {
			meanVal += clamp(obs.Values[d])
		}
		meanVal /= float64(len(history))

		num := 0.0
		for _, obs := range history {
			num += (float64(obs.Year) - meanYear) * (clamp(obs.Values[d]) - meanVal)
		}
		l.slopes[d] = num / denom
		l.intercepts[d] = meanVal - l.slopes[d]*meanYear
	}
	return l, nil
}

// Project evaluates the fitted lines for the given years, clamping every
// predicted value into the valid scale.
func (l *Lines) Project(years []int) []Projection {
	out := make([]Projection, len(years))
	for i, year := range years {
		values := make([]float64, len(l.slopes))
		for d := range l.slopes {
			values[d] = clamp(l.intercepts[d] + l.slopes[d]*float64(year))
		}
		out[i] = Projection{Year: year, Values: values}
	}
	return out
}

// ApplyTrainings overlays scenario effects onto projections in place. An
// activation in year Y contributes its full effect vector to Y and every
// later projected year; several activations stack.
func ApplyTrainings(projections []Projection, trainings []Training) {
	for _, tr := range trainings {
		for _, activation := range tr.Activations {
			for i := range projections {
				if projections[i].Year < activation {
					continue
				}
				for d := range projections[i].Values {
					if d < len(tr.Effects) {
						projections[i].Values[d] = clamp(projections[i].Values[d] + tr.Effects[d])
					}
				}
			}
		}
	}
}

// ApplyTrend overlays per-cluster importance drift onto projections in
// place. The drift compounds with distance from the present: delta × 1 in
// the first projected year, × 2 in the second, and so on. Projections are
// assumed to be in ascending year order.
func ApplyTrend(projections []Projection, trends []TrendLevel) {
	sort.SliceStable(projections, func(i, j int) bool {
		return projections[i].Year < projections[j].Year
	})
	for i := range projections {
		scale := float64(i + 1)
		for d := range projections[i].Values {
			if d < len(trends) {
				projections[i].Values[d] = clamp(projections[i].Values[d] + trends[d].Delta()*scale)
			}
		}
	}
}

// Horizon returns the consecutive years (start, start+1, ..., end).
func Horizon(start, end int) []int {
	if end < start {
		return nil
	}
	years := make([]int, 0, end-start+1)
	for y := start; y <= end; y++ {
		years = append(years, y)
	}
	return years
}

func clamp(v float64) float64 {
	switch {
	case v < scaleMin:
		return scaleMin
	case v > scaleMax:
		return scaleMax
	default:
		return v
	}
}
