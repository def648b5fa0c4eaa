// Package overview joins maturity scores with targets into the per-dimension
// gap table presented to users.
package overview

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/okian/stufe/internal/domain/answer"
	"github.com/okian/stufe/internal/domain/model"
	"github.com/okian/stufe/internal/domain/scoring"
)

// Annotation carries user-supplied planning fields attached to a dimension.
// They pass through the builder unchanged.
type Annotation struct {
	Priority  string `json:"priority,omitempty"`
	Action    string `json:"action,omitempty"`
	Timeframe string `json:"timeframe,omitempty"`
}

// Targets resolves the Soll-level of a dimension. Resolution order:
// per-dimension override, then global target, then the dimension default.
type Targets struct {
	// Global applies to every dimension without an override; nil means
	// "fall back to each dimension's default target".
	Global *float64

	// PerDimension overrides by dimension code.
	PerDimension map[string]float64
}

// Resolve returns the effective target level for a dimension.
func (t Targets) Resolve(dim model.Dimension) float64 {
	if v, ok := t.PerDimension[dim.Code]; ok {
		return v
	}
	if t.Global != nil {
		return *t.Global
	}
	return dim.DefaultTarget
}

// Row is one overview line per dimension. IstLevel and Gap are NaN when the
// dimension is not assessable; MarshalJSON renders those as null.
type Row struct {
	Code        string
	Name        string
	Category    string
	IstLevel    float64
	TargetLevel float64
	Gap         float64
	Priority    string
	Action      string
	Timeframe   string
}

// MarshalJSON encodes NaN maturity values as null so the table stays
// representable in JSON.
func (r Row) MarshalJSON() ([]byte, error) {
	type jsonRow struct {
		Code        string   `json:"code"`
		Name        string   `json:"name"`
		Category    string   `json:"category"`
		IstLevel    *float64 `json:"ist_level"`
		TargetLevel float64  `json:"target_level"`
		Gap         *float64 `json:"gap"`
		Priority    string   `json:"priority,omitempty"`
		Action      string   `json:"action,omitempty"`
		Timeframe   string   `json:"timeframe,omitempty"`
	}
	j := jsonRow{
		Code:        r.Code,
		Name:        r.Name,
		Category:    r.Category,
		TargetLevel: r.TargetLevel,
		Priority:    r.Priority,
		Action:      r.Action,
		Timeframe:   r.Timeframe,
	}
	if !math.IsNaN(r.IstLevel) {
		ist := r.IstLevel
		j.IstLevel = &ist
	}
	if !math.IsNaN(r.Gap) {
		gap := r.Gap
		j.Gap = &gap
	}
	return json.Marshal(j)
}

// Build produces the overview table: one row per dimension with Ist-level,
// resolved target, signed gap and pass-through annotations, sorted by
// category rank and then natural code order.
//
// Build is a pure function of its inputs; calling it twice with identical
// inputs yields identical output. The gap is target minus ist and may be
// negative (over-achievement); clamping is a presentation concern.
func Build(m *model.Model, answers answer.Set, targets Targets, notes map[string]Annotation, eng *scoring.Engine) []Row {
	rows := make([]Row, 0, len(m.Dimensions))
	for _, dim := range m.Dimensions {
		ist := eng.DimensionMaturity(dim, answers)
		target := targets.Resolve(dim)

		row := Row{
			Code:        dim.Code,
			Name:        dim.Name,
			Category:    m.CategoryOf(dim),
			IstLevel:    ist,
			TargetLevel: target,
			Gap:         target - ist,
		}
		if note, ok := notes[dim.Code]; ok {
			row.Priority = note.Priority
			row.Action = note.Action
			row.Timeframe = note.Timeframe
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := m.CategoryRank(rows[i].Category), m.CategoryRank(rows[j].Category)
		if ri != rj {
			return ri < rj
		}
		return model.CompareCodes(rows[i].Code, rows[j].Code) < 0
	})
	return rows
}
