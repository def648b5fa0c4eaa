// Package model defines the maturity model structure and its artifact loading.
package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Level bounds of the maturity scale.
const (
	MinLevel = 1
	MaxLevel = 5
)

// Model is the static maturity model a session assesses against.
// It is loaded once per session and treated as immutable afterwards.
type Model struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	LevelLabels map[int]string `json:"-"`

	// CategoryOrder ranks categories for display; categories not listed
	// here sort after the listed ones.
	CategoryOrder []string `json:"category_order"`

	Dimensions []Dimension `json:"dimensions"`
}

// Dimension is one assessable area, identified by a category-prefixed code
// such as "TD1.2".
type Dimension struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Category      string  `json:"category,omitempty"`
	Description   string  `json:"description,omitempty"`
	DefaultTarget float64 `json:"default_target_level"`
	Levels        []Level `json:"levels"`
}

// Level is one of the five ordered maturity stages within a dimension.
// Later levels presuppose earlier ones.
type Level struct {
	Number    int        `json:"level_number"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Question is a single assessment criterion.
type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// modelArtifact mirrors the JSON artifact shape; level labels are keyed by
// strings there because JSON object keys are strings.
type modelArtifact struct {
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	LevelLabels   map[string]string `json:"levels_info"`
	CategoryOrder []string          `json:"category_order"`
	Dimensions    []Dimension       `json:"dimensions"`
}

// Parse decodes and validates a model artifact.
func Parse(data []byte) (*Model, error) {
	var art modelArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	m := &Model{
		Name:          art.Name,
		Description:   art.Description,
		LevelLabels:   make(map[int]string, len(art.LevelLabels)),
		CategoryOrder: art.CategoryOrder,
		Dimensions:    art.Dimensions,
	}
	for key, label := range art.LevelLabels {
		var n int
		if _, err := fmt.Sscanf(key, "%d", &n); err != nil {
			return nil, fmt.Errorf("%w: level label key %q is not a number", ErrInvalidModel, key)
		}
		m.LevelLabels[n] = label
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads and parses a model artifact from a file.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadModel, err)
	}
	return Parse(data)
}

// validate enforces the structural invariants the scoring engine relies on:
// unique dimension codes, level numbers 1..5 gapless ascending, and question
// ids unique across the whole model.
func (m *Model) validate() error {
	if len(m.Dimensions) == 0 {
		return fmt.Errorf("%w: model has no dimensions", ErrInvalidModel)
	}

	codes := make(map[string]bool, len(m.Dimensions))
	questionIDs := make(map[string]string)

	for _, dim := range m.Dimensions {
		if dim.Code == "" {
			return fmt.Errorf("%w: dimension %q has empty code", ErrInvalidModel, dim.Name)
		}
		if _, _, ok := SplitCode(dim.Code); !ok {
			return fmt.Errorf("%w: dimension code %q is not of the form <prefix><major>.<minor>", ErrInvalidModel, dim.Code)
		}
		if codes[dim.Code] {
			return fmt.Errorf("%w: duplicate dimension code %q", ErrInvalidModel, dim.Code)
		}
		codes[dim.Code] = true

		if dim.DefaultTarget < MinLevel || dim.DefaultTarget > MaxLevel {
			return fmt.Errorf("%w: dimension %s default target %.2f out of range", ErrInvalidModel, dim.Code, dim.DefaultTarget)
		}

		for i, lvl := range dim.Levels {
			if lvl.Number != i+1 {
				return fmt.Errorf("%w: dimension %s level %d out of order (want %d)", ErrInvalidModel, dim.Code, lvl.Number, i+1)
			}
			if lvl.Number > MaxLevel {
				return fmt.Errorf("%w: dimension %s level %d exceeds maximum", ErrInvalidModel, dim.Code, lvl.Number)
			}
			for _, q := range lvl.Questions {
				if q.ID == "" {
					return fmt.Errorf("%w: dimension %s level %d has question with empty id", ErrInvalidModel, dim.Code, lvl.Number)
				}
				if owner, dup := questionIDs[q.ID]; dup {
					return fmt.Errorf("%w: question id %q used by both %s and %s", ErrInvalidModel, q.ID, owner, dim.Code)
				}
				questionIDs[q.ID] = dim.Code
			}
		}
	}
	return nil
}

// Dimension returns the dimension with the given code, if present.
func (m *Model) Dimension(code string) (Dimension, bool) {
	for _, d := range m.Dimensions {
		if d.Code == code {
			return d, true
		}
	}
	return Dimension{}, false
}

// CategoryOf resolves a dimension's category: the explicit category when set,
// otherwise the alphabetic prefix of its code.
func (m *Model) CategoryOf(dim Dimension) string {
	if dim.Category != "" {
		return dim.Category
	}
	prefix, _, _ := SplitCode(dim.Code)
	return prefix
}

// CategoryRank returns the display rank of a category per CategoryOrder.
// Unknown categories rank after all known ones.
func (m *Model) CategoryRank(category string) int {
	for i, c := range m.CategoryOrder {
		if c == category {
			return i
		}
	}
	return len(m.CategoryOrder)
}
