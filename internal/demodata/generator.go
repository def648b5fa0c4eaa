package demodata

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/okian/stufe/internal/domain/competency"
)

// Response is one synthetic competency survey submission.
type Response struct {
	Profile string             `json:"profile"`
	Role    string             `json:"role"`
	TakenAt string             `json:"taken_at"`
	Scores  map[string]float64 `json:"scores"`
}

// Requirement is one synthetic role requirement vector.
type Requirement struct {
	Role    string    `json:"role"`
	TakenAt string    `json:"taken_at"`
	Values  []float64 `json:"values"`
}

var roleNames = []string{
	"Entwickler",
	"Teamleiter",
	"Projektleiter",
	"Vertrieb",
	"Controller",
	"Produktmanager",
}

// Generate produces multi-year profile histories and role requirements.
// Each profile starts at a random ability level and drifts slightly per
// year, so forecasts over the generated data have non-trivial slopes.
func Generate(cfg *Config, stats *Stats) ([]Response, []Requirement) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	catalog := competency.DefaultCatalog()
	clusters := catalog.Clusters()
	startYear := time.Now().Year() - cfg.Years + 1

	roles := make([]string, cfg.Roles)
	for i := range roles {
		if i < len(roleNames) {
			roles[i] = roleNames[i]
		} else {
			roles[i] = fmt.Sprintf("Rolle %d", i+1)
		}
	}

	var responses []Response
	for p := 0; p < cfg.Profiles; p++ {
		profile := uuid.New().String()
		role := roles[rng.Intn(len(roles))]

		// Per-cluster ability with a small yearly drift.
		ability := make([]float64, len(clusters))
		drift := make([]float64, len(clusters))
		for i := range ability {
			ability[i] = 1.5 + rng.Float64()*2.5
			drift[i] = rng.Float64()*0.6 - 0.1
		}

		for y := 0; y < cfg.Years; y++ {
			scores := make(map[string]float64, len(clusters)*2)
			for i, c := range clusters {
				level := clampScore(ability[i] + float64(y)*drift[i])
				// Two items per cluster, jittered around the ability.
				scores[fmt.Sprintf("%dA01", c.ID)] = clampScore(jitterScore(rng, level))
				scores[fmt.Sprintf("%dC01", c.ID)] = clampScore(jitterScore(rng, level))
			}
			responses = append(responses, Response{
				Profile: profile,
				Role:    role,
				TakenAt: yearStamp(startYear + y),
				Scores:  scores,
			})
		}
	}

	var requirements []Requirement
	for _, role := range roles {
		base := make([]float64, len(clusters))
		for i := range base {
			base[i] = 2.5 + rng.Float64()*2
		}
		for y := 0; y < cfg.Years; y++ {
			values := make([]float64, len(clusters))
			for i := range values {
				values[i] = roundHalf(clampScore(base[i] + float64(y)*0.1))
			}
			requirements = append(requirements, Requirement{
				Role:    role,
				TakenAt: yearStamp(startYear + y),
				Values:  values,
			})
		}
	}

	stats.ResponsesGenerated = len(responses)
	stats.RequirementsGenerated = len(requirements)
	return responses, requirements
}

func yearStamp(year int) string {
	return time.Date(year, time.June, 1, 12, 0, 0, 0, time.UTC).Format(time.RFC3339)
}

func jitterScore(rng *rand.Rand, level float64) float64 {
	return float64(int(level + rng.Float64()))
}

func clampScore(v float64) float64 {
	if v < competency.MinScore {
		return competency.MinScore
	}
	if v > competency.MaxScore {
		return competency.MaxScore
	}
	return v
}

func roundHalf(v float64) float64 {
	return float64(int(v*2+0.5)) / 2
}
