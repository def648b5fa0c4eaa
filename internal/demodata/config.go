// Package demodata generates and submits realistic multi-year competency
// histories for manual testing and demos.
package demodata

import "time"

// Default generation parameters.
const (
	defaultProfiles = 20
	defaultRoles    = 4
	defaultYears    = 4
	defaultTimeout  = 30 * time.Second
)

// Config controls demo data generation and submission.
type Config struct {
	// BaseURL of the running service, e.g. "http://localhost:9080".
	BaseURL string

	// Profiles is the number of synthetic profiles to generate.
	Profiles int

	// Roles is the number of synthetic roles to generate.
	Roles int

	// Years is the history depth; one snapshot per profile per year.
	Years int

	// Seed makes generation reproducible; 0 means time-based.
	Seed int64

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	Verbose bool
}

// NewConfig returns a Config with defaults applied.
func NewConfig(baseURL string) *Config {
	return &Config{
		BaseURL:  baseURL,
		Profiles: defaultProfiles,
		Roles:    defaultRoles,
		Years:    defaultYears,
		Timeout:  defaultTimeout,
	}
}

// Stats collects submission results.
type Stats struct {
	ResponsesGenerated    int
	RequirementsGenerated int
	Submitted             int
	Successful            int
	Failed                int
	Duration              time.Duration
}
