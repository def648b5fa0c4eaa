package demodata

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/stufe/pkg/logger"
)

// Run generates demo histories and submits them to a running service.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	logger.Get().Info(ctx, "starting demo data run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("profiles", config.Profiles),
		logger.Int("roles", config.Roles),
		logger.Int("years", config.Years),
		logger.String("timeout", config.Timeout.String()))

	if err := checkServiceHealth(ctx, config); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	responses, requirements := Generate(config, stats)
	logger.Get().Info(ctx, "generated demo records",
		logger.Int("responses", stats.ResponsesGenerated),
		logger.Int("requirements", stats.RequirementsGenerated))

	if err := submitAll(ctx, config, responses, requirements, stats); err != nil {
		return stats, fmt.Errorf("submission failed: %w", err)
	}

	stats.Duration = time.Since(start)
	if config.Verbose {
		logger.Get().Info(ctx, "final statistics",
			logger.Int("submitted", stats.Submitted),
			logger.Int("successful", stats.Successful),
			logger.Int("failed", stats.Failed),
			logger.String("duration", stats.Duration.String()))
	}
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)

	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Get().Warn(ctx, "failed to close response body", logger.Error(cerr))
		}
	}()

	if resp.StatusCode != 200 {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}
