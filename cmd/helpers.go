package main

import (
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/civicdata/cpahealth/internal/config"
	"github.com/civicdata/cpahealth/internal/dataset"
	"github.com/civicdata/cpahealth/internal/fetcher"
	"github.com/civicdata/cpahealth/internal/registry"
)

// newPipeline wires the scheme dispatcher and byte bound from config.
func newPipeline(c *config.Config) *dataset.Pipeline {
	src := fetcher.NewMultiSource(
		fetcher.HTTPOptions{
			UserAgent:  c.Fetch.UserAgent,
			Timeout:    time.Duration(c.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: c.Fetch.MaxRetries,
			RateLimit:  rate.Limit(c.Fetch.RatePerSecond),
		},
		fetcher.FTPOptions{
			Timeout: time.Duration(c.Fetch.TimeoutSecs) * time.Second,
		},
	)
	return dataset.NewPipeline(src, c.Fetch.MaxBytes)
}

// loadMetrics returns the effective metric registry: built-in defaults,
// optionally merged with a YAML override file.
func loadMetrics(metricsFile string) (*registry.MetricRegistry, error) {
	if metricsFile == "" {
		return registry.Default(), nil
	}
	reg, err := registry.LoadMetricsFromFile(metricsFile)
	if err != nil {
		return nil, eris.Wrap(err, "load metrics file")
	}
	return reg, nil
}

// resolveSource prefers the flag over the configured dataset source.
func resolveSource(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.Dataset.Source != "" {
		return cfg.Dataset.Source, nil
	}
	return "", eris.New("no input source: pass --input or set dataset.source")
}
