// Package registry holds the static metric definitions consumed by the
// presentation layer, with optional overrides loaded from a YAML file.
package registry

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/civicdata/cpahealth/internal/model"
)

// MetricRegistry indexes metric definitions by column key.
type MetricRegistry struct {
	metrics []model.Metric
	byKey   map[string]model.Metric
}

// NewMetricRegistry builds an indexed registry from a definition list.
// Later entries with a duplicate key replace earlier ones.
func NewMetricRegistry(metrics []model.Metric) *MetricRegistry {
	r := &MetricRegistry{byKey: make(map[string]model.Metric, len(metrics))}
	for _, m := range metrics {
		if _, exists := r.byKey[m.Key]; exists {
			for i := range r.metrics {
				if r.metrics[i].Key == m.Key {
					r.metrics[i] = m
					break
				}
			}
		} else {
			r.metrics = append(r.metrics, m)
		}
		r.byKey[m.Key] = m
	}
	return r
}

// Default returns the built-in metric definitions for the CPA dataset.
func Default() *MetricRegistry {
	return NewMetricRegistry(builtinMetrics())
}

// Get looks up a metric definition by column key.
func (r *MetricRegistry) Get(key string) (model.Metric, bool) {
	m, ok := r.byKey[key]
	return m, ok
}

// Label returns the display label for a key, falling back to the key itself.
func (r *MetricRegistry) Label(key string) string {
	if m, ok := r.byKey[key]; ok {
		return m.Label
	}
	return key
}

// All returns the definitions in registration order.
func (r *MetricRegistry) All() []model.Metric {
	out := make([]model.Metric, len(r.metrics))
	copy(out, r.metrics)
	return out
}

// LoadMetricsFromFile reads a YAML list of metric definitions and merges
// them over the built-in defaults (file entries win by key).
func LoadMetricsFromFile(path string) (*MetricRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read metrics file")
	}

	var overrides []model.Metric
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal metrics file")
	}

	return NewMetricRegistry(append(builtinMetrics(), overrides...)), nil
}

func builtinMetrics() []model.Metric {
	return []model.Metric{
		{Key: string(model.FundHousing), Kind: model.MetricFunding, Label: "Community Housing", Description: "CPA appropriations for community housing", Unit: "USD", Color: "#1f77b4"},
		{Key: string(model.FundOpenSpace), Kind: model.MetricFunding, Label: "Open Space", Description: "CPA appropriations for open space acquisition", Unit: "USD", Color: "#2ca02c"},
		{Key: string(model.FundRecreation), Kind: model.MetricFunding, Label: "Recreation", Description: "CPA appropriations for recreational land and facilities", Unit: "USD", Color: "#ff7f0e"},
		{Key: string(model.FundHistoric), Kind: model.MetricFunding, Label: "Historic Preservation", Description: "CPA appropriations for historic resources", Unit: "USD", Color: "#9467bd"},
		{Key: string(model.FundTotal), Kind: model.MetricFunding, Label: "Total CPA Funding", Description: "All CPA appropriations combined", Unit: "USD", Color: "#8c564b"},
		{Key: string(model.HealthMental), Kind: model.MetricHealth, Label: "Poor Mental Health", Description: "Crude prevalence of 14+ days of poor mental health among adults", Unit: "%", Color: "#d62728"},
		{Key: string(model.HealthPhysInactivity), Kind: model.MetricHealth, Label: "Physical Inactivity", Description: "Crude prevalence of no leisure-time physical activity among adults", Unit: "%", Color: "#e377c2"},
		{Key: string(model.HealthPhysical), Kind: model.MetricHealth, Label: "Poor Physical Health", Description: "Crude prevalence of 14+ days of poor physical health among adults", Unit: "%", Color: "#7f7f7f"},
	}
}
