package model

// MetricKind distinguishes funding columns from health-outcome columns.
type MetricKind string

const (
	MetricFunding MetricKind = "funding"
	MetricHealth  MetricKind = "health"
)

// Metric describes one dataset column for presentation: display label,
// description, unit, and chart color. These are configuration constants,
// not values computed from data.
type Metric struct {
	Key         string     `json:"key" yaml:"key"`
	Kind        MetricKind `json:"kind" yaml:"kind"`
	Label       string     `json:"label" yaml:"label"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Unit        string     `json:"unit,omitempty" yaml:"unit,omitempty"`
	Color       string     `json:"color,omitempty" yaml:"color,omitempty"`
}
