package stats

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/civicdata/cpahealth/internal/model"
)

// Extreme records an extremal value and the town that holds it.
type Extreme struct {
	Value float64 `json:"value"`
	Town  string  `json:"town"`
}

// Summary aggregates one health metric across a snapshot: arithmetic mean
// plus the min and max holders. Excluded counts NaN values skipped during
// aggregation so consumers can tell a clean dataset from a patched one.
type Summary struct {
	Metric   model.HealthKey `json:"metric"`
	Mean     float64         `json:"mean"`
	Min      Extreme         `json:"min"`
	Max      Extreme         `json:"max"`
	Count    int             `json:"count"`
	Excluded int             `json:"excluded"`
}

func healthValue(t model.Town, key model.HealthKey) (float64, bool) {
	v, ok := t.Health[key]
	return v, ok
}

// Summarize computes {mean, min holder, max holder} for one health metric.
// Ties on the extremal value resolve to the town appearing first in input
// order. NaN and absent values are excluded from the aggregate.
func Summarize(towns []model.Town, key model.HealthKey) (Summary, error) {
	if len(towns) == 0 {
		return Summary{}, eris.Wrapf(model.ErrEmptyDataset, "stats: summarize %s", key)
	}

	s := Summary{Metric: key}
	var sum float64
	for _, t := range towns {
		v, ok := healthValue(t, key)
		if !ok || math.IsNaN(v) {
			s.Excluded++
			continue
		}

		if s.Count == 0 || v < s.Min.Value {
			s.Min = Extreme{Value: v, Town: t.Name}
		}
		if s.Count == 0 || v > s.Max.Value {
			s.Max = Extreme{Value: v, Town: t.Name}
		}
		sum += v
		s.Count++
	}

	if s.Count == 0 {
		return Summary{}, eris.Wrapf(model.ErrEmptyDataset, "stats: summarize %s: no usable values", key)
	}

	s.Mean = sum / float64(s.Count)
	return s, nil
}

// SummarizeAll runs Summarize for every given health metric, in order.
func SummarizeAll(towns []model.Town, keys []model.HealthKey) ([]Summary, error) {
	out := make([]Summary, 0, len(keys))
	for _, key := range keys {
		s, err := Summarize(towns, key)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
