// Package dataset runs the one-shot load → derive → compute pipeline and
// owns the immutable snapshot handed to read-only consumers.
package dataset

import (
	"math"

	"github.com/civicdata/cpahealth/internal/model"
)

// Derive returns a new sequence where every town gains one per-capita value
// per funding category: Funding[K] / Population. A zero population yields
// NaN (0/0 or x/0), which propagates to consumers instead of being coerced
// to 0. Input records are not mutated; re-deriving an already-derived
// sequence yields identical values.
func Derive(towns []model.Town) []model.Town {
	out := make([]model.Town, len(towns))
	for i, t := range towns {
		d := t.Clone()
		d.PerCapita = make(map[model.FundingKey]float64, len(d.Funding))
		for k, raw := range d.Funding {
			if d.Population == 0 {
				// NaN, not +Inf: raw/0 would give +Inf for positive
				// funding and consumers filter on NaN.
				d.PerCapita[k] = math.NaN()
				continue
			}
			d.PerCapita[k] = raw / d.Population
		}
		out[i] = d
	}
	return out
}
