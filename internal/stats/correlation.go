// Package stats implements the correlation and summary engines that run
// over a derived town sequence.
package stats

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/civicdata/cpahealth/internal/model"
)

// Correlation computes the Pearson product-moment correlation coefficient
// between two equal-length vectors in a single O(n) pass.
//
// When either vector has exactly zero variance the denominator is 0 and the
// result is 0.0 by convention. That is a deliberate substitution carried over
// from the reference behavior, not a statistical claim of independence; do
// not replace it with NaN or an error without product sign-off.
func Correlation(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, eris.Wrapf(model.ErrDimensionMismatch, "stats: correlation over %d and %d values", len(x), len(y))
	}
	if len(x) == 0 {
		return 0, eris.Wrap(model.ErrEmptyDataset, "stats: correlation over zero values")
	}

	n := float64(len(x))
	var sumX, sumY, sumXY, sumX2, sumY2 float64
	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	num := n*sumXY - sumX*sumY
	den := math.Sqrt((n*sumX2 - sumX*sumX) * (n*sumY2 - sumY*sumY))
	if den == 0 {
		return 0, nil
	}
	return num / den, nil
}

// Strength classifies the magnitude of a correlation coefficient.
type Strength string

const (
	StrengthStrong   Strength = "strong"
	StrengthModerate Strength = "moderate"
	StrengthWeak     Strength = "weak"
)

// Classify bands |r|: >0.5 strong, >0.3 moderate, else weak.
func Classify(r float64) Strength {
	abs := math.Abs(r)
	switch {
	case abs > 0.5:
		return StrengthStrong
	case abs > 0.3:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

// Direction reports whether funding and the adverse outcome move together
// ("positive"), inversely ("negative"), or not at all ("none").
func Direction(r float64) string {
	switch {
	case r > 0:
		return "positive"
	case r < 0:
		return "negative"
	default:
		return "none"
	}
}

// Cell is one entry of the correlation matrix.
type Cell struct {
	Health      model.HealthKey  `json:"health"`
	Funding     model.FundingKey `json:"funding"`
	R           float64          `json:"r"`
	Strength    Strength         `json:"strength"`
	Direction   string           `json:"direction"`
	SampleCount int              `json:"sample_count"`
}

// Matrix is the dense (health × funding) correlation matrix for one snapshot.
type Matrix struct {
	Cells []Cell `json:"cells"`
	index map[model.HealthKey]map[model.FundingKey]int
}

// At returns the cell for a (health, funding) pair.
func (m *Matrix) At(h model.HealthKey, f model.FundingKey) (Cell, bool) {
	row, ok := m.index[h]
	if !ok {
		return Cell{}, false
	}
	i, ok := row[f]
	if !ok {
		return Cell{}, false
	}
	return m.Cells[i], true
}

// BuildMatrix computes the full correlation matrix between every health
// metric and the per-capita value of every funding category. For each pair
// the two vectors are extracted in record order; rows where either side is
// NaN (zero-population towns) are dropped from both vectors so they cannot
// poison the sums. The matrix is always rebuilt whole.
func BuildMatrix(towns []model.Town, healthKeys []model.HealthKey, fundingKeys []model.FundingKey) (*Matrix, error) {
	m := &Matrix{index: make(map[model.HealthKey]map[model.FundingKey]int, len(healthKeys))}

	for _, h := range healthKeys {
		m.index[h] = make(map[model.FundingKey]int, len(fundingKeys))
		for _, f := range fundingKeys {
			x := make([]float64, 0, len(towns))
			y := make([]float64, 0, len(towns))
			for _, t := range towns {
				fv := t.PerCapita[f]
				hv, ok := t.Health[h]
				if !ok || math.IsNaN(fv) || math.IsNaN(hv) {
					continue
				}
				x = append(x, fv)
				y = append(y, hv)
			}

			r, err := Correlation(x, y)
			if err != nil {
				return nil, eris.Wrapf(err, "stats: matrix cell %s × %s", h, f)
			}

			m.index[h][f] = len(m.Cells)
			m.Cells = append(m.Cells, Cell{
				Health:      h,
				Funding:     f,
				R:           r,
				Strength:    Classify(r),
				Direction:   Direction(r),
				SampleCount: len(x),
			})
		}
	}

	return m, nil
}
