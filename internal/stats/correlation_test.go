package stats

import (
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdata/cpahealth/internal/model"
)

func TestCorrelation_PerfectPositive(t *testing.T) {
	r, err := Correlation([]float64{10, 20}, []float64{10, 20})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 1e-12)
}

func TestCorrelation_PerfectNegative(t *testing.T) {
	r, err := Correlation([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, r, 1e-12)
}

func TestCorrelation_Symmetric(t *testing.T) {
	x := []float64{1.2, 3.4, 2.2, 8.9, 4.1}
	y := []float64{0.5, 2.1, 1.0, 7.7, 3.3}

	rxy, err := Correlation(x, y)
	require.NoError(t, err)
	ryx, err := Correlation(y, x)
	require.NoError(t, err)

	assert.Equal(t, rxy, ryx)
}

func TestCorrelation_ScaleShiftInvariant(t *testing.T) {
	x := []float64{1, 5, 3, 9, 7}
	y := []float64{2, 4, 1, 8, 6}

	base, err := Correlation(x, y)
	require.NoError(t, err)

	// a·x + b with a > 0 must not change r.
	scaled := make([]float64, len(x))
	for i, v := range x {
		scaled[i] = 2.5*v + 17
	}
	r, err := Correlation(scaled, y)
	require.NoError(t, err)
	assert.InDelta(t, base, r, 1e-12)
}

func TestCorrelation_ConstantInputReturnsExactlyZero(t *testing.T) {
	x := []float64{500, 500, 500}
	y := []float64{10, 20, 30}

	r, err := Correlation(x, y)
	require.NoError(t, err)
	assert.Equal(t, 0.0, r) // exact, by convention, not InDelta

	r, err = Correlation(y, x)
	require.NoError(t, err)
	assert.Equal(t, 0.0, r)
}

func TestCorrelation_SinglePoint(t *testing.T) {
	// n=1 has zero variance on both sides: 0.0 convention applies.
	r, err := Correlation([]float64{42}, []float64{7})
	require.NoError(t, err)
	assert.Equal(t, 0.0, r)
}

func TestCorrelation_DimensionMismatch(t *testing.T) {
	_, err := Correlation([]float64{1, 2, 3}, []float64{1, 2})
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrDimensionMismatch))
}

func TestCorrelation_Empty(t *testing.T) {
	_, err := Correlation(nil, nil)
	require.Error(t, err)
	assert.True(t, eris.Is(err, model.ErrEmptyDataset))
}

func TestCorrelation_InputsNotMutated(t *testing.T) {
	x := []float64{3, 1, 2}
	y := []float64{9, 7, 8}
	_, err := Correlation(x, y)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, x)
	assert.Equal(t, []float64{9, 7, 8}, y)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, StrengthStrong, Classify(0.51))
	assert.Equal(t, StrengthStrong, Classify(-0.9))
	assert.Equal(t, StrengthModerate, Classify(0.5))
	assert.Equal(t, StrengthModerate, Classify(-0.31))
	assert.Equal(t, StrengthWeak, Classify(0.3))
	assert.Equal(t, StrengthWeak, Classify(0))
}

func TestDirection(t *testing.T) {
	assert.Equal(t, "positive", Direction(0.2))
	assert.Equal(t, "negative", Direction(-0.2))
	assert.Equal(t, "none", Direction(0))
}

func derivedTown(name string, pc float64, health map[model.HealthKey]float64) model.Town {
	t := model.Town{
		Name:      name,
		Funding:   map[model.FundingKey]float64{},
		PerCapita: map[model.FundingKey]float64{},
		Health:    health,
	}
	for _, k := range model.FundingKeys() {
		t.PerCapita[k] = pc
	}
	return t
}

func TestBuildMatrix_DenseAndIndexed(t *testing.T) {
	towns := []model.Town{
		derivedTown("A", 10, map[model.HealthKey]float64{model.HealthMental: 10, model.HealthPhysInactivity: 5, model.HealthPhysical: 1}),
		derivedTown("B", 20, map[model.HealthKey]float64{model.HealthMental: 20, model.HealthPhysInactivity: 4, model.HealthPhysical: 2}),
		derivedTown("C", 30, map[model.HealthKey]float64{model.HealthMental: 30, model.HealthPhysInactivity: 3, model.HealthPhysical: 3}),
	}

	m, err := BuildMatrix(towns, model.HealthKeys(), model.FundingKeys())
	require.NoError(t, err)

	// Dense: one cell per (health, funding) pair, no gaps.
	assert.Len(t, m.Cells, len(model.HealthKeys())*len(model.FundingKeys()))

	cell, ok := m.At(model.HealthMental, model.FundHousing)
	require.True(t, ok)
	assert.InDelta(t, 1.0, cell.R, 1e-12)
	assert.Equal(t, StrengthStrong, cell.Strength)
	assert.Equal(t, "positive", cell.Direction)
	assert.Equal(t, 3, cell.SampleCount)

	cell, ok = m.At(model.HealthPhysInactivity, model.FundOpenSpace)
	require.True(t, ok)
	assert.InDelta(t, -1.0, cell.R, 1e-12)
	assert.Equal(t, "negative", cell.Direction)
}

func TestBuildMatrix_ExcludesNaNRowsPairwise(t *testing.T) {
	towns := []model.Town{
		derivedTown("A", 10, map[model.HealthKey]float64{model.HealthMental: 10}),
		derivedTown("ZERO-POP", math.NaN(), map[model.HealthKey]float64{model.HealthMental: 99}),
		derivedTown("B", 20, map[model.HealthKey]float64{model.HealthMental: 20}),
	}

	m, err := BuildMatrix(towns, []model.HealthKey{model.HealthMental}, []model.FundingKey{model.FundHousing})
	require.NoError(t, err)

	cell, ok := m.At(model.HealthMental, model.FundHousing)
	require.True(t, ok)
	assert.Equal(t, 2, cell.SampleCount)
	assert.InDelta(t, 1.0, cell.R, 1e-12)
	assert.False(t, math.IsNaN(cell.R))
}
