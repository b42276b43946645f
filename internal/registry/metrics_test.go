package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdata/cpahealth/internal/model"
)

func TestDefault_CoversAllDatasetColumns(t *testing.T) {
	reg := Default()

	for _, k := range model.FundingKeys() {
		m, ok := reg.Get(string(k))
		require.True(t, ok, "missing funding metric %s", k)
		assert.Equal(t, model.MetricFunding, m.Kind)
		assert.NotEmpty(t, m.Label)
		assert.NotEmpty(t, m.Color)
	}
	for _, k := range model.HealthKeys() {
		m, ok := reg.Get(string(k))
		require.True(t, ok, "missing health metric %s", k)
		assert.Equal(t, model.MetricHealth, m.Kind)
		assert.Equal(t, "%", m.Unit)
	}

	assert.Len(t, reg.All(), len(model.FundingKeys())+len(model.HealthKeys()))
}

func TestLabel_FallsBackToKey(t *testing.T) {
	reg := Default()
	assert.Equal(t, "Open Space", reg.Label(string(model.FundOpenSpace)))
	assert.Equal(t, "NOT_A_METRIC", reg.Label("NOT_A_METRIC"))
}

func TestNewMetricRegistry_LaterEntryWinsByKey(t *testing.T) {
	reg := NewMetricRegistry([]model.Metric{
		{Key: "A", Label: "first"},
		{Key: "B", Label: "b"},
		{Key: "A", Label: "second"},
	})

	assert.Equal(t, "second", reg.Label("A"))
	assert.Len(t, reg.All(), 2)
}

func TestLoadMetricsFromFile_MergesOverDefaults(t *testing.T) {
	content := `
- key: CPA_OS
  kind: funding
  label: Conservation Land
  unit: USD
  color: "#00ff00"
- key: CUSTOM_METRIC
  kind: health
  label: Custom
`
	path := filepath.Join(t.TempDir(), "metrics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg, err := LoadMetricsFromFile(path)
	require.NoError(t, err)

	// Override wins, other defaults intact, new metric added.
	assert.Equal(t, "Conservation Land", reg.Label(string(model.FundOpenSpace)))
	assert.Equal(t, "Community Housing", reg.Label(string(model.FundHousing)))
	assert.Equal(t, "Custom", reg.Label("CUSTOM_METRIC"))
}

func TestLoadMetricsFromFile_Missing(t *testing.T) {
	_, err := LoadMetricsFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadMetricsFromFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

	_, err := LoadMetricsFromFile(path)
	require.Error(t, err)
}
