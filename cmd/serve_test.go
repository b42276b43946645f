package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdata/cpahealth/internal/dataset"
	"github.com/civicdata/cpahealth/internal/fetcher"
	"github.com/civicdata/cpahealth/internal/registry"
)

const serveTestCSV = `TOWN,population_count,CPA_HOUS,CPA_OS,CPA_REC,CPA_HIST,CPA_TOT,MHLTH_CrudePrev,LPA_CrudePrev,PHLTH_CrudePrev
ASHFIELD,100,1000,500,200,300,2000,10,25.5,8
BARRE,200,4000,1000,400,600,6000,20,22.1,9
`

func newTestAPI(t *testing.T) *dataAPI {
	t.Helper()

	path := filepath.Join(t.TempDir(), "towns.csv")
	require.NoError(t, os.WriteFile(path, []byte(serveTestCSV), 0o644))

	p := dataset.NewPipeline(fetcher.LocalSource{}, 1<<20)
	api := newDataAPI(p, path, registry.Default())
	require.NoError(t, api.refresh(context.Background()))
	return api
}

func doRequest(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestServe_Healthz(t *testing.T) {
	api := newTestAPI(t)
	h := api.routes([]string{"*"})

	rec := doRequest(t, h, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["snapshot_id"])
}

func TestServe_HealthzBeforeLoad(t *testing.T) {
	api := newDataAPI(nil, "", registry.Default())
	h := api.routes([]string{"*"})

	rec := doRequest(t, h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServe_Records(t *testing.T) {
	api := newTestAPI(t)
	h := api.routes([]string{"*"})

	rec := doRequest(t, h, http.MethodGet, "/api/records")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		SnapshotID string `json:"snapshot_id"`
		Towns      []struct {
			Town      string             `json:"town"`
			PerCapita map[string]float64 `json:"per_capita"`
		} `json:"towns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Towns, 2)
	assert.Equal(t, "ASHFIELD", body.Towns[0].Town)
	assert.Equal(t, 10.0, body.Towns[0].PerCapita["CPA_HOUS"])
}

func TestServe_Correlations(t *testing.T) {
	api := newTestAPI(t)
	h := api.routes([]string{"*"})

	rec := doRequest(t, h, http.MethodGet, "/api/correlations")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Correlations struct {
			Cells []struct {
				Health   string  `json:"health"`
				Funding  string  `json:"funding"`
				R        float64 `json:"r"`
				Strength string  `json:"strength"`
			} `json:"cells"`
		} `json:"correlations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Correlations.Cells, 12) // 3 health × 4 funding categories
}

func TestServe_Summaries(t *testing.T) {
	api := newTestAPI(t)
	h := api.routes([]string{"*"})

	rec := doRequest(t, h, http.MethodGet, "/api/summaries")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Summaries []struct {
			Metric string  `json:"metric"`
			Mean   float64 `json:"mean"`
			Max    struct {
				Town string `json:"town"`
			} `json:"max"`
		} `json:"summaries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Summaries, 3)
	assert.Equal(t, "MHLTH_CrudePrev", body.Summaries[0].Metric)
	assert.Equal(t, 15.0, body.Summaries[0].Mean)
	assert.Equal(t, "BARRE", body.Summaries[0].Max.Town)
}

func TestServe_Metrics(t *testing.T) {
	api := newTestAPI(t)
	h := api.routes([]string{"*"})

	rec := doRequest(t, h, http.MethodGet, "/api/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	var metrics []struct {
		Key   string `json:"key"`
		Label string `json:"label"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Len(t, metrics, 8)
}

func TestServe_RefreshSwapsSnapshot(t *testing.T) {
	api := newTestAPI(t)
	h := api.routes([]string{"*"})

	before := api.state.Load().snap.ID

	rec := doRequest(t, h, http.MethodPost, "/api/refresh")
	require.Equal(t, http.StatusOK, rec.Code)

	after := api.state.Load().snap.ID
	assert.NotEqual(t, before, after)

	// Snapshot and analysis swap together.
	st := api.state.Load()
	assert.Equal(t, st.snap.ID, st.analysis.SnapshotID)
}

func TestServe_RefreshFailureKeepsOldSnapshot(t *testing.T) {
	api := newTestAPI(t)
	before := api.state.Load()

	// Point the API at a source that no longer exists.
	api.source = filepath.Join(t.TempDir(), "gone.csv")
	h := api.routes([]string{"*"})

	rec := doRequest(t, h, http.MethodPost, "/api/refresh")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	// Readers still see the previous snapshot in full.
	assert.Equal(t, before.snap.ID, api.state.Load().snap.ID)
}
