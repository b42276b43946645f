package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/civicdata/cpahealth/internal/dataset"
	"github.com/civicdata/cpahealth/internal/registry"
)

var (
	servePort  int
	serveInput string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the computed data products over HTTP",
	Long: `Loads the dataset once at startup and serves the enriched records, the
correlation matrix, and the per-metric summaries as JSON for the charting
frontend. POST /api/refresh re-runs the pipeline and swaps the snapshot
atomically: readers see the old products in full or the new ones in full.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		source, err := resolveSource(serveInput)
		if err != nil {
			return err
		}

		reg, err := loadMetrics(cfg.Dataset.MetricsFile)
		if err != nil {
			return err
		}

		api := newDataAPI(newPipeline(cfg), source, reg)
		if err := api.refresh(ctx); err != nil {
			return eris.Wrap(err, "serve: initial load")
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.routes(cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&serveInput, "input", "", "dataset path or URL (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// serverState pairs one snapshot with the products computed from it, so a
// refresh can swap both together and readers never see a partial mix.
type serverState struct {
	snap     *dataset.Snapshot
	analysis *dataset.Analysis
}

// dataAPI serves the three data products from the current snapshot.
type dataAPI struct {
	pipeline *dataset.Pipeline
	source   string
	metrics  *registry.MetricRegistry
	state    atomic.Pointer[serverState]
}

func newDataAPI(p *dataset.Pipeline, source string, metrics *registry.MetricRegistry) *dataAPI {
	return &dataAPI{pipeline: p, source: source, metrics: metrics}
}

// refresh re-runs the full pipeline and atomically publishes the result.
func (a *dataAPI) refresh(ctx context.Context) error {
	snap, err := a.pipeline.Load(ctx, a.source)
	if err != nil {
		return err
	}
	analysis, err := dataset.Analyze(snap)
	if err != nil {
		return err
	}
	a.state.Store(&serverState{snap: snap, analysis: analysis})
	return nil
}

func (a *dataAPI) routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	r.Get("/healthz", a.handleHealthz)
	r.Route("/api", func(r chi.Router) {
		r.Get("/records", a.handleRecords)
		r.Get("/correlations", a.handleCorrelations)
		r.Get("/summaries", a.handleSummaries)
		r.Get("/metrics", a.handleMetrics)
		r.Post("/refresh", a.handleRefresh)
	})

	return r
}

func (a *dataAPI) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	st := a.state.Load()
	if st == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "ok",
		"snapshot_id": st.snap.ID,
	})
}

// current returns the published state, or reports 503 when no load has
// completed yet.
func (a *dataAPI) current(w http.ResponseWriter) (*serverState, bool) {
	st := a.state.Load()
	if st == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "dataset not loaded"})
		return nil, false
	}
	return st, true
}

func (a *dataAPI) handleRecords(w http.ResponseWriter, _ *http.Request) {
	st, ok := a.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshot_id": st.snap.ID,
		"loaded_at":   st.snap.LoadedAt,
		"towns":       st.analysis.Records,
	})
}

func (a *dataAPI) handleCorrelations(w http.ResponseWriter, _ *http.Request) {
	st, ok := a.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshot_id":  st.snap.ID,
		"correlations": st.analysis.Matrix,
	})
}

func (a *dataAPI) handleSummaries(w http.ResponseWriter, _ *http.Request) {
	st, ok := a.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshot_id": st.snap.ID,
		"summaries":   st.analysis.Summaries,
	})
}

func (a *dataAPI) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.metrics.All())
}

func (a *dataAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := a.refresh(r.Context()); err != nil {
		zap.L().Error("refresh failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "refresh failed"})
		return
	}
	st := a.state.Load()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "refreshed",
		"snapshot_id": st.snap.ID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("response encode failed", zap.Error(err))
	}
}
