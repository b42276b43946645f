package dataset

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/civicdata/cpahealth/internal/fetcher"
	"github.com/civicdata/cpahealth/internal/ingest"
	"github.com/civicdata/cpahealth/internal/model"
	"github.com/civicdata/cpahealth/internal/stats"
)

// Pipeline runs the synchronous load → parse → derive sequence. The fetch
// is the single I/O boundary; everything after it is pure computation.
type Pipeline struct {
	src      fetcher.Source
	maxBytes int64
}

// NewPipeline creates a pipeline reading from the given source with the
// given byte bound (0 = unbounded).
func NewPipeline(src fetcher.Source, maxBytes int64) *Pipeline {
	return &Pipeline{src: src, maxBytes: maxBytes}
}

// Load fetches the raw resource, parses it into town records, derives
// per-capita funding, and freezes the result as a snapshot.
func (p *Pipeline) Load(ctx context.Context, rawURL string) (*Snapshot, error) {
	data, err := fetcher.Fetch(ctx, p.src, rawURL, p.maxBytes)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: load %s", rawURL)
	}

	towns, err := ingest.Parse(data, rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: parse %s", rawURL)
	}

	snap := NewSnapshot(rawURL, Derive(towns))
	zap.L().Info("dataset loaded",
		zap.String("snapshot_id", snap.ID),
		zap.String("source", rawURL),
		zap.Int("towns", len(snap.Towns)),
	)
	return snap, nil
}

// Analysis bundles the three data products handed to the presentation
// layer: the enriched records, the correlation matrix, and the per-metric
// summaries. All are recomputed whole from one snapshot.
type Analysis struct {
	SnapshotID string          `json:"snapshot_id"`
	Source     string          `json:"source"`
	Records    []model.Town    `json:"records"`
	Matrix     *stats.Matrix   `json:"correlations"`
	Summaries  []stats.Summary `json:"summaries"`
}

// Analyze is the explicit recompute entry point: it builds all data
// products fresh from the snapshot. No caching, no partial updates.
func Analyze(snap *Snapshot) (*Analysis, error) {
	matrix, err := stats.BuildMatrix(snap.Towns, model.HealthKeys(), model.CorrelatedFundingKeys())
	if err != nil {
		return nil, eris.Wrap(err, "dataset: build correlation matrix")
	}

	summaries, err := stats.SummarizeAll(snap.Towns, model.HealthKeys())
	if err != nil {
		return nil, eris.Wrap(err, "dataset: summarize")
	}

	return &Analysis{
		SnapshotID: snap.ID,
		Source:     snap.Source,
		Records:    snap.CloneTowns(),
		Matrix:     matrix,
		Summaries:  summaries,
	}, nil
}
