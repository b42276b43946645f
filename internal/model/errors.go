package model

import "github.com/rotisserie/eris"

// Error taxonomy for the load → derive → compute pipeline. Callers match
// with eris.Is; lower layers wrap these with contextual detail.
var (
	// ErrIngestion covers transport-level failures: unreachable source,
	// timeout, or input exceeding the configured byte bound.
	ErrIngestion = eris.New("ingestion failed")

	// ErrMalformedInput covers structural problems in the parsed text:
	// missing header, or a data row whose field count disagrees with it.
	ErrMalformedInput = eris.New("malformed input")

	// ErrMissingField means a record lacks a column required for
	// derivation (population or any funding category).
	ErrMissingField = eris.New("missing required field")

	// ErrDimensionMismatch means mismatched vector lengths were passed to
	// the correlation engine. This is a caller bug, not a data problem.
	ErrDimensionMismatch = eris.New("dimension mismatch")

	// ErrEmptyDataset means aggregation was requested over zero usable records.
	ErrEmptyDataset = eris.New("empty dataset")
)
