package dataset

import (
	"time"

	"github.com/google/uuid"

	"github.com/civicdata/cpahealth/internal/model"
)

// Snapshot is the fully-derived record sequence from one dataset load.
// It is frozen at creation: consumers share it read-only, and a reload
// produces a fresh snapshot rather than patching this one.
type Snapshot struct {
	ID       string       `json:"id"`
	Source   string       `json:"source"`
	LoadedAt time.Time    `json:"loaded_at"`
	Towns    []model.Town `json:"towns"`
}

// NewSnapshot freezes a derived town sequence under a fresh load ID.
func NewSnapshot(source string, towns []model.Town) *Snapshot {
	return &Snapshot{
		ID:       uuid.NewString(),
		Source:   source,
		LoadedAt: time.Now().UTC(),
		Towns:    towns,
	}
}

// CloneTowns returns deep copies of the records for callers that need a
// mutable working set without touching the frozen sequence.
func (s *Snapshot) CloneTowns() []model.Town {
	out := make([]model.Town, len(s.Towns))
	for i, t := range s.Towns {
		out[i] = t.Clone()
	}
	return out
}
