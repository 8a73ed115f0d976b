// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import (
	"errors"
	"time"
)

// ErrRunNotFound is returned by RunStore lookups for unknown run IDs.
var ErrRunNotFound = errors.New("run not found")

// RunStore archives finished evaluation runs to durable storage.
// The backing store (bbolt) holds one record per run, keyed by run ID.
//
// Crash safety: SaveRun must be transactional. A crash mid-write must not
// corrupt previously committed runs.
type RunStore interface {
	// SaveRun persists a finished run. Overwrites any prior record with
	// the same ID.
	SaveRun(rec *RunRecord) error

	// LoadRun retrieves one archived run.
	// Returns ErrRunNotFound for unknown IDs.
	LoadRun(id string) (*RunRecord, error)

	// ListRuns returns summaries of all archived runs, newest first.
	ListRuns() ([]RunSummary, error)

	// DeleteRun removes one archived run.
	// Idempotent: deleting a nonexistent run is not an error.
	DeleteRun(id string) error

	// Close releases the underlying database.
	Close() error
}

// RunRecord is the archived form of one evaluation run: the configuration
// that produced it plus the final recovery tallies.
type RunRecord struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Fasta       []string `json:"fasta"`
	Scoring     string   `json:"scoring"`
	MinIdentity float64  `json:"min_identity"`
	NumReads    int      `json:"num_reads"`
	MinLength   int      `json:"min_length"`
	MaxLength   int      `json:"max_length"`
	Policy      string   `json:"policy"`
	Seed        int64    `json:"seed"`
	AlignerCmd  string   `json:"aligner_cmd"`

	// Tallies as sorted rows (ascending score, then length).
	ByScore    []ScoreCounts    `json:"by_score"`
	ByScoreLen []ScoreLenCounts `json:"by_score_len"`

	Reads     int `json:"reads"`
	Recovered int `json:"recovered"`
	Failed    int `json:"failed"`
}

// ScoreCounts is one row of the per-expected-score tally.
type ScoreCounts struct {
	Score     int `json:"score"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// ScoreLenCounts is one row of the per-(expected score, read length) tally.
type ScoreLenCounts struct {
	Score     int `json:"score"`
	Length    int `json:"length"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// RunSummary is the list-view projection of a RunRecord.
type RunSummary struct {
	ID         string    `json:"id"`
	FinishedAt time.Time `json:"finished_at"`
	Reads      int       `json:"reads"`
	Recovered  int       `json:"recovered"`
	Policy     string    `json:"policy"`
	AlignerCmd string    `json:"aligner_cmd"`
}
