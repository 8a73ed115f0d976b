// Package bbolt implements the ports.RunStore interface using bbolt
// (embedded B+ tree). All runs live in a single "runs" bucket, keyed by
// run ID. Writes are transactional, so a crash mid-write cannot corrupt
// previously committed runs.
package bbolt

import (
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mypersonaltherapeutics/qtip/internal/ports"
)

var bucketRuns = []byte("runs")

// Store implements ports.RunStore backed by bbolt.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun persists one finished run, overwriting any record with the
// same ID.
func (s *Store) SaveRun(rec *ports.RunRecord) error {
	if rec == nil {
		return fmt.Errorf("nil run record")
	}
	if rec.ID == "" {
		return fmt.Errorf("run record has no ID")
	}

	blob, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketRuns)
		if err != nil {
			return err
		}
		return b.Put([]byte(rec.ID), blob)
	})
}

// LoadRun retrieves one archived run.
// Returns ports.ErrRunNotFound for unknown IDs.
func (s *Store) LoadRun(id string) (*ports.RunRecord, error) {
	var rec *ports.RunRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return ports.ErrRunNotFound
		}
		v := b.Get([]byte(id))
		if v == nil {
			return ports.ErrRunNotFound
		}
		var derr error
		rec, derr = decodeRecord(v)
		return derr
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListRuns returns summaries of every archived run, newest first.
func (s *Store) ListRuns() ([]ports.RunSummary, error) {
	var runs []ports.RunSummary

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			rec, err := decodeRecord(v)
			if err != nil {
				return fmt.Errorf("run %s: %w", k, err)
			}
			runs = append(runs, ports.RunSummary{
				ID:         rec.ID,
				FinishedAt: rec.FinishedAt,
				Reads:      rec.Reads,
				Recovered:  rec.Recovered,
				Policy:     rec.Policy,
				AlignerCmd: rec.AlignerCmd,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].FinishedAt.Equal(runs[j].FinishedAt) {
			return runs[i].FinishedAt.After(runs[j].FinishedAt)
		}
		return runs[i].ID > runs[j].ID
	})
	return runs, nil
}

// DeleteRun removes one archived run.
// Idempotent: deleting a nonexistent run is not an error.
func (s *Store) DeleteRun(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(id))
	})
}
