// Package store persists learned state (throughput samples, benchmark
// results) in a BoltDB file. Every write commits immediately so a run's
// learning survives a crash of the next one.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"

	"cpbar/internal/logger"
)

const settingsBucket = "settings"

const benchmarkKey = "benchmark"

// BenchmarkRecord is the persisted outcome of a benchmark run.
type BenchmarkRecord struct {
	OptimalWorkers int               `json:"optimal_parallel_workers"`
	Date           string            `json:"benchmark_date"`
	Results        map[string]string `json:"benchmark_results"`
}

// Store is a handle to the state database. A nil *Store is valid and behaves
// as an empty, unwritable store; callers degrade to defaults.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the state database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(settingsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create settings bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Samples returns the throughput samples stored under key. A missing key or
// nil store yields an empty slice.
func (s *Store) Samples(key string) ([]float64, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	var samples []float64

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(settingsBucket)).Get([]byte(key))
		if data == nil {
			return nil
		}

		return json.Unmarshal(data, &samples)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read samples %q: %w", key, err)
	}

	return samples, nil
}

// SaveSamples persists the throughput samples under key.
func (s *Store) SaveSamples(key string, samples []float64) error {
	return s.put(key, samples)
}

// Benchmark returns the persisted benchmark record, or nil if none exists.
func (s *Store) Benchmark() (*BenchmarkRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}

	var rec *BenchmarkRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(settingsBucket)).Get([]byte(benchmarkKey))
		if data == nil {
			return nil
		}

		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark record: %w", err)
	}

	return rec, nil
}

// SaveBenchmark persists the benchmark record.
func (s *Store) SaveBenchmark(rec BenchmarkRecord) error {
	return s.put(benchmarkKey, rec)
}

// OptimalWorkers returns the benchmarked worker count, or fallback when no
// benchmark has been run or the store is unreadable.
func (s *Store) OptimalWorkers(fallback int) int {
	rec, err := s.Benchmark()
	if err != nil {
		logger.Warnf("Could not read benchmark record: %v", err)
		return fallback
	}

	if rec == nil || rec.OptimalWorkers <= 0 {
		return fallback
	}

	return rec.OptimalWorkers
}

func (s *Store) put(key string, v any) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("state database not open")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %q: %w", key, err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(settingsBucket)).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save %q: %w", key, err)
	}

	return nil
}
