// Package store persists batch results to DuckDB so runs can be
// compared and queried after the fact.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/seqlab/enzymescan/internal/batch"
)

// Store manages a DuckDB connection for batch result persistence.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create result directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR,
			created_at TIMESTAMP,
			genome_count INTEGER,
			partial BOOLEAN
		)`,
		`CREATE TABLE IF NOT EXISTS genome_stats (
			run_id VARCHAR,
			genome VARCHAR,
			status VARCHAR,
			error_message VARCHAR,
			sequences INTEGER,
			total_length BIGINT,
			gc_fraction DOUBLE,
			n50 BIGINT,
			n90 BIGINT,
			max_length BIGINT,
			min_length BIGINT,
			mean_length DOUBLE,
			quality VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS candidates (
			run_id VARCHAR,
			genome VARCHAR,
			gene VARCHAR,
			family VARCHAR,
			confidence VARCHAR,
			length INTEGER,
			score DOUBLE,
			candidate_rank INTEGER,
			product VARCHAR
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveResult persists a complete batch result, one transaction per run.
func (s *Store) SaveResult(r *batch.Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, created_at, genome_count, partial) VALUES (?, ?, ?, ?)`,
		r.RunID, time.Now().UTC(), len(r.Order), r.Partial,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, id := range r.Order {
		gr := r.Genomes[id]

		status := "ok"
		errText := ""
		if gr.Err != nil {
			status = "failed"
			errText = gr.Err.Error()
		}

		if gr.Stats != nil {
			st := gr.Stats
			if _, err := tx.Exec(
				`INSERT INTO genome_stats (run_id, genome, status, error_message, sequences,
					total_length, gc_fraction, n50, n90, max_length, min_length,
					mean_length, quality)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.RunID, id, status, errText, st.SequenceCount,
				st.TotalLength, st.GCFraction, st.N50, st.N90, st.MaxLength,
				st.MinLength, st.MeanLength, st.Quality(),
			); err != nil {
				return fmt.Errorf("insert stats for %s: %w", id, err)
			}
		} else {
			if _, err := tx.Exec(
				`INSERT INTO genome_stats (run_id, genome, status, error_message) VALUES (?, ?, ?, ?)`,
				r.RunID, id, status, errText,
			); err != nil {
				return fmt.Errorf("insert stats for %s: %w", id, err)
			}
		}

		for _, c := range gr.Candidates {
			if _, err := tx.Exec(
				`INSERT INTO candidates (run_id, genome, gene, family, confidence,
					length, score, candidate_rank, product)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.RunID, id, c.Gene.ID, string(c.Family), c.Confidence.String(),
				c.Gene.Length, c.Score, c.Rank, c.Gene.Product,
			); err != nil {
				return fmt.Errorf("insert candidate %s/%s: %w", id, c.Gene.ID, err)
			}
		}
	}

	return tx.Commit()
}
