package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// CandidateRow is one persisted candidate returned by a query.
type CandidateRow struct {
	RunID      string
	Genome     string
	Gene       string
	Family     string
	Confidence string
	Length     int
	Score      float64
	Rank       int
	Product    string
}

// CandidateFilter narrows TopCandidates results. Zero values mean
// "no constraint".
type CandidateFilter struct {
	RunID    string
	Genome   string
	Family   string
	MinScore float64
	Limit    uint64
}

// TopCandidates returns persisted candidates matching the filter,
// best first, with the same tie-break as the in-memory ranking.
func (s *Store) TopCandidates(f CandidateFilter) ([]CandidateRow, error) {
	q := sq.Select("run_id", "genome", "gene", "family", "confidence",
		"length", "score", "candidate_rank", "product").
		From("candidates").
		OrderBy("score DESC", "genome ASC", "gene ASC")

	if f.RunID != "" {
		q = q.Where(sq.Eq{"run_id": f.RunID})
	}
	if f.Genome != "" {
		q = q.Where(sq.Eq{"genome": f.Genome})
	}
	if f.Family != "" {
		q = q.Where(sq.Eq{"family": f.Family})
	}
	if f.MinScore > 0 {
		q = q.Where(sq.GtOrEq{"score": f.MinScore})
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []CandidateRow
	for rows.Next() {
		var r CandidateRow
		if err := rows.Scan(&r.RunID, &r.Genome, &r.Gene, &r.Family,
			&r.Confidence, &r.Length, &r.Score, &r.Rank, &r.Product); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

// RunIDs returns all persisted run identifiers, newest first.
func (s *Store) RunIDs() ([]string, error) {
	query, args, err := sq.Select("run_id").
		From("runs").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
