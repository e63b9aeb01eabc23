package journal

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Enrichment records one attempt to enrich a sidecar.
type Enrichment struct {
	RunID      string
	Path       string
	MediaType  string
	Title      string
	Year       string
	SubjectIDs []string
	Directors  int
	Actors     int
	Outcome    string
	Detail     string
	CreatedAt  time.Time
}

// Removal records one attempt to delete a download task.
type Removal struct {
	RunID     string
	TaskID    int64
	Name      string
	Outcome   string
	Detail    string
	CreatedAt time.Time
}

// Kinds reported by Recent.
const (
	KindEnrich = "enrich"
	KindClean  = "clean"
)

// Entry is a unified history row.
type Entry struct {
	Kind      string
	RunID     string
	Subject   string
	Outcome   string
	Detail    string
	CreatedAt time.Time
}

// RecordEnrichment appends an enrichment row.
func (s *Store) RecordEnrichment(ctx context.Context, e Enrichment) error {
	err := s.exec(ctx, `INSERT INTO enrichments
		(run_id, path, media_type, title, year, subject_ids, directors, actors, outcome, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Path, e.MediaType, e.Title, e.Year, strings.Join(e.SubjectIDs, ","),
		e.Directors, e.Actors, e.Outcome, e.Detail, formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record enrichment: %w", err)
	}
	return nil
}

// RecordRemoval appends a removal row.
func (s *Store) RecordRemoval(ctx context.Context, r Removal) error {
	err := s.exec(ctx, `INSERT INTO removals
		(run_id, task_id, name, outcome, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.RunID, r.TaskID, r.Name, r.Outcome, r.Detail, formatTime(r.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("record removal: %w", err)
	}
	return nil
}

// Recent returns the newest history rows across both pipelines.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, run_id, subject, outcome, detail, created_at FROM (
			SELECT 'enrich' AS kind, run_id, path AS subject, outcome, detail, created_at, id FROM enrichments
			UNION ALL
			SELECT 'clean' AS kind, run_id, name || ' (#' || task_id || ')' AS subject, outcome, detail, created_at, id FROM removals
		)
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry   Entry
			created string
		)
		if err := rows.Scan(&entry.Kind, &entry.RunID, &entry.Subject, &entry.Outcome, &entry.Detail, &created); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entry.CreatedAt = parseTime(created)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// EnrichmentsForPath returns every recorded attempt for path, oldest first.
func (s *Store) EnrichmentsForPath(ctx context.Context, path string) ([]Enrichment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, path, media_type, title, year, subject_ids, directors, actors, outcome, detail, created_at
		FROM enrichments WHERE path = ? ORDER BY id`, path)
	if err != nil {
		return nil, fmt.Errorf("query enrichments: %w", err)
	}
	defer rows.Close()

	var out []Enrichment
	for rows.Next() {
		var (
			e       Enrichment
			ids     string
			created string
		)
		if err := rows.Scan(&e.RunID, &e.Path, &e.MediaType, &e.Title, &e.Year, &ids,
			&e.Directors, &e.Actors, &e.Outcome, &e.Detail, &created); err != nil {
			return nil, fmt.Errorf("scan enrichment: %w", err)
		}
		if ids != "" {
			e.SubjectIDs = strings.Split(ids, ",")
		}
		e.CreatedAt = parseTime(created)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrichments: %w", err)
	}
	return out, nil
}

// CountRemovals returns how many removal rows carry outcome.
func (s *Store) CountRemovals(ctx context.Context, outcome string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM removals WHERE outcome = ?", outcome).Scan(&count); err != nil {
		return 0, fmt.Errorf("count removals: %w", err)
	}
	return count, nil
}
