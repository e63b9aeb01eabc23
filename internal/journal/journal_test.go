package journal_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"mediakeeper/internal/journal"
)

func openStore(t *testing.T) *journal.Store {
	t.Helper()
	store, err := journal.Open(filepath.Join(t.TempDir(), "state", "mediakeeper.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordEnrichmentRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	want := journal.Enrichment{
		RunID:      "run-1",
		Path:       "/media/Inception/movie.nfo",
		MediaType:  "movie",
		Title:      "Inception",
		Year:       "2010",
		SubjectIDs: []string{"3541415", "42"},
		Directors:  1,
		Actors:     5,
		Outcome:    "enriched",
	}
	if err := store.RecordEnrichment(ctx, want); err != nil {
		t.Fatalf("RecordEnrichment returned error: %v", err)
	}

	got, err := store.EnrichmentsForPath(ctx, want.Path)
	if err != nil {
		t.Fatalf("EnrichmentsForPath returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	row := got[0]
	if row.Title != "Inception" || row.Actors != 5 || len(row.SubjectIDs) != 2 || row.SubjectIDs[1] != "42" {
		t.Fatalf("unexpected row: %+v", row)
	}
	if row.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be populated")
	}
}

func TestRecentMergesPipelinesNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.RecordEnrichment(ctx, journal.Enrichment{RunID: "a", Path: "/m/a.nfo", MediaType: "movie", Title: "A", Outcome: "unresolved", CreatedAt: base}); err != nil {
		t.Fatalf("RecordEnrichment: %v", err)
	}
	if err := store.RecordRemoval(ctx, journal.Removal{RunID: "b", TaskID: 7, Name: "ubuntu.iso", Outcome: "removed", CreatedAt: base.Add(time.Minute)}); err != nil {
		t.Fatalf("RecordRemoval: %v", err)
	}
	if err := store.RecordEnrichment(ctx, journal.Enrichment{RunID: "c", Path: "/m/c.nfo", MediaType: "tv", Title: "C", Outcome: "enriched", CreatedAt: base.Add(2 * time.Minute)}); err != nil {
		t.Fatalf("RecordEnrichment: %v", err)
	}

	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected limit to apply, got %d", len(entries))
	}
	if entries[0].Kind != journal.KindEnrich || entries[0].Subject != "/m/c.nfo" {
		t.Fatalf("unexpected newest entry: %+v", entries[0])
	}
	if entries[1].Kind != journal.KindClean || entries[1].Subject != "ubuntu.iso (#7)" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
	if !entries[1].CreatedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected timestamp: %v", entries[1].CreatedAt)
	}

	removed, err := store.CountRemovals(ctx, "removed")
	if err != nil || removed != 1 {
		t.Fatalf("CountRemovals = %d, %v", removed, err)
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediakeeper.db")
	store, err := journal.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := store.RecordRemoval(context.Background(), journal.Removal{RunID: "r", TaskID: 1, Name: "x", Outcome: "failed", Detail: "boom"}); err != nil {
		t.Fatalf("RecordRemoval: %v", err)
	}
	_ = store.Close()

	reopened, err := journal.Open(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()
	entries, err := reopened.Recent(context.Background(), 10)
	if err != nil || len(entries) != 1 || entries[0].Detail != "boom" {
		t.Fatalf("unexpected history after reopen: %+v, %v", entries, err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := journal.Open(" "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediakeeper.db")
	store, err := journal.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := journal.Open(path); !errors.Is(err, journal.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
