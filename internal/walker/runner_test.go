package walker_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediakeeper/internal/journal"
	"mediakeeper/internal/nfo"
	"mediakeeper/internal/services"
	"mediakeeper/internal/walker"
)

type fakeResolver struct {
	ids      map[string][]string
	credits  nfo.Credits
	resolved []string
}

func (f *fakeResolver) Resolve(_ context.Context, record nfo.Record) []string {
	f.resolved = append(f.resolved, record.Path)
	return f.ids[record.Title]
}

func (f *fakeResolver) FetchCredits(context.Context, []string, nfo.MediaType) nfo.Credits {
	return f.credits
}

type memLedger struct {
	entries map[string]bool
	order   []string
}

func (m *memLedger) Contains(path string) bool { return m.entries[path] }

func (m *memLedger) Append(path string) error {
	m.entries[path] = true
	m.order = append(m.order, path)
	return nil
}

type memJournal struct {
	rows []journal.Enrichment
}

func (m *memJournal) RecordEnrichment(_ context.Context, e journal.Enrichment) error {
	m.rows = append(m.rows, e)
	return nil
}

type countingPacer struct{ pauses int }

func (c *countingPacer) Pause(context.Context, string) error {
	c.pauses++
	return nil
}

func writeFile(t *testing.T, root, rel, body string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestRunnerLedgerOnlyAfterRewrite(t *testing.T) {
	root := t.TempDir()
	enriched := writeFile(t, root, "a/movie.nfo", `<movie><title>Inception</title><year>2010</year><director>Christopher Nolan</director></movie>`)
	unmatched := writeFile(t, root, "b/movie.nfo", `<movie><title>Heat</title><director>Michael Mann</director></movie>`)
	unresolved := writeFile(t, root, "c/movie.nfo", `<movie><title>Nothing</title></movie>`)
	writeFile(t, root, "d/episode.nfo", `<episodedetails><title>Pilot</title></episodedetails>`)
	writeFile(t, root, "e/movie.nfo", `<movie><year>2001</year></movie>`)

	resolver := &fakeResolver{
		ids: map[string][]string{"Inception": {"1"}, "Heat": {"2"}},
		credits: nfo.Credits{Directors: []nfo.Credit{
			{Name: "克里斯托弗·诺兰", LatinName: "Christopher Nolan"},
		}},
	}
	ledger := &memLedger{entries: map[string]bool{}}
	history := &memJournal{}
	pacer := &countingPacer{}

	runner := walker.NewRunner(walker.Options{
		Root:     root,
		Resolver: resolver,
		Ledger:   ledger,
		Journal:  history,
		Pacer:    pacer,
	})
	ctx := services.WithRunID(context.Background(), "run-42")
	summary, err := runner.Run(ctx)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Discovered != 5 || summary.Enriched != 1 || summary.Unmatched != 1 ||
		summary.Unresolved != 1 || summary.Skipped != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(ledger.order) != 1 || ledger.order[0] != enriched {
		t.Fatalf("expected only the enriched file in the ledger, got %v", ledger.order)
	}
	if ledger.entries[unmatched] || ledger.entries[unresolved] {
		t.Fatal("unmatched or unresolved files must stay eligible")
	}
	if pacer.pauses != 3 {
		t.Fatalf("expected a pause per titled file (3), got %d", pacer.pauses)
	}
	if len(resolver.resolved) != 3 {
		t.Fatalf("resolver should only see titled records, got %v", resolver.resolved)
	}
	if len(history.rows) != 5 {
		t.Fatalf("expected a history row per file, got %d", len(history.rows))
	}
	for _, row := range history.rows {
		if row.RunID != "run-42" {
			t.Fatalf("expected run id on every row, got %+v", row)
		}
	}

	data, err := os.ReadFile(enriched)
	if err != nil {
		t.Fatalf("read enriched: %v", err)
	}
	if !strings.Contains(string(data), "克里斯托弗·诺兰") {
		t.Fatalf("expected rewritten director, got %s", data)
	}
}

func TestRunnerSkipsLedgerMembers(t *testing.T) {
	root := t.TempDir()
	done := writeFile(t, root, "a/movie.nfo", `<movie><title>Inception</title></movie>`)
	resolver := &fakeResolver{}
	ledger := &memLedger{entries: map[string]bool{done: true}}

	summary, err := walker.NewRunner(walker.Options{Root: root, Resolver: resolver, Ledger: ledger}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Discovered != 0 || len(resolver.resolved) != 0 {
		t.Fatalf("processed file was revisited: %+v %v", summary, resolver.resolved)
	}
}

func TestRunnerStopsOnCancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/movie.nfo", `<movie><title>A</title></movie>`)
	writeFile(t, root, "b/movie.nfo", `<movie><title>B</title></movie>`)
	resolver := &fakeResolver{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := walker.NewRunner(walker.Options{Root: root, Resolver: resolver, Ledger: &memLedger{entries: map[string]bool{}}}).Run(ctx)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if len(resolver.resolved) != 0 {
		t.Fatalf("no file should be processed after cancellation, got %v", resolver.resolved)
	}
}
