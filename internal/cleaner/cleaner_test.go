package cleaner_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"mediakeeper/internal/cleaner"
	"mediakeeper/internal/journal"
	"mediakeeper/internal/services"
	"mediakeeper/internal/services/transmission"
)

type fakeClient struct {
	torrents []transmission.Torrent
	listErr  error
	failIDs  map[int64]error
	removed  []int64
	deletes  []bool
}

func (f *fakeClient) Torrents(context.Context) ([]transmission.Torrent, error) {
	return f.torrents, f.listErr
}

func (f *fakeClient) Remove(_ context.Context, id int64, deleteLocalData bool) error {
	if err := f.failIDs[id]; err != nil {
		return err
	}
	f.removed = append(f.removed, id)
	f.deletes = append(f.deletes, deleteLocalData)
	return nil
}

type memJournal struct {
	rows []journal.Removal
}

func (m *memJournal) RecordRemoval(_ context.Context, r journal.Removal) error {
	m.rows = append(m.rows, r)
	return nil
}

func sampleTorrents() []transmission.Torrent {
	return []transmission.Torrent{
		{ID: 1, Name: "stopped-a", Status: transmission.StatusStopped, PercentDone: 1},
		{ID: 2, Name: "seeding", Status: transmission.StatusSeed, RateUpload: 2048},
		{ID: 3, Name: "stopped-b", Status: transmission.StatusStopped, PercentDone: 0.4},
		{ID: 4, Name: "downloading", Status: transmission.StatusDownload, RateDownload: 1 << 20},
		{ID: 5, Name: "stopped-c", Status: transmission.StatusStopped},
	}
}

func TestRunRemovesOnlyStoppedAndContinuesAfterFailure(t *testing.T) {
	client := &fakeClient{
		torrents: sampleTorrents(),
		failIDs:  map[int64]error{3: services.Wrap(services.ErrTransient, "transmission", "torrent-remove", "boom", nil)},
	}
	history := &memJournal{}
	ctx := services.WithRunID(context.Background(), "run-7")

	result, err := cleaner.New(cleaner.Options{Client: client, Journal: history}).Run(ctx)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !reflect.DeepEqual(client.removed, []int64{1, 5}) {
		t.Fatalf("unexpected removals: %v", client.removed)
	}
	for _, deleteData := range client.deletes {
		if !deleteData {
			t.Fatal("expected local data deletion")
		}
	}
	if result.Listed != 5 || len(result.Candidates) != 3 || result.Removed != 2 || result.Failed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(history.rows) != 3 {
		t.Fatalf("expected a history row per stopped task, got %d", len(history.rows))
	}
	if history.rows[1].Outcome != "failed" || history.rows[1].TaskID != 3 || history.rows[1].RunID != "run-7" {
		t.Fatalf("unexpected failure row: %+v", history.rows[1])
	}
}

func TestRunDryRunRemovesNothing(t *testing.T) {
	client := &fakeClient{torrents: sampleTorrents()}
	history := &memJournal{}

	result, err := cleaner.New(cleaner.Options{Client: client, Journal: history, DryRun: true}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(client.removed) != 0 {
		t.Fatalf("dry run removed tasks: %v", client.removed)
	}
	if !result.DryRun || len(result.Candidates) != 3 || result.Removed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	for _, row := range history.rows {
		if row.Outcome != cleaner.OutcomeDryRun {
			t.Fatalf("unexpected outcome %q", row.Outcome)
		}
	}
}

func TestRunEmptyList(t *testing.T) {
	result, err := cleaner.New(cleaner.Options{Client: &fakeClient{}}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Listed != 0 || len(result.Candidates) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestRunListFailure(t *testing.T) {
	listErr := services.Wrap(services.ErrSessionConflict, "transmission", "torrent-get", "", nil)
	_, err := cleaner.New(cleaner.Options{Client: &fakeClient{listErr: listErr}}).Run(context.Background())
	if !errors.Is(err, services.ErrSessionConflict) {
		t.Fatalf("expected session conflict to surface, got %v", err)
	}
}
