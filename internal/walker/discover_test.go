package walker_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"mediakeeper/internal/walker"
)

type setMembership map[string]bool

func (s setMembership) Contains(path string) bool { return s[path] }

func touch(t *testing.T, root string, rel string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("<movie/>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDiscoverAppliesExclusions(t *testing.T) {
	root := t.TempDir()
	keep := touch(t, root, "Inception (2010)/movie.nfo")
	keepTV := touch(t, root, "Dark/tvshow.nfo")
	touch(t, root, "Dark/Season 1/S01E01.nfo")
	touch(t, root, "ShowSeasonal/tvshow.nfo")
	touch(t, root, "Inception (2010)/backdrops/extra.nfo")
	touch(t, root, "Inception (2010)/video1.nfo")
	touch(t, root, "Unknown/x.nfo")
	touch(t, root, "Heat/Extras/heat.nfo")
	touch(t, root, "Heat/poster.jpg")
	touch(t, root, "Heat/movie.NFO")
	done := touch(t, root, "Alien/movie.nfo")

	rules := walker.Rules{
		ExcludeDirs:            []string{"Extras"},
		ExcludedFilenames:      []string{"season.nfo", "video1.nfo"},
		ExcludedSubdirKeywords: []string{"Season", "Unknown", "backdrops"},
	}
	got, err := walker.Discover(root, rules, setMembership{done: true}, nil)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	want := []string{keepTV, keep}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected discovery:\n got %v\nwant %v", got, want)
	}
}

func TestDiscoverKeywordOnRootExcludesEverything(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Music")
	touch(t, root, "a/movie.nfo")

	got, err := walker.Discover(root, walker.Rules{ExcludedSubdirKeywords: []string{"Music"}}, nil, nil)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected nothing under an excluded root, got %v", got)
	}
}

func TestDiscoverExcludeDirsDoesNotApplyToRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "Extras")
	path := touch(t, root, "movie.nfo")

	got, err := walker.Discover(root, walker.Rules{ExcludeDirs: []string{"Extras"}}, nil, nil)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{path}) {
		t.Fatalf("expected root files to be scanned, got %v", got)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	if _, err := walker.Discover(filepath.Join(t.TempDir(), "absent"), walker.Rules{}, nil, nil); err == nil {
		t.Fatal("expected error for missing root")
	}
}
