// Package ledger persists the set of NFO files that were already enriched.
//
// The ledger is a plain text file with one absolute path per line. It is read
// fully on Open and appended one line at a time afterwards. An exclusive lock
// on a sibling .lock file keeps a second mediakeeper process from writing the
// same ledger concurrently.
package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

// ErrLocked is returned by Open when another process holds the ledger.
var ErrLocked = errors.New("ledger is locked by another process")

// Ledger is the processed-file set.
type Ledger struct {
	mu      sync.Mutex
	path    string
	lock    *flock.Flock
	entries map[string]struct{}
}

// Open locks and loads the ledger at path. A missing file is an empty ledger.
func Open(path string) (*Ledger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("ledger path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure ledger directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ledger lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	entries, err := load(path)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	return &Ledger{path: path, lock: lock, entries: entries}, nil
}

func load(path string) (map[string]struct{}, error) {
	entries := make(map[string]struct{})
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entries, nil
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			entries[line] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	return entries, nil
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// Contains reports whether path was already processed.
func (l *Ledger) Contains(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[path]
	return ok
}

// Append records path as processed. Appending a known path is a no-op.
func (l *Ledger) Append(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("ledger entry must not be empty")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[path]; ok {
		return nil
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger for append: %w", err)
	}
	if _, err := file.WriteString(path + "\n"); err != nil {
		file.Close()
		return fmt.Errorf("append ledger entry: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	l.entries[path] = struct{}{}
	return nil
}

// Len returns the number of recorded paths.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns the recorded paths in lexical order.
func (l *Ledger) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.entries))
	for entry := range l.entries {
		out = append(out, entry)
	}
	sort.Strings(out)
	return out
}

// Close releases the ledger lock.
func (l *Ledger) Close() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
