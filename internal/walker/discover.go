package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"mediakeeper/internal/logging"
	"mediakeeper/internal/nfo"
)

// Rules holds the exclusion lists applied during discovery.
type Rules struct {
	ExcludeDirs            []string
	ExcludedFilenames      []string
	ExcludedSubdirKeywords []string
}

// Membership reports whether a path was already processed.
type Membership interface {
	Contains(path string) bool
}

// excludedDir reports whether the directory at path should be pruned.
func (r Rules) excludedDir(path string, isRoot bool) bool {
	for _, keyword := range r.ExcludedSubdirKeywords {
		if keyword != "" && strings.Contains(path, keyword) {
			return true
		}
	}
	if isRoot {
		return false
	}
	base := filepath.Base(path)
	for _, name := range r.ExcludeDirs {
		if name == base {
			return true
		}
	}
	return false
}

func (r Rules) excludedFile(name string) bool {
	for _, excluded := range r.ExcludedFilenames {
		if excluded == name {
			return true
		}
	}
	return false
}

// Discover returns the sidecars under root that still need processing, in walk order.
func Discover(root string, rules Rules, seen Membership, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logging.WarnWithContext(logger, "cannot read path during scan", "walk_error",
				logging.String(logging.FieldPath, path),
				logging.Error(walkErr),
				logging.String(logging.FieldImpact, "entries below this path were not scanned"),
			)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if rules.excludedDir(path, path == root) {
				logger.Debug("excluded directory", logging.String(logging.FieldPath, path))
				return fs.SkipDir
			}
			return nil
		}
		name := d.Name()
		if !strings.HasSuffix(name, nfo.Extension) {
			return nil
		}
		if rules.excludedFile(name) {
			logger.Debug("excluded file", logging.String(logging.FieldPath, path))
			return nil
		}
		if seen != nil && seen.Contains(path) {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("media directory %s does not exist: %w", root, err)
		}
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return found, nil
}
