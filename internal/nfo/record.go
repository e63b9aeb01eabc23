package nfo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Extension is the sidecar file suffix.
const Extension = ".nfo"

// MediaType distinguishes movie and TV sidecars.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

var (
	// ErrUnrecognized marks documents with an unknown root element or malformed XML.
	ErrUnrecognized = errors.New("unrecognized nfo document")
	// ErrNoTitle marks recognized documents that carry no usable title.
	ErrNoTitle = errors.New("nfo document has no title")
)

// Record holds the lookup fields extracted from a sidecar.
type Record struct {
	Path      string
	MediaType MediaType
	Title     string
	Year      string
	IMDbID    string
}

// Read parses the sidecar at path. Read and parse failures are reported as
// ErrUnrecognized so callers can skip the file without aborting a run.
func Read(path string) (Record, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return Record{}, fmt.Errorf("%w: %s: %w", ErrUnrecognized, path, err)
	}
	root := doc.Root()
	if root == nil {
		return Record{}, fmt.Errorf("%w: %s: empty document", ErrUnrecognized, path)
	}

	record := Record{Path: path}
	switch root.Tag {
	case "movie":
		record.MediaType = MediaMovie
	case "tvshow":
		record.MediaType = MediaTV
	default:
		return Record{}, fmt.Errorf("%w: %s: root element <%s>", ErrUnrecognized, path, root.Tag)
	}

	record.Title = firstText(root, ".//title")
	record.Year = firstText(root, ".//year")
	record.IMDbID = firstText(root, ".//uniqueid[@type='imdb']")
	if record.Title == "" {
		return record, fmt.Errorf("%w: %s", ErrNoTitle, path)
	}
	return record, nil
}

func firstText(root *etree.Element, path string) string {
	el := root.FindElement(path)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}
