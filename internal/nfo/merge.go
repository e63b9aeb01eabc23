package nfo

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/cases"
)

const declaration = `version="1.0" encoding="UTF-8"`

// Credit is one person returned by the metadata source.
type Credit struct {
	Name      string
	LatinName string
	Character string
}

// Credits groups the people fetched for one title.
type Credits struct {
	Directors []Credit
	Actors    []Credit
}

// Empty reports whether no people were fetched.
func (c Credits) Empty() bool {
	return len(c.Directors) == 0 && len(c.Actors) == 0
}

// MergeResult counts the entries rewritten by Merge.
type MergeResult struct {
	Directors int
	Actors    int
}

// Rewritten returns the total number of rewritten entries.
func (r MergeResult) Rewritten() int {
	return r.Directors + r.Actors
}

// Merge rewrites the director and actor entries of the sidecar at path whose
// current name matches a fetched credit. The file is written back only when at
// least one entry was rewritten.
func Merge(path string, credits Credits) (MergeResult, error) {
	var result MergeResult
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrUnrecognized, path, err)
	}
	root := doc.Root()
	if root == nil {
		return result, fmt.Errorf("%w: %s: empty document", ErrUnrecognized, path)
	}

	directors := newIndex(credits.Directors)
	for _, el := range root.FindElements(".//director") {
		if credit, ok := directors.lookup(el.Text()); ok {
			el.SetText(credit.Name)
			result.Directors++
		}
	}

	actors := newIndex(credits.Actors)
	for _, el := range root.FindElements(".//actor") {
		name := el.SelectElement("name")
		if name == nil {
			continue
		}
		credit, ok := actors.lookup(name.Text())
		if !ok {
			continue
		}
		name.SetText(credit.Name)
		role := el.SelectElement("role")
		if role == nil {
			role = el.CreateElement("role")
		}
		role.SetText(credit.Character)
		result.Actors++
	}

	if result.Rewritten() == 0 {
		return result, nil
	}
	setDeclaration(doc)
	if err := doc.WriteToFile(path); err != nil {
		return result, fmt.Errorf("write %s: %w", path, err)
	}
	return result, nil
}

func setDeclaration(doc *etree.Document) {
	for _, token := range doc.Child {
		if pi, ok := token.(*etree.ProcInst); ok && pi.Target == "xml" {
			pi.Inst = declaration
			return
		}
	}
	doc.InsertChildAt(0, etree.NewText("\n"))
	doc.InsertChildAt(0, etree.NewProcInst("xml", declaration))
}

// creditIndex finds the first credit whose name or latin name folds equal to a key.
type creditIndex struct {
	credits []Credit
	keys    [][2]string
}

func newIndex(credits []Credit) creditIndex {
	idx := creditIndex{credits: credits, keys: make([][2]string, len(credits))}
	for i, c := range credits {
		idx.keys[i] = [2]string{foldName(c.Name), foldName(c.LatinName)}
	}
	return idx
}

func (idx creditIndex) lookup(text string) (Credit, bool) {
	key := foldName(text)
	if key == "" {
		return Credit{}, false
	}
	for i, k := range idx.keys {
		if k[0] == key || k[1] == key {
			return idx.credits[i], true
		}
	}
	return Credit{}, false
}

func foldName(value string) string {
	return cases.Fold().String(strings.TrimSpace(value))
}
