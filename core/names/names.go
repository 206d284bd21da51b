// Package names maps URL slugs, display abbreviations and full book names,
// and routes each book to the corpus file that contains it.
package names

import (
	"sort"
)

// Corpus file identities, one per corpus area.
const (
	OldTestament         = "old-testament.json"
	NewTestament         = "new-testament.json"
	BookOfMormon         = "book-of-mormon.json"
	DoctrineAndCovenants = "doctrine-and-covenants.json"
	PearlOfGreatPrice    = "pearl-of-great-price.json"
)

// Tables holds the raw lookup data used to build a Table.
type Tables struct {
	Slugs     map[string]string // URL slug -> abbreviation
	FullNames map[string]string // abbreviation -> full name used in the corpus
	Files     map[string]string // abbreviation -> corpus file id
}

// Table is an immutable lookup service over Tables.
// The zero value answers every lookup with absence.
type Table struct {
	slugs     map[string]string
	fullNames map[string]string
	files     map[string]string
}

// New copies t into a Table. Later changes to t do not affect the result.
func New(t Tables) *Table {
	return &Table{
		slugs:     copyMap(t.Slugs),
		fullNames: copyMap(t.FullNames),
		files:     copyMap(t.Files),
	}
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Abbreviation returns the canonical abbreviation for a URL slug.
func (t *Table) Abbreviation(slug string) (string, bool) {
	abbrev, ok := t.slugs[slug]
	return abbrev, ok
}

// FullName returns the corpus book name for an abbreviation, or the
// abbreviation itself when no full name is known.
func (t *Table) FullName(abbrev string) string {
	if name, ok := t.fullNames[abbrev]; ok {
		return name
	}
	return abbrev
}

// CorpusFile returns the corpus file id that holds the book.
func (t *Table) CorpusFile(abbrev string) (string, bool) {
	file, ok := t.files[abbrev]
	return file, ok
}

// Books returns every abbreviation with a corpus file, sorted by file then abbreviation.
func (t *Table) Books() []string {
	books := make([]string, 0, len(t.files))
	for abbrev := range t.files {
		books = append(books, abbrev)
	}
	sort.Slice(books, func(i, j int) bool {
		fi, fj := t.files[books[i]], t.files[books[j]]
		if fi != fj {
			return fi < fj
		}
		return books[i] < books[j]
	})
	return books
}

// Files returns the distinct corpus file ids, sorted.
func (t *Table) Files() []string {
	seen := make(map[string]bool)
	var files []string
	for _, f := range t.files {
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}
	sort.Strings(files)
	return files
}

var defaultTable = New(Tables{
	Slugs:     defaultSlugs,
	FullNames: defaultFullNames,
	Files:     defaultFiles,
})

// Default returns the built-in tables for the standard works.
func Default() *Table {
	return defaultTable
}
