// Package batch turns a list of raw citations into reference/text records.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/FocuswithJustin/versefetch/core/cache"
	"github.com/FocuswithJustin/versefetch/core/corpus"
	"github.com/FocuswithJustin/versefetch/core/ref"
	"github.com/FocuswithJustin/versefetch/internal/logging"
)

// Sentinel texts emitted in place of verse text.
const (
	ParseFailedText   = "Scripture not found/parsed."
	NotFoundText      = corpus.NotFoundText
	dataMissingPrefix = "Data not available for book: "
)

// DataMissingText is the record text for a book whose corpus could not be loaded.
func DataMissingText(book string) string {
	return dataMissingPrefix + book
}

// Record is one output entry.
type Record struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
}

// Parser parses one raw citation.
type Parser interface {
	Parse(raw string) (*ref.Reference, error)
}

// Corpora supplies corpus documents per book.
type Corpora interface {
	Get(ctx context.Context, book string) (*corpus.Document, error)
}

// Prefetcher is implemented by Corpora that can load several books up front.
type Prefetcher interface {
	Prefetch(ctx context.Context, books []string, workers int) error
}

// Runner wires parsing, corpus loading and verse resolution together.
type Runner struct {
	Parser  Parser
	Corpora Corpora
	Names   corpus.FullNamer

	// Workers > 1 parses every citation first and prefetches the distinct
	// corpus files concurrently before emitting records in input order.
	Workers int
}

// NewRunner builds a Runner from the standard components.
func NewRunner(parser Parser, corpora Corpora, names corpus.FullNamer) *Runner {
	return &Runner{Parser: parser, Corpora: corpora, Names: names, Workers: 1}
}

// Run returns exactly one record per citation, in input order. No failure
// of a single citation stops the batch.
func (r *Runner) Run(ctx context.Context, citations []string) []Record {
	start := time.Now()
	records := make([]Record, len(citations))

	parsed := make([]*ref.Reference, len(citations))
	errs := make([]error, len(citations))
	for i, raw := range citations {
		parsed[i], errs[i] = r.parse(raw)
	}

	if r.Workers > 1 {
		r.prefetch(ctx, parsed)
	}

	resolved := 0
	for i, raw := range citations {
		if errs[i] != nil {
			logging.CitationFailed(ctx, i, raw, "parse", errs[i])
			records[i] = Record{Reference: raw, Text: ParseFailedText}
			continue
		}
		var ok bool
		records[i], ok = r.resolve(ctx, i, parsed[i])
		if ok {
			resolved++
		}
	}

	var fetches int64
	if s, ok := r.Corpora.(interface{ Stats() cache.Stats }); ok {
		fetches = s.Stats().Fetches
	}
	logging.BatchSummary(ctx, len(citations), resolved, fetches, time.Since(start))
	return records
}

func (r *Runner) parse(raw string) (out *ref.Reference, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, fmt.Errorf("panic while parsing: %v", p)
		}
	}()
	return r.Parser.Parse(raw)
}

func (r *Runner) prefetch(ctx context.Context, parsed []*ref.Reference) {
	p, ok := r.Corpora.(Prefetcher)
	if !ok {
		return
	}
	var books []string
	for _, reference := range parsed {
		if reference != nil {
			books = append(books, reference.Book())
		}
	}
	if err := p.Prefetch(ctx, books, r.Workers); err != nil {
		logging.WarnContext(ctx, "prefetch interrupted", "error", err.Error())
	}
}

// resolve loads and resolves one parsed citation. ok is false when the
// record carries a sentinel instead of verse text.
func (r *Runner) resolve(ctx context.Context, index int, reference *ref.Reference) (rec Record, ok bool) {
	rec.Reference = reference.Display()
	defer func() {
		if p := recover(); p != nil {
			logging.CitationFailed(ctx, index, rec.Reference, "resolve", fmt.Errorf("panic: %v", p))
			rec.Text, ok = NotFoundText, false
		}
	}()

	doc, err := r.Corpora.Get(ctx, reference.Book())
	if err != nil {
		logging.CitationFailed(ctx, index, rec.Reference, "corpus", err)
		rec.Text = DataMissingText(reference.Book())
		return rec, false
	}

	text, found, err := corpus.Resolve(reference, doc, r.Names)
	if err != nil {
		logging.CitationFailed(ctx, index, rec.Reference, "resolve", err)
		rec.Text = NotFoundText
		return rec, false
	}
	if !found {
		logging.CitationFailed(ctx, index, rec.Reference, "resolve", nil, "reason", "no verses collected")
		rec.Text = NotFoundText
		return rec, false
	}
	rec.Text = text
	return rec, true
}
