// Package cache loads corpus documents on demand and keeps them for the
// lifetime of a batch run.
//
// Documents are keyed by corpus file id, so books that share a file share
// one document. Each file id is fetched at most once per Store, including
// failed fetches, whose error is remembered and returned to later callers.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/FocuswithJustin/versefetch/core/corpus"
	"github.com/FocuswithJustin/versefetch/core/errors"
	"github.com/FocuswithJustin/versefetch/internal/logging"
)

// Fetcher retrieves the raw bytes of a corpus file.
type Fetcher interface {
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc func(ctx context.Context, fileID string) ([]byte, error)

// Fetch calls f.
func (f FetchFunc) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	return f(ctx, fileID)
}

// FileRouter maps a book abbreviation to its corpus file id.
type FileRouter interface {
	CorpusFile(abbrev string) (string, bool)
}

// Stats contains cache statistics.
type Stats struct {
	Hits    int64 // Get calls served from memory
	Misses  int64 // Get calls that had to wait for a fetch
	Fetches int64 // Calls made to the Fetcher
	Failed  int64 // Fetches that ended in a transport or decode error
	Size    int   // Distinct file ids held, including failures
}

// entry holds the outcome of one file fetch.
type entry struct {
	doc *corpus.Document
	err error // *errors.CorpusError with an empty Book
}

// Store is a concurrency-safe, run-scoped corpus cache.
type Store struct {
	router  FileRouter
	fetcher Fetcher

	mu      sync.Mutex
	entries map[string]*entry
	stats   Stats
	group   singleflight.Group
}

// New creates a Store that routes books through router and loads files with fetcher.
func New(router FileRouter, fetcher Fetcher) *Store {
	return &Store{
		router:  router,
		fetcher: fetcher,
		entries: make(map[string]*entry),
	}
}

// Get returns the corpus document holding book.
// Errors are *errors.CorpusError of kind NoFileMapping, FetchFailed or DecodeFailed.
func (s *Store) Get(ctx context.Context, book string) (*corpus.Document, error) {
	fileID, ok := s.router.CorpusFile(book)
	if !ok {
		return nil, errors.NewCorpus(errors.NoFileMapping, book, "", nil)
	}

	s.mu.Lock()
	e, hit := s.entries[fileID]
	if hit {
		s.stats.Hits++
	} else {
		s.stats.Misses++
	}
	s.mu.Unlock()

	if !hit {
		e = s.load(ctx, fileID)
	}
	if e.err != nil {
		return nil, withBook(e.err, book)
	}
	return e.doc, nil
}

// load fetches fileID unless another caller already has, or is doing so.
func (s *Store) load(ctx context.Context, fileID string) *entry {
	v, _, _ := s.group.Do(fileID, func() (interface{}, error) {
		s.mu.Lock()
		if e, ok := s.entries[fileID]; ok {
			s.mu.Unlock()
			return e, nil
		}
		s.stats.Fetches++
		s.mu.Unlock()

		e := s.fetch(ctx, fileID)

		s.mu.Lock()
		s.entries[fileID] = e
		if e.err != nil {
			s.stats.Failed++
		}
		s.mu.Unlock()
		return e, nil
	})
	return v.(*entry)
}

func (s *Store) fetch(ctx context.Context, fileID string) *entry {
	start := time.Now()
	data, err := s.fetcher.Fetch(ctx, fileID)
	if err != nil {
		logging.CorpusFetch(ctx, fileID, 0, time.Since(start), err)
		return &entry{err: errors.NewCorpus(errors.FetchFailed, "", fileID, err)}
	}

	doc, err := corpus.Decode(data)
	if err != nil {
		logging.CorpusFetch(ctx, fileID, len(data), time.Since(start), err)
		return &entry{err: errors.NewCorpus(errors.DecodeFailed, "", fileID, err)}
	}

	logging.CorpusFetch(ctx, fileID, len(data), time.Since(start), nil,
		"shape", doc.Shape.String())
	return &entry{doc: doc}
}

// withBook copies a cached corpus error and stamps the requesting book on it.
func withBook(err error, book string) error {
	var cerr *errors.CorpusError
	if errors.As(err, &cerr) {
		return errors.NewCorpus(cerr.Kind, book, cerr.FileID, cerr.Err)
	}
	return err
}

// Prefetch loads the files holding books concurrently, at most workers at a
// time (workers < 1 means one). Books without a file mapping are ignored and
// fetch failures are recorded for later Get calls rather than returned. The
// only error returned is ctx's.
func (s *Store) Prefetch(ctx context.Context, books []string, workers int) error {
	if workers < 1 {
		workers = 1
	}

	seen := make(map[string]bool)
	var files []string
	for _, book := range books {
		fileID, ok := s.router.CorpusFile(book)
		if !ok || seen[fileID] {
			continue
		}
		seen[fileID] = true
		files = append(files, fileID)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, fileID := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.load(gctx, fileID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Len returns the number of file ids held, including failed ones.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stats returns cache statistics.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stats
	st.Size = len(s.entries)
	return st
}
