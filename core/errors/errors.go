// Package errors provides the error kinds and typed errors shared by the
// citation parsing, corpus loading and verse resolution stages.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a per-citation failure.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors that carry no kind.
	KindUnknown Kind = iota

	// Parse-time kinds.
	MalformedMarkup
	MissingSlug
	UnknownBook
	MissingChapterVerse
	NoVerseRanges

	// Corpus-time kinds.
	NoFileMapping
	FetchFailed
	DecodeFailed

	// Resolve-time kinds.
	UnknownCorpusShape
	BookNotFound
	ChapterNotFound
)

// Sentinel errors, one per kind.
var (
	ErrMalformedMarkup     = errors.New("malformed citation markup")
	ErrMissingSlug         = errors.New("no book slug in citation url")
	ErrUnknownBook         = errors.New("unknown book")
	ErrMissingChapterVerse = errors.New("no chapter:verse in citation text")
	ErrNoVerseRanges       = errors.New("no valid verse ranges")
	ErrNoFileMapping       = errors.New("no corpus file mapped")
	ErrFetchFailed         = errors.New("corpus fetch failed")
	ErrDecodeFailed        = errors.New("corpus decode failed")
	ErrUnknownCorpusShape  = errors.New("unknown corpus shape")
	ErrBookNotFound        = errors.New("book not found in corpus")
	ErrChapterNotFound     = errors.New("chapter not found in corpus")
)

var kindNames = map[Kind]string{
	MalformedMarkup:     "MalformedMarkup",
	MissingSlug:         "MissingSlug",
	UnknownBook:         "UnknownBook",
	MissingChapterVerse: "MissingChapterVerse",
	NoVerseRanges:       "NoVerseRanges",
	NoFileMapping:       "NoFileMapping",
	FetchFailed:         "FetchFailed",
	DecodeFailed:        "DecodeFailed",
	UnknownCorpusShape:  "UnknownCorpusShape",
	BookNotFound:        "BookNotFound",
	ChapterNotFound:     "ChapterNotFound",
}

var kindSentinels = map[Kind]error{
	MalformedMarkup:     ErrMalformedMarkup,
	MissingSlug:         ErrMissingSlug,
	UnknownBook:         ErrUnknownBook,
	MissingChapterVerse: ErrMissingChapterVerse,
	NoVerseRanges:       ErrNoVerseRanges,
	NoFileMapping:       ErrNoFileMapping,
	FetchFailed:         ErrFetchFailed,
	DecodeFailed:        ErrDecodeFailed,
	UnknownCorpusShape:  ErrUnknownCorpusShape,
	BookNotFound:        ErrBookNotFound,
	ChapterNotFound:     ErrChapterNotFound,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Sentinel returns the sentinel error for the kind, or nil for KindUnknown.
func (k Kind) Sentinel() error {
	return kindSentinels[k]
}

// ParseError is returned when a raw citation cannot be turned into a reference.
type ParseError struct {
	Kind    Kind   // One of the parse-time kinds
	Input   string // Offending fragment (url, slug or visible text)
	Message string // Optional detail
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse citation: %v", e.Kind.Sentinel())
	if e.Input != "" {
		msg += fmt.Sprintf(" %q", e.Input)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Kind.Sentinel() }

// ErrorKind implements the kinded interface used by KindOf.
func (e *ParseError) ErrorKind() Kind { return e.Kind }

// CorpusError is returned when the corpus for a book cannot be obtained.
type CorpusError struct {
	Kind   Kind   // NoFileMapping, FetchFailed or DecodeFailed
	Book   string // Canonical abbreviation
	FileID string // Corpus file identity, empty for NoFileMapping
	Err    error  // Underlying transport or decode error
}

func (e *CorpusError) Error() string {
	switch {
	case e.FileID == "":
		return fmt.Sprintf("corpus for %s: %v", e.Book, e.Kind.Sentinel())
	case e.Err != nil:
		return fmt.Sprintf("corpus for %s (%s): %v: %v", e.Book, e.FileID, e.Kind.Sentinel(), e.Err)
	default:
		return fmt.Sprintf("corpus for %s (%s): %v", e.Book, e.FileID, e.Kind.Sentinel())
	}
}

func (e *CorpusError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind.Sentinel(), e.Err}
	}
	return []error{e.Kind.Sentinel()}
}

// ErrorKind implements the kinded interface used by KindOf.
func (e *CorpusError) ErrorKind() Kind { return e.Kind }

// ResolveError is returned when a reference cannot be located in a corpus document.
type ResolveError struct {
	Kind    Kind   // UnknownCorpusShape, BookNotFound or ChapterNotFound
	Book    string // Name searched for in the corpus
	Chapter int
}

func (e *ResolveError) Error() string {
	switch e.Kind {
	case ChapterNotFound:
		return fmt.Sprintf("resolve %s %d: %v", e.Book, e.Chapter, e.Kind.Sentinel())
	default:
		return fmt.Sprintf("resolve %s: %v", e.Book, e.Kind.Sentinel())
	}
}

func (e *ResolveError) Unwrap() error { return e.Kind.Sentinel() }

// ErrorKind implements the kinded interface used by KindOf.
func (e *ResolveError) ErrorKind() Kind { return e.Kind }

// NewParse creates a ParseError.
func NewParse(kind Kind, input, message string) *ParseError {
	return &ParseError{Kind: kind, Input: input, Message: message}
}

// NewCorpus creates a CorpusError.
func NewCorpus(kind Kind, book, fileID string, err error) *CorpusError {
	return &CorpusError{Kind: kind, Book: book, FileID: fileID, Err: err}
}

// NewResolve creates a ResolveError.
func NewResolve(kind Kind, book string, chapter int) *ResolveError {
	return &ResolveError{Kind: kind, Book: book, Chapter: chapter}
}

type kinded interface {
	ErrorKind() Kind
}

// KindOf returns the kind carried by err or any error it wraps.
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	for kind, sentinel := range kindSentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindUnknown
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
