// Package ref parses hyperlinked scripture citations into canonical references.
//
// A citation is an HTML anchor whose URL names the book and chapter and whose
// visible text carries the chapter and verse list, for example:
//
//	<a href="https://www.churchofjesuschrist.org/study/scriptures/nt/luke/5?lang=eng&id=p1-p11#p1">Luke 5:1–11, 27–28</a>
//
// The book always comes from the URL; the visible text only supplies the
// chapter and verses.
package ref

import (
	"strconv"
	"strings"

	"github.com/FocuswithJustin/versefetch/core/errors"
)

// RangeDash separates the bounds of a multi-verse range in display strings.
const RangeDash = "–"

// VerseRange is an inclusive span of verses within one chapter.
type VerseRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// String renders a single verse as "7" and a span as "1–11".
func (r VerseRange) String() string {
	if r.Start == r.End {
		return strconv.Itoa(r.Start)
	}
	return strconv.Itoa(r.Start) + RangeDash + strconv.Itoa(r.End)
}

// Len returns the number of verses the range covers.
func (r VerseRange) Len() int {
	return r.End - r.Start + 1
}

// Reference is a parsed citation. It is immutable once built.
type Reference struct {
	book    string
	chapter int
	ranges  []VerseRange
	display string
}

// New builds a Reference from already-parsed parts.
func New(book string, chapter int, ranges []VerseRange) (*Reference, error) {
	if book == "" {
		return nil, errors.NewParse(errors.UnknownBook, "", "empty book")
	}
	if chapter < 1 {
		return nil, errors.NewParse(errors.MissingChapterVerse, strconv.Itoa(chapter), "chapter must be positive")
	}
	if len(ranges) == 0 {
		return nil, errors.NewParse(errors.NoVerseRanges, "", "")
	}
	for _, r := range ranges {
		if r.Start < 1 || r.End < r.Start {
			return nil, errors.NewParse(errors.NoVerseRanges, r.String(), "invalid range")
		}
	}

	owned := make([]VerseRange, len(ranges))
	copy(owned, ranges)

	parts := make([]string, len(owned))
	for i, r := range owned {
		parts[i] = r.String()
	}

	return &Reference{
		book:    book,
		chapter: chapter,
		ranges:  owned,
		display: book + " " + strconv.Itoa(chapter) + ":" + strings.Join(parts, ","),
	}, nil
}

// Book returns the canonical book abbreviation, e.g. "1 Ne.".
func (r *Reference) Book() string { return r.book }

// Chapter returns the chapter (or section) number.
func (r *Reference) Chapter() int { return r.chapter }

// Ranges returns a copy of the verse ranges in citation order.
func (r *Reference) Ranges() []VerseRange {
	out := make([]VerseRange, len(r.ranges))
	copy(out, r.ranges)
	return out
}

// Display returns the canonical citation, e.g. "Luke 5:1–11,27–28".
func (r *Reference) Display() string { return r.display }

func (r *Reference) String() string { return r.display }

// Verses returns the number of verses requested, counting overlaps and
// repeats once per range.
func (r *Reference) Verses() int {
	n := 0
	for _, vr := range r.ranges {
		n += vr.Len()
	}
	return n
}
