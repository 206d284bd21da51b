package corpus

import (
	"sort"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/versefetch/core/errors"
	"github.com/FocuswithJustin/versefetch/core/ref"
)

// NotFoundText is returned by Resolve when no requested verse exists.
const NotFoundText = "Scripture not found in JSON."

// FullNamer translates a book abbreviation to the name used in book-chapter documents.
type FullNamer interface {
	FullName(abbrev string) string
}

// Resolve extracts the text of every verse r requests from doc.
//
// Books, chapters and sections are matched by first occurrence. Within a
// chapter or section a repeated verse number keeps its last text. Requested
// verses missing from the chapter are skipped. The collected texts are joined
// with single spaces. found is false when nothing was collected, in which case
// text is NotFoundText and err is nil. A section document without the
// requested section is reported the same way.
func Resolve(r *ref.Reference, doc *Document, names FullNamer) (text string, found bool, err error) {
	var verses []Verse

	switch doc.Shape {
	case ShapeBookChapter:
		fullName := names.FullName(r.Book())
		book := findBook(doc.Books, fullName)
		if book == nil {
			return "", false, errors.NewResolve(errors.BookNotFound, fullName, r.Chapter())
		}
		chapter := findChapter(book.Chapters, r.Chapter())
		if chapter == nil {
			return "", false, errors.NewResolve(errors.ChapterNotFound, fullName, r.Chapter())
		}
		verses = chapter.Verses

	case ShapeSection:
		key := r.Book() + " " + strconv.Itoa(r.Chapter())
		if section := findSection(doc.Sections, key); section != nil {
			verses = section.Verses
		}

	default:
		return "", false, errors.NewResolve(errors.UnknownCorpusShape, r.Book(), r.Chapter())
	}

	parts := collect(newVerseIndex(verses), r.Ranges())
	if len(parts) == 0 {
		return NotFoundText, false, nil
	}
	return strings.TrimSpace(strings.Join(parts, " ")), true, nil
}

func findBook(books []Book, name string) *Book {
	for i := range books {
		if books[i].Book == name {
			return &books[i]
		}
	}
	return nil
}

func findChapter(chapters []Chapter, number int) *Chapter {
	for i := range chapters {
		if chapters[i].Chapter == number {
			return &chapters[i]
		}
	}
	return nil
}

func findSection(sections []Section, key string) *Section {
	for i := range sections {
		if sections[i].Reference == key {
			return &sections[i]
		}
	}
	return nil
}

// verseIndex maps verse numbers to text with the numbers kept sorted, so a
// range can be walked without visiting every integer in it.
type verseIndex struct {
	text    map[int]string
	numbers []int
}

func newVerseIndex(verses []Verse) verseIndex {
	idx := verseIndex{text: make(map[int]string, len(verses))}
	for _, v := range verses {
		if _, seen := idx.text[v.Verse]; !seen {
			idx.numbers = append(idx.numbers, v.Verse)
		}
		idx.text[v.Verse] = v.Text
	}
	sort.Ints(idx.numbers)
	return idx
}

func collect(idx verseIndex, ranges []ref.VerseRange) []string {
	var parts []string
	for _, r := range ranges {
		i := sort.SearchInts(idx.numbers, r.Start)
		for ; i < len(idx.numbers) && idx.numbers[i] <= r.End; i++ {
			parts = append(parts, idx.text[idx.numbers[i]])
		}
	}
	return parts
}
