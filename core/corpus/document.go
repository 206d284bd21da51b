// Package corpus decodes scripture corpus documents and resolves parsed
// references against them.
//
// Two document shapes exist. Book-chapter documents (old testament, new
// testament, book of mormon) nest verses under books and chapters:
//
//	{"books":[{"book":"Luke","chapters":[{"chapter":5,"verses":[{"verse":1,"text":"..."}]}]}]}
//
// Section documents (doctrine and covenants, pearl of great price) hold a flat
// list of sections keyed by a reference string:
//
//	{"sections":[{"reference":"D&C 121","verses":[{"verse":7,"text":"..."}]}]}
package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shape identifies which of the document layouts a Document holds.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeBookChapter
	ShapeSection
)

func (s Shape) String() string {
	switch s {
	case ShapeBookChapter:
		return "books"
	case ShapeSection:
		return "sections"
	default:
		return "unknown"
	}
}

// Verse is one numbered verse.
type Verse struct {
	Verse int    `json:"verse"`
	Text  string `json:"text"`
}

// Chapter is a numbered chapter of a book.
type Chapter struct {
	Chapter int     `json:"chapter"`
	Verses  []Verse `json:"verses"`
}

// Book is a book entry of a book-chapter document.
type Book struct {
	Book     string    `json:"book"`
	Chapters []Chapter `json:"chapters"`
}

// Section is a section entry of a section document, e.g. reference "D&C 121".
type Section struct {
	Reference string  `json:"reference"`
	Verses    []Verse `json:"verses"`
}

// Document is a decoded corpus. Only the field matching Shape is populated.
// Documents are shared read-only once decoded.
type Document struct {
	Shape    Shape
	Books    []Book
	Sections []Section
}

// Decode parses raw corpus JSON. Invalid JSON is an error; valid JSON
// without a "books" or "sections" key decodes to a ShapeUnknown document.
// When both keys are present "books" wins.
func Decode(data []byte) (*Document, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON")
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return &Document{Shape: ShapeUnknown}, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return nil, fmt.Errorf("decoding top level: %w", err)
	}

	if raw, ok := top["books"]; ok {
		doc := &Document{Shape: ShapeBookChapter}
		if err := json.Unmarshal(raw, &doc.Books); err != nil {
			return nil, fmt.Errorf("decoding books: %w", err)
		}
		return doc, nil
	}

	if raw, ok := top["sections"]; ok {
		doc := &Document{Shape: ShapeSection}
		if err := json.Unmarshal(raw, &doc.Sections); err != nil {
			return nil, fmt.Errorf("decoding sections: %w", err)
		}
		return doc, nil
	}

	return &Document{Shape: ShapeUnknown}, nil
}
