// Package validation checks user-supplied paths, file ids and citations
// before they reach the filesystem or the parser.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits guarding against oversized input (CWE-400).
const (
	// MaxInputSize is the largest citation list accepted (16 MB).
	MaxInputSize = 16 << 20
	// MaxCitationLength bounds one raw citation.
	MaxCitationLength = 8 << 10
	// MaxFilenameLength is the maximum allowed filename length.
	MaxFilenameLength = 255
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrInvalidFilename  = errors.New("invalid filename")
	ErrPathTooLong      = errors.New("path too long")
	ErrFilenameTooLong  = errors.New("filename too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrCitationTooLong  = errors.New("citation too long")
	ErrInvalidCitation  = errors.New("invalid citation")
	ErrBinaryInput      = errors.New("input does not look like text")
)

// ValidateFilename checks that a bare file name (such as a corpus file id)
// is safe to join onto a directory.
func ValidateFilename(filename string) error {
	if filename == "" {
		return ErrInvalidFilename
	}
	if len(filename) > MaxFilenameLength {
		return ErrFilenameTooLong
	}
	if filename == "." || filename == ".." {
		return fmt.Errorf("%w: reserved name", ErrInvalidFilename)
	}
	if strings.ContainsAny(filename, "/\\") {
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidFilename)
	}
	for _, r := range filename {
		if r == 0 || unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidFilename)
		}
	}
	if strings.HasPrefix(filename, "-") {
		return fmt.Errorf("%w: filename cannot start with hyphen", ErrInvalidFilename)
	}
	return nil
}

// ValidatePath checks a user-supplied path for length limits and invalid
// characters. The path may be absolute or relative.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// ValidateCitation rejects citations that cannot be meaningful markup:
// oversized strings, invalid UTF-8 and embedded NUL bytes. An accepted
// citation may still fail to parse.
func ValidateCitation(raw string) error {
	if len(raw) > MaxCitationLength {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrCitationTooLong, len(raw), MaxCitationLength)
	}
	if !utf8.ValidString(raw) {
		return fmt.Errorf("%w: not valid UTF-8", ErrInvalidCitation)
	}
	if strings.Contains(raw, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCitation)
	}
	return nil
}

// InputFormat is the layout of a citation list file.
type InputFormat string

const (
	InputJSON  InputFormat = "json"
	InputYAML  InputFormat = "yaml"
	InputXML   InputFormat = "xml"
	InputLines InputFormat = "lines"
)

// DetectInputFormat picks the input layout from a file name's extension.
// Anything unrecognised is read as one citation per line.
func DetectInputFormat(filename string) InputFormat {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return InputJSON
	case ".yaml", ".yml":
		return InputYAML
	case ".xml", ".xhtml", ".html", ".htm":
		return InputXML
	default:
		return InputLines
	}
}

// CheckText reads the head of r and returns ErrBinaryInput when it looks
// like binary data. The returned reader replays the consumed bytes.
func CheckText(r io.Reader) (io.Reader, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read input header: %w", err)
	}
	buf = buf[:n]
	if n > 0 && !isLikelyText(buf) {
		return nil, ErrBinaryInput
	}
	return io.MultiReader(bytes.NewReader(buf), r), nil
}

// isLikelyText reports whether buf is mostly printable. UTF-8 multibyte
// sequences count as neutral.
func isLikelyText(buf []byte) bool {
	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	printable := 0
	control := 0
	for _, b := range buf {
		if b >= 0x20 && b <= 0x7e || b == '\t' || b == '\n' || b == '\r' {
			printable++
		} else if b < 0x20 {
			control++
		}
	}
	if printable+control == 0 {
		return true
	}
	return float64(printable)/float64(printable+control) > 0.95
}
