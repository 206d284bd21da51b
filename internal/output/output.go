// Package output writes batch records as JSON or into a SQLite database.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/FocuswithJustin/versefetch/core/batch"
	"github.com/FocuswithJustin/versefetch/internal/validation"
)

// Format selects an output sink.
type Format string

const (
	FormatJSON   Format = "json"
	FormatSQLite Format = "sqlite"
)

// Stdout is the path that selects standard output (JSON only).
const Stdout = "-"

// ParseFormat converts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatSQLite:
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Injectable for tests.
var (
	osStdout io.Writer = os.Stdout
	osRename           = os.Rename
)

// Write stores records at path in the given format. runID tags SQLite rows.
func Write(ctx context.Context, path string, format Format, runID string, records []batch.Record) error {
	switch format {
	case FormatJSON:
		if path == Stdout {
			return EncodeJSON(osStdout, records)
		}
		return WriteJSON(path, records)
	case FormatSQLite:
		if path == Stdout {
			return fmt.Errorf("sqlite output needs a file path")
		}
		db, err := OpenSQLite(path)
		if err != nil {
			return err
		}
		if err := db.Write(ctx, runID, records); err != nil {
			db.Close()
			return err
		}
		return db.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// EncodeJSON writes records as a two-space indented JSON array. Non-ASCII
// text and HTML characters are written as is.
func EncodeJSON(w io.Writer, records []batch.Record) error {
	if records == nil {
		records = []batch.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	return nil
}

// WriteJSON replaces the file at path with the encoded records. The file
// is written to a temporary sibling and renamed into place.
func WriteJSON(path string, records []batch.Record) error {
	if err := validation.ValidatePath(path); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".records-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if err := EncodeJSON(tempFile, records); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return err
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := osRename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename output: %w", err)
	}
	return nil
}

// ReadJSON loads records previously written by WriteJSON.
func ReadJSON(path string) ([]batch.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []batch.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}
