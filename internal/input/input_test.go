package input

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/FocuswithJustin/versefetch/internal/validation"
)

const (
	luke = `<a href="https://www.churchofjesuschrist.org/study/scriptures/nt/luke/5?lang=eng">Luke 5:1-2</a>`
	dc   = `<a href="https://www.churchofjesuschrist.org/study/scriptures/dc-testament/dc/121">D&amp;C 121:7</a>`
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRead(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    []string
	}{
		{
			name:    "lines",
			file:    "refs.txt",
			content: "# lesson 3\n" + luke + "\n\n  " + dc + "  \n",
			want:    []string{luke, dc},
		},
		{
			name:    "json",
			file:    "refs.json",
			content: `["` + strings.ReplaceAll(luke, `"`, `\"`) + `", "Luke 5:1"]`,
			want:    []string{luke, "Luke 5:1"},
		},
		{
			name:    "yaml list",
			file:    "refs.yaml",
			content: "- 'Luke 5:1'\n- 'D&C 121:7'\n",
			want:    []string{"Luke 5:1", "D&C 121:7"},
		},
		{
			name:    "yaml mapping",
			file:    "refs.yml",
			content: "citations:\n  - 'Luke 5:1'\n",
			want:    []string{"Luke 5:1"},
		},
		{
			name:    "yaml empty",
			file:    "refs.yaml",
			content: "",
			want:    nil,
		},
		{
			name: "xhtml",
			file: "lesson.xhtml",
			content: `<html><body><p>Read ` + luke + ` and ` + dc +
				`.</p><a name="top">no href</a></body></html>`,
			want: []string{luke, dc},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Read() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{"json object", "refs.json", `{"a":1}`, nil},
		{"json numbers", "refs.json", `[1, 2]`, nil},
		{"yaml scalar", "refs.yaml", "just text", nil},
		{"broken xml", "refs.xml", "<<<", nil},
		{"binary", "refs.txt", "\x00\x01\x02\x03", validation.ErrBinaryInput},
		{"long citation", "refs.txt", strings.Repeat("x", validation.MaxCitationLength+1), validation.ErrCitationTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(writeFile(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("Read() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Read() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("Read() of missing file expected error")
	}
	if _, err := Read(""); !errors.Is(err, validation.ErrEmptyPath) {
		t.Errorf("Read(\"\") error = %v", err)
	}
}

func TestRead_Stdin(t *testing.T) {
	old := osStdin
	osStdin = strings.NewReader("Luke 5:1\n# skip\nMark 1:1\n")
	defer func() { osStdin = old }()

	got, err := Read(Stdin)
	if err != nil {
		t.Fatalf("Read(-) error = %v", err)
	}
	if want := []string{"Luke 5:1", "Mark 1:1"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Read(-) = %q, want %q", got, want)
	}
}

func TestReadFrom_UnknownFormat(t *testing.T) {
	if _, err := ReadFrom(strings.NewReader("x"), validation.InputFormat("csv")); err == nil {
		t.Error("ReadFrom() with unknown format expected error")
	}
}
