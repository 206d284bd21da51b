// Package input reads citation lists from files or stdin.
package input

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/versefetch/internal/validation"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// AnchorXPath selects the citation anchors in XML and XHTML documents.
const AnchorXPath = "//a[@href]"

var anchorExpr = xpath.MustCompile(AnchorXPath)

// Injectable for tests.
var osStdin io.Reader = os.Stdin

// Read loads the citations in path. The format follows the extension,
// see validation.DetectInputFormat; Stdin is read as lines.
func Read(path string) ([]string, error) {
	if path == Stdin {
		return ReadFrom(osStdin, validation.InputLines)
	}
	if err := validation.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("invalid input path: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	citations, err := ReadFrom(f, validation.DetectInputFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return citations, nil
}

// ReadFrom reads citations from r in the given format.
func ReadFrom(r io.Reader, format validation.InputFormat) ([]string, error) {
	r, err := validation.CheckText(r)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(r, validation.MaxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(data) > validation.MaxInputSize {
		return nil, fmt.Errorf("input exceeds %d bytes", validation.MaxInputSize)
	}

	var citations []string
	switch format {
	case validation.InputJSON:
		citations, err = parseJSON(data)
	case validation.InputYAML:
		citations, err = parseYAML(data)
	case validation.InputXML:
		citations, err = parseXML(data)
	case validation.InputLines:
		citations, err = parseLines(data)
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
	if err != nil {
		return nil, err
	}

	for i, c := range citations {
		if err := validation.ValidateCitation(c); err != nil {
			return nil, fmt.Errorf("citation %d: %w", i+1, err)
		}
	}
	return citations, nil
}

func parseJSON(data []byte) ([]string, error) {
	var citations []string
	if err := json.Unmarshal(data, &citations); err != nil {
		return nil, fmt.Errorf("expected a JSON array of strings: %w", err)
	}
	return citations, nil
}

// parseYAML accepts either a bare sequence or a mapping with a
// "citations" sequence.
func parseYAML(data []byte) ([]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.MappingNode {
		var wrapped struct {
			Citations []string `yaml:"citations"`
		}
		if err := root.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode citations: %w", err)
		}
		return wrapped.Citations, nil
	}

	var citations []string
	if err := root.Decode(&citations); err != nil {
		return nil, fmt.Errorf("expected a YAML list of strings: %w", err)
	}
	return citations, nil
}

// parseXML returns every anchor with an href, serialised back to markup
// in document order.
func parseXML(data []byte) ([]string, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}

	var citations []string
	for _, n := range xmlquery.QuerySelectorAll(root, anchorExpr) {
		citations = append(citations, n.OutputXML(true))
	}
	return citations, nil
}

func parseLines(data []byte) ([]string, error) {
	var citations []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 4096), validation.MaxCitationLength*2)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		citations = append(citations, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan input: %w", err)
	}
	return citations, nil
}
