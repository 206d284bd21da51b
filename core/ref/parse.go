package ref

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/FocuswithJustin/versefetch/core/errors"
	"github.com/FocuswithJustin/versefetch/core/names"
	"github.com/FocuswithJustin/versefetch/internal/logging"
)

// SlugLookup resolves URL slugs to canonical abbreviations.
type SlugLookup interface {
	Abbreviation(slug string) (string, bool)
}

var (
	// Matches: ".../scriptures/nt/luke/5", ".../scriptures/dc-testament/dc/121?lang=eng"
	slugPattern = regexp.MustCompile(`/scriptures/(?:nt|ot|bofm|dc-testament|pgp)/([^/]+)/\d+`)

	// Matches: "Luke 5:1–11, 27–28", "1 Ne. 3:7", "5:1", "See D&C 121:7–8"
	chapterVersePattern = regexp.MustCompile(`^(?:.*?\s+)?(\d+):(.+)$`)

	// An anchor must be explicitly closed: "<a href=...>Luke 5:1" is rejected.
	closedAnchorPattern = regexp.MustCompile(`(?is)<a\s[^>]*>.*?</a\s*>`)
)

// verseToken is the participle grammar for one comma-separated verse token.
// Examples: "7", "1-11", "27–28", "3—5". Anything after the token is ignored.
//
//nolint:govet // participle grammar tags are not standard struct tags
type verseToken struct {
	Start int  `parser:"@Int"`
	End   *int `parser:"( Dash @Int )?"`
}

var tokenLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Dash", Pattern: `[-–—]`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: `.`},
})

var tokenParser = participle.MustBuild[verseToken](
	participle.Lexer(tokenLexer),
	participle.Elide("Whitespace"),
)

// Parser turns raw citation markup into References.
type Parser struct {
	names SlugLookup
}

// NewParser creates a Parser that resolves slugs through names.
func NewParser(lookup SlugLookup) *Parser {
	return &Parser{names: lookup}
}

var defaultParser = NewParser(names.Default())

// Parse parses raw with the built-in name tables.
func Parse(raw string) (*Reference, error) {
	return defaultParser.Parse(raw)
}

// Parse parses one citation. The returned error is always a *errors.ParseError.
func (p *Parser) Parse(raw string) (*Reference, error) {
	href, text, ok := splitAnchor(raw)
	if !ok {
		return nil, errors.NewParse(errors.MalformedMarkup, raw, "no <a href> element")
	}

	m := slugPattern.FindStringSubmatch(href)
	if m == nil {
		return nil, errors.NewParse(errors.MissingSlug, href, "")
	}
	slug := m[1]

	book, ok := p.names.Abbreviation(slug)
	if !ok {
		return nil, errors.NewParse(errors.UnknownBook, slug, "")
	}

	text = norm.NFC.String(text)
	cv := chapterVersePattern.FindStringSubmatch(text)
	if cv == nil {
		return nil, errors.NewParse(errors.MissingChapterVerse, text, "")
	}
	chapter, err := strconv.Atoi(cv[1])
	if err != nil || chapter < 1 {
		return nil, errors.NewParse(errors.MissingChapterVerse, text, "chapter must be positive")
	}

	tokens := strings.Split(cv[2], ",")
	ranges := make([]VerseRange, 0, len(tokens))
	for _, token := range tokens {
		r, err := parseVerseToken(token)
		if err != nil {
			logging.Warn("skipping verse token",
				"token", strings.TrimSpace(token),
				"citation", text,
				"error", err.Error())
			continue
		}
		ranges = append(ranges, r)
	}
	if len(ranges) == 0 {
		return nil, errors.NewParse(errors.NoVerseRanges, text,
			fmt.Sprintf("all %d tokens rejected", len(tokens)))
	}

	return New(book, chapter, ranges)
}

// parseVerseToken parses "7" or "1–11" (hyphen, en dash or em dash).
func parseVerseToken(token string) (VerseRange, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return VerseRange{}, fmt.Errorf("empty token")
	}

	parsed, err := tokenParser.ParseString("", token, participle.AllowTrailing(true))
	if err != nil {
		return VerseRange{}, fmt.Errorf("invalid verse token: %w", err)
	}

	r := VerseRange{Start: parsed.Start, End: parsed.Start}
	if parsed.End != nil {
		r.End = *parsed.End
	}
	if r.Start < 1 {
		return VerseRange{}, fmt.Errorf("verse must be positive")
	}
	if r.End < r.Start {
		return VerseRange{}, fmt.Errorf("range end %d before start %d", r.End, r.Start)
	}
	return r, nil
}

// splitAnchor returns the href and trimmed visible text of the first
// anchor in raw that carries an href attribute.
func splitAnchor(raw string) (href, text string, ok bool) {
	if !closedAnchorPattern.MatchString(raw) {
		return "", "", false
	}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(raw), body)
	if err != nil {
		return "", "", false
	}

	for _, n := range nodes {
		if a := findAnchor(n); a != nil {
			for _, attr := range a.Attr {
				if attr.Key == "href" {
					href = attr.Val
				}
			}
			return href, strings.TrimSpace(textContent(a)), true
		}
	}
	return "", "", false
}

func findAnchor(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.A && hasAttr(n, "href") {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if a := findAnchor(c); a != nil {
			return a
		}
	}
	return nil
}

func hasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}
