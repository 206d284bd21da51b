package ref

import (
	"testing"

	"github.com/FocuswithJustin/versefetch/core/errors"
	"github.com/FocuswithJustin/versefetch/core/names"
)

const lukeURL = "https://www.churchofjesuschrist.org/study/scriptures/nt/luke/5?lang=eng&amp;id=p1-p11#p1"

func anchor(href, text string) string {
	return `<a href="` + href + `" class="scripture-ref">` + text + `</a>`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantBook    string
		wantChapter int
		wantRanges  []VerseRange
		wantDisplay string
	}{
		{
			name:        "two ranges with en dash",
			input:       anchor(lukeURL, "Luke 5:1–11, 27–28"),
			wantBook:    "Luke",
			wantChapter: 5,
			wantRanges:  []VerseRange{{1, 11}, {27, 28}},
			wantDisplay: "Luke 5:1–11,27–28",
		},
		{
			name:        "single verse",
			input:       anchor("https://www.churchofjesuschrist.org/study/scriptures/bofm/1-ne/3?lang=eng", "1 Nephi 3:7"),
			wantBook:    "1 Ne.",
			wantChapter: 3,
			wantRanges:  []VerseRange{{7, 7}},
			wantDisplay: "1 Ne. 3:7",
		},
		{
			name:        "book from url not text",
			input:       anchor("https://www.churchofjesuschrist.org/study/scriptures/nt/matt/5", "Sermon 5:3-12"),
			wantBook:    "Matt.",
			wantChapter: 5,
			wantRanges:  []VerseRange{{3, 12}},
			wantDisplay: "Matt. 5:3–12",
		},
		{
			name:        "doctrine and covenants",
			input:       anchor("https://www.churchofjesuschrist.org/study/scriptures/dc-testament/dc/121?lang=eng&amp;id=p7-p8#p7", "Doctrine and Covenants 121:7—8"),
			wantBook:    "D&C",
			wantChapter: 121,
			wantRanges:  []VerseRange{{7, 8}},
			wantDisplay: "D&C 121:7–8",
		},
		{
			name:        "chapter only prefix",
			input:       anchor("https://www.churchofjesuschrist.org/study/scriptures/pgp/js-h/1", "1:15–17"),
			wantBook:    "JS—H",
			wantChapter: 1,
			wantRanges:  []VerseRange{{15, 17}},
			wantDisplay: "JS—H 1:15–17",
		},
		{
			name:        "uppercase closing tag",
			input:       `<A HREF="https://www.churchofjesuschrist.org/study/scriptures/nt/luke/5">Luke 5:2</A >`,
			wantBook:    "Luke",
			wantChapter: 5,
			wantRanges:  []VerseRange{{2, 2}},
			wantDisplay: "Luke 5:2",
		},
		{
			name:        "duplicates and overlaps preserved",
			input:       anchor(lukeURL, "Luke 5:3, 1-4, 3"),
			wantBook:    "Luke",
			wantChapter: 5,
			wantRanges:  []VerseRange{{3, 3}, {1, 4}, {3, 3}},
			wantDisplay: "Luke 5:3,1–4,3",
		},
		{
			name:        "bad token skipped",
			input:       anchor(lukeURL, "Luke 5:1, abc, 4"),
			wantBook:    "Luke",
			wantChapter: 5,
			wantRanges:  []VerseRange{{1, 1}, {4, 4}},
			wantDisplay: "Luke 5:1,4",
		},
		{
			name:        "trailing text after token ignored",
			input:       anchor(lukeURL, "Luke 5:8a"),
			wantBook:    "Luke",
			wantChapter: 5,
			wantRanges:  []VerseRange{{8, 8}},
			wantDisplay: "Luke 5:8",
		},
		{
			name:        "nested markup in text",
			input:       `<p>See <a href="https://www.churchofjesuschrist.org/study/scriptures/ot/isa/53"><em>Isaiah</em> 53:3–5</a>.</p>`,
			wantBook:    "Isa.",
			wantChapter: 53,
			wantRanges:  []VerseRange{{3, 5}},
			wantDisplay: "Isa. 53:3–5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.Book() != tt.wantBook {
				t.Errorf("Book() = %q, want %q", got.Book(), tt.wantBook)
			}
			if got.Chapter() != tt.wantChapter {
				t.Errorf("Chapter() = %d, want %d", got.Chapter(), tt.wantChapter)
			}
			ranges := got.Ranges()
			if len(ranges) != len(tt.wantRanges) {
				t.Fatalf("Ranges() = %v, want %v", ranges, tt.wantRanges)
			}
			for i := range ranges {
				if ranges[i] != tt.wantRanges[i] {
					t.Errorf("Ranges()[%d] = %v, want %v", i, ranges[i], tt.wantRanges[i])
				}
			}
			if got.Display() != tt.wantDisplay {
				t.Errorf("Display() = %q, want %q", got.Display(), tt.wantDisplay)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  errors.Kind
	}{
		{"plain text", "Luke 5:1-11", errors.MalformedMarkup},
		{"anchor without href", `<a name="x">Luke 5:1</a>`, errors.MalformedMarkup},
		{"empty", "", errors.MalformedMarkup},
		{"unclosed anchor", `<a href="https://www.churchofjesuschrist.org/study/scriptures/nt/luke/5">Luke 5:1`, errors.MalformedMarkup},
		{"unclosed anchor before other markup", `<a href="https://www.churchofjesuschrist.org/study/scriptures/nt/luke/5">Luke 5:1<br>`, errors.MalformedMarkup},
		{"no scriptures path", anchor("https://example.com/luke/5", "Luke 5:1"), errors.MissingSlug},
		{"unknown area", anchor("https://www.churchofjesuschrist.org/study/scriptures/apoc/tobit/1", "Tobit 1:1"), errors.MissingSlug},
		{"no chapter segment", anchor("https://www.churchofjesuschrist.org/study/scriptures/nt/luke", "Luke 5:1"), errors.MissingSlug},
		{"unknown slug", anchor("https://www.churchofjesuschrist.org/study/scriptures/ot/tobit/1", "Tobit 1:1"), errors.UnknownBook},
		{"no colon", anchor(lukeURL, "Luke 5"), errors.MissingChapterVerse},
		{"empty text", anchor(lukeURL, ""), errors.MissingChapterVerse},
		{"chapter zero", anchor(lukeURL, "Luke 0:1"), errors.MissingChapterVerse},
		{"no numeric tokens", anchor(lukeURL, "Luke 5:a, b"), errors.NoVerseRanges},
		{"descending range", anchor(lukeURL, "Luke 5:9-3"), errors.NoVerseRanges},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse() = %v, want error", got)
			}
			var perr *errors.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error %T is not *ParseError", err)
			}
			if perr.Kind != tt.want {
				t.Errorf("Kind = %v, want %v (%v)", perr.Kind, tt.want, err)
			}
		})
	}
}

func sameReference(a, b *Reference) bool {
	if a.Book() != b.Book() || a.Chapter() != b.Chapter() {
		return false
	}
	ar, br := a.Ranges(), b.Ranges()
	if len(ar) != len(br) {
		return false
	}
	for i := range ar {
		if ar[i] != br[i] {
			return false
		}
	}
	return true
}

func TestParse_DashVariantsEquivalent(t *testing.T) {
	var first *Reference
	for _, dash := range []string{"-", "–", "—"} {
		got, err := Parse(anchor(lukeURL, "Luke 5:1"+dash+"11,27"+dash+"28"))
		if err != nil {
			t.Fatalf("Parse() with %q error = %v", dash, err)
		}
		if first == nil {
			first = got
			continue
		}
		if !sameReference(got, first) {
			t.Errorf("dash %q: %v, want %v", dash, got.Ranges(), first.Ranges())
		}
		if got.Display() != first.Display() {
			t.Errorf("dash %q: Display() = %q, want %q", dash, got.Display(), first.Display())
		}
	}
}

func TestParse_IdempotentOnDisplay(t *testing.T) {
	inputs := []string{
		anchor(lukeURL, "Luke 5:1-11, 27-28"),
		anchor("https://www.churchofjesuschrist.org/study/scriptures/bofm/w-of-m/1", "Words of Mormon 1:7"),
		anchor("https://www.churchofjesuschrist.org/study/scriptures/ot/1-sam/16", "1 Samuel 16:7, 12—13"),
		anchor("https://www.churchofjesuschrist.org/study/scriptures/pgp/a-of-f/1", "Articles of Faith 1:13"),
	}

	for _, in := range inputs {
		first, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", in, err)
		}
		href, _, _ := splitAnchor(in)
		second, err := Parse(anchor(href, first.Display()))
		if err != nil {
			t.Fatalf("re-Parse(%q) error = %v", first.Display(), err)
		}
		if !sameReference(second, first) {
			t.Errorf("re-parse of %q = %v %d %v, want %v %d %v", first.Display(),
				second.Book(), second.Chapter(), second.Ranges(),
				first.Book(), first.Chapter(), first.Ranges())
		}
		if second.Display() != first.Display() {
			t.Errorf("Display() = %q, want %q", second.Display(), first.Display())
		}
	}
}

func TestParser_InjectedNames(t *testing.T) {
	p := NewParser(names.New(names.Tables{
		Slugs: map[string]string{"luke": "Lk"},
	}))

	got, err := p.Parse(anchor(lukeURL, "Luke 5:1"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.Display() != "Lk 5:1" {
		t.Errorf("Display() = %q, want %q", got.Display(), "Lk 5:1")
	}

	_, err = p.Parse(anchor("https://www.churchofjesuschrist.org/study/scriptures/nt/mark/1", "Mark 1:1"))
	if errors.KindOf(err) != errors.UnknownBook {
		t.Errorf("KindOf() = %v, want UnknownBook", errors.KindOf(err))
	}
}

func TestNew(t *testing.T) {
	r, err := New("Alma", 32, []VerseRange{{21, 21}, {26, 43}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if r.Display() != "Alma 32:21,26–43" {
		t.Errorf("Display() = %q", r.Display())
	}
	if r.Verses() != 19 {
		t.Errorf("Verses() = %d, want 19", r.Verses())
	}

	ranges := r.Ranges()
	ranges[0].Start = 99
	if r.Ranges()[0].Start != 21 {
		t.Error("Ranges() must return a copy")
	}

	invalid := []struct {
		book    string
		chapter int
		ranges  []VerseRange
	}{
		{"", 1, []VerseRange{{1, 1}}},
		{"Alma", 0, []VerseRange{{1, 1}}},
		{"Alma", 1, nil},
		{"Alma", 1, []VerseRange{{5, 4}}},
		{"Alma", 1, []VerseRange{{0, 4}}},
	}
	for _, tt := range invalid {
		if _, err := New(tt.book, tt.chapter, tt.ranges); err == nil {
			t.Errorf("New(%q, %d, %v) succeeded, want error", tt.book, tt.chapter, tt.ranges)
		}
	}
}

func TestVerseRange(t *testing.T) {
	tests := []struct {
		r       VerseRange
		wantStr string
		wantLen int
	}{
		{VerseRange{7, 7}, "7", 1},
		{VerseRange{1, 11}, "1–11", 11},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.wantStr {
			t.Errorf("String() = %q, want %q", got, tt.wantStr)
		}
		if got := tt.r.Len(); got != tt.wantLen {
			t.Errorf("Len() = %d, want %d", got, tt.wantLen)
		}
	}
}
