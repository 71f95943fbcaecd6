package structure

import (
	"testing"

	"docx2nav/config"
	"docx2nav/docx"
)

func testConfig() *config.DocumentConfig {
	return &config.DocumentConfig{
		BookTitle:          "Handbook",
		HeadingStyles:      []string{"heading", "title", "titre"},
		BoldFallback:       true,
		MinHeadingFontSize: 14,
		FrontMatterTitle:   "Front Matter",
	}
}

func newTestClassifier(t *testing.T, cfg *config.DocumentConfig) *Classifier {
	t.Helper()
	c, err := NewClassifier(cfg)
	if err != nil {
		t.Fatalf("NewClassifier() error = %v", err)
	}
	return c
}

func heading(text string) *docx.Paragraph {
	return &docx.Paragraph{StyleID: "Heading1", StyleName: "heading 1", Runs: []docx.Run{{Text: text}}}
}

func body(text string) *docx.Paragraph {
	return &docx.Paragraph{StyleID: "Normal", StyleName: "Normal", Runs: []docx.Run{{Text: text}}}
}

func TestClassify(t *testing.T) {
	c := newTestClassifier(t, testConfig())

	tests := []struct {
		name    string
		para    *docx.Paragraph
		kind    HeadingKind
		chapter int
		section int
		title   string
	}{
		{"chapter", heading("1.0 Introduction"), HeadingKindChapter, 1, 0, "Introduction"},
		{"chapter word", heading("Chapter 3: Restraint"), HeadingKindChapter, 3, 0, "Restraint"},
		{"chapter word with number", heading("Chapter 4.0 Anesthesia"), HeadingKindChapter, 4, 0, "Anesthesia"},
		{"section in body style", body("2.3 Physical Exam"), HeadingKindSection, 2, 3, "Physical Exam"},
		{"spaced dot", body("3. 1 Handling"), HeadingKindSection, 3, 1, "Handling"},
		{"ocr one", body("l2.4 Fluids"), HeadingKindSection, 12, 4, "Fluids"},
		{"trailing dot", body("5.2. Wounds"), HeadingKindSection, 5, 2, "Wounds"},
		{"quoted title", body("6.1 “Down” cows"), HeadingKindSection, 6, 1, "“Down” cows"},
		{"chapter in body style", body("1.0 Introduction"), HeadingKindNone, 0, 0, ""},
		{"dosage", body("0.5 mg/kg twice daily"), HeadingKindNone, 0, 0, ""},
		{"unit", body("2.5 mg per dose"), HeadingKindNone, 0, 0, ""},
		{"percent", body("1.5% solution"), HeadingKindNone, 0, 0, ""},
		{"age", body("1.5 years and older"), HeadingKindNone, 0, 0, ""},
		{"lower case title", body("3.2 of the animals"), HeadingKindNone, 0, 0, ""},
		{"short title", body("3.2 Ab"), HeadingKindNone, 0, 0, ""},
		{"chapter zero", heading("0.0 Preface"), HeadingKindNone, 0, 0, ""},
		{"subsection", body("3.2.1 Details"), HeadingKindNone, 0, 0, ""},
		{"glued text", heading("1.0Intro"), HeadingKindNone, 0, 0, ""},
		{"chapter with subsection digits", heading("1.0.1 Scope"), HeadingKindNone, 0, 0, ""},
		{"plain text", body("Introduction"), HeadingKindNone, 0, 0, ""},
		{"blank", body("   "), HeadingKindNone, 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := c.Classify(tt.para)
			if h.Kind != tt.kind || h.Chapter != tt.chapter || h.Section != tt.section || h.Title != tt.title {
				t.Errorf("Classify(%q) = %+v, want %v %d.%d %q", tt.para.Text(), h, tt.kind, tt.chapter, tt.section, tt.title)
			}
		})
	}
}

func TestClassifyBoldFallback(t *testing.T) {
	para := &docx.Paragraph{StyleName: "Normal", Runs: []docx.Run{
		{Text: "7.0 ", Bold: true, Size: 16},
		{Text: "Surgery", Bold: true, Size: 16},
		{Text: " ", Size: 11},
	}}

	cfg := testConfig()
	if h := newTestClassifier(t, cfg).Classify(para); h.Kind != HeadingKindChapter || h.Chapter != 7 {
		t.Errorf("Classify() = %+v, want chapter 7", h)
	}

	cfg.MinHeadingFontSize = 18
	if h := newTestClassifier(t, cfg).Classify(para); h.Kind != HeadingKindNone {
		t.Errorf("Classify() with larger minimum = %+v, want none", h)
	}

	cfg = testConfig()
	cfg.BoldFallback = false
	if h := newTestClassifier(t, cfg).Classify(para); h.Kind != HeadingKindNone {
		t.Errorf("Classify() without fallback = %+v, want none", h)
	}

	para.Runs[1].Bold = false
	if h := newTestClassifier(t, testConfig()).Classify(para); h.Kind != HeadingKindNone {
		t.Errorf("Classify() of partially bold paragraph = %+v, want none", h)
	}
}

func TestNumberingFixes(t *testing.T) {
	cfg := testConfig()
	cfg.NumberingFixes = map[string]string{"3.11": "3.1", "9.9": "9.0"}
	c := newTestClassifier(t, cfg)

	if h := c.Classify(body("3.11 Handling")); h.Kind != HeadingKindSection || h.Chapter != 3 || h.Section != 1 {
		t.Errorf("Classify() = %+v, want section 3.1", h)
	}
	if h := c.Classify(heading("9.9 Appendix")); h.Kind != HeadingKindChapter || h.Chapter != 9 {
		t.Errorf("Classify() = %+v, want chapter 9", h)
	}

	for _, bad := range []map[string]string{{"1.1": "x"}, {"1.1": "2"}, {"1.1": "1.a"}} {
		cfg.NumberingFixes = bad
		if _, err := NewClassifier(cfg); err == nil {
			t.Errorf("NewClassifier(%v) expected error", bad)
		}
	}
}

func TestPlanChapters(t *testing.T) {
	c := newTestClassifier(t, testConfig())
	elements := []docx.Element{
		heading("1.0 Intro"),
		body("1.1 Setup"),
		&docx.Table{},
		heading("2.0 Next"),
		body("24.1 Infectious Diseases"),
	}
	planned := c.PlanChapters(elements)
	if len(planned) != 2 || !planned[1] || !planned[2] {
		t.Errorf("PlanChapters() = %v, want {1, 2}", planned)
	}
}

func TestHeadingKindString(t *testing.T) {
	for _, k := range []HeadingKind{HeadingKindNone, HeadingKindChapter, HeadingKindSection} {
		parsed, err := ParseHeadingKind(k.String())
		if err != nil || parsed != k {
			t.Errorf("ParseHeadingKind(%q) = %v, %v", k.String(), parsed, err)
		}
	}
	if HeadingKind(42).IsValid() {
		t.Error("HeadingKind(42) reported valid")
	}
}
