package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docdiff/internal/doctree"
)

func elementPaths(ex *doctree.Extraction) []string {
	out := make([]string, len(ex.Elements))
	for i, el := range ex.Elements {
		out[i] = el.Path
	}
	return out
}

func assertElements(t *testing.T, ex *doctree.Extraction, want []doctree.Element) {
	t.Helper()
	if len(ex.Elements) != len(want) {
		t.Fatalf("expected %d elements, got %d: %v", len(want), len(ex.Elements), elementPaths(ex))
	}
	for i, w := range want {
		got := ex.Elements[i]
		if got.Path != w.Path || got.Text != w.Text || got.Page != w.Page {
			t.Errorf("element[%d]: expected %+v, got %+v", i, w, got)
		}
	}
}

func TestMarkdownParser_Elements(t *testing.T) {
	input := `# 1 Scope

Intro text.

## 1.1 Purpose

Purpose *body*.

- one
- two

---

# 2 Terms

Terms body.
`
	p := &MarkdownParser{}
	ex, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertElements(t, ex, []doctree.Element{
		{Path: "//Document/H1", Text: "1 Scope"},
		{Path: "//Document/P", Text: "Intro text."},
		{Path: "//Document/H2", Text: "1.1 Purpose"},
		{Path: "//Document/P[2]", Text: "Purpose body."},
		{Path: "//Document/L/LI", Text: "one"},
		{Path: "//Document/L/LI[2]", Text: "two"},
		{Path: "//Document/H1[2]", Text: "2 Terms"},
		{Path: "//Document/P[3]", Text: "Terms body."},
	})

	headings := doctree.SectionHeadings(ex)
	if len(headings) != 2 || headings[1].Text != "2 Terms" {
		t.Errorf("unexpected section headings: %+v", headings)
	}
}

func TestMarkdownParser_CodeBlock(t *testing.T) {
	input := "# Setup\n\n```\nmake build\nmake test\n```\n"
	p := &MarkdownParser{}
	ex, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertElements(t, ex, []doctree.Element{
		{Path: "//Document/H1", Text: "Setup"},
		{Path: "//Document/P", Text: "make build\nmake test"},
	})
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	p := &MarkdownParser{}
	ex, err := p.Parse(strings.NewReader("Just a paragraph.\n\nAnother one.\n"), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doctree.SectionHeadings(ex)) != 0 {
		t.Errorf("expected no headings, got %v", elementPaths(ex))
	}
	if got := doctree.ReconstructText(ex); got != "Just a paragraph.\nAnother one." {
		t.Errorf("unexpected text %q", got)
	}
}

func TestMarkdownParser_Empty(t *testing.T) {
	p := &MarkdownParser{}
	ex, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ex.Elements) != 0 {
		t.Errorf("expected no elements, got %d", len(ex.Elements))
	}
}
