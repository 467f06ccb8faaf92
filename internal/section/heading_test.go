package section

import (
	"strings"
	"testing"

	"github.com/dgallion1/docdiff/internal/doctree"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"8.3.2.1 Scope", "Scope"},
		{"3 Scope", "Scope"},
		{"10.1.2   Terms and Definitions  ", "Terms and Definitions"},
		{"  2 Padded", "Padded"},
		{"Scope", "Scope"},
		{"Annex A", "Annex A"},
		{"1.2", "1.2"},
		{"2.1.Title", "2.1.Title"},
		{"3 ", ""},
		{"   ", ""},
		{"1 2 Title", "Title"},
		{"Version 2 3 Notes", "Version 2 3 Notes"},
		{"3\u00a0Scope", "Scope"},
		{"4.1\u2003Key Management", "Key Management"},
		{"1 \u00a02 Title", "Title"},
		{"1 \v2 Title", "Title"},
		{"\u00a05\u00a0Annex\u00a0", "Annex"},
		{"2\u00a0", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"8.3.2.1 Scope", "1 2 Title", "1 2 3 ", " 4.4 Newly added ", "Summary",
		"12\tTabbed", "5.  Dotted", "", "0 0 0 0 x",
		"1 \u00a02 Title", "1 \v2 Title", "3\u00a0\u00a04\u2003x", "7\u0085\u00a08 Notes\u00a0",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNewSequence_KeepsPathAndText(t *testing.T) {
	seq := NewSequence([]doctree.Element{
		{Path: "//Document/H1", Text: "1 Scope "},
		{Path: "//Document/H1[2]", Text: "2 "},
		{Path: "//Document/H1[3]", Text: "3 Requirements"},
	})
	if len(seq) != 3 {
		t.Fatalf("expected 3 headings, got %d", len(seq))
	}
	if seq[0].Text != "1 Scope " || seq[0].Normalized != "Scope" {
		t.Errorf("unexpected first heading: %+v", seq[0])
	}
	if seq[1].Matchable() {
		t.Error("numbering-only heading should not be matchable")
	}
	if seq[2].Path != "//Document/H1[3]" {
		t.Errorf("path = %q", seq[2].Path)
	}

	m := seq.Matchable()
	if len(m) != 2 || m[1].Normalized != "Requirements" {
		t.Errorf("Matchable() = %+v", m)
	}
	if got := strings.Join(seq.Normalized(), "|"); got != "Scope|Requirements" {
		t.Errorf("Normalized() = %q", got)
	}
}

func TestHeadingsOf(t *testing.T) {
	ex := &doctree.Extraction{Elements: []doctree.Element{
		{Path: "//Document/H1", Text: "1 Scope"},
		{Path: "//Document/H2", Text: "1.1 Purpose"},
		{Path: "//Document/P", Text: "body"},
		{Path: "//Document/H1[2]", Text: "2 Terms"},
	}}
	seq := HeadingsOf(ex)
	if len(seq) != 2 {
		t.Fatalf("expected 2 depth-1 headings, got %d", len(seq))
	}
	if seq[1].Normalized != "Terms" {
		t.Errorf("seq[1] = %+v", seq[1])
	}
}
