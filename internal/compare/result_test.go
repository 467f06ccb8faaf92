package compare

import (
	"strings"
	"testing"
)

func TestResult_Format(t *testing.T) {
	pos := 12
	r := &Result{
		Differences: []Difference{
			{
				Type:        TypeModified,
				Description: "Threshold raised",
				Section:     "4.1",
				NewFileText: "limit is 10",
				OldFileText: "limit is 5",
				Position:    &pos,
			},
			{Type: TypeAdded, Description: "New annex", Content: "Annex C"},
		},
		Summary: "Threshold raised; annex added.",
	}

	got := r.Format()
	want := "Differences:\n" +
		"Type: modified, Description: Threshold raised\n" +
		"Section: 4.1\n" +
		"New content: limit is 10\n" +
		"Old content: limit is 5\n" +
		"Position: 12\n" +
		"Type: added, Description: New annex\n" +
		"Content: Annex C\n" +
		"\n\nSummary:Threshold raised; annex added." +
		resultSeparator
	if got != want {
		t.Errorf("Format() mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestResult_FormatNil(t *testing.T) {
	var r *Result
	if r.Format() != "" {
		t.Error("nil result should format as empty string")
	}
}

func TestResult_Counts(t *testing.T) {
	r := &Result{Differences: []Difference{
		{Type: TypeAdded}, {Type: TypeAdded}, {Type: TypeRemoved},
	}}
	c := r.Counts()
	if c[TypeAdded] != 2 || c[TypeRemoved] != 1 || c[TypeModified] != 0 {
		t.Errorf("Counts() = %v", c)
	}
}

func TestBuildComparePrompt(t *testing.T) {
	p := BuildComparePrompt(Input{
		Label:               "Scope",
		NextLabel:           "Requirements",
		NewText:             "new body",
		OldText:             "old body",
		InsertedHeadings:    []string{"Terms"},
		AbsorbedOldHeadings: []string{"Legacy"},
	})
	for _, want := range []string{
		`Section: "Scope"`,
		`Followed by: "Requirements"`,
		"only present in the new version: Terms",
		"only present in the old version: Legacy",
		"New File text: new body",
		"Old File text: old body",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestStripCodeBlock(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{}\n```", "{}"},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripCodeBlock(tt.in); got != tt.want {
			t.Errorf("stripCodeBlock(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
