// Package compare asks a language model to describe the differences
// between two versions of a document section.
package compare

import (
	"context"
	"fmt"
	"strings"
)

// Difference types reported by the comparator.
const (
	TypeAdded    = "added"
	TypeRemoved  = "removed"
	TypeModified = "modified"
)

// Difference is one change between the old and new section text.
type Difference struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Section     string `json:"section,omitempty"`
	NewFileText string `json:"new_file_text,omitempty"`
	OldFileText string `json:"old_file_text,omitempty"`
	Content     string `json:"content,omitempty"`
	Position    *int   `json:"position,omitempty"`
}

// Result is the structured outcome of comparing one pair of texts.
type Result struct {
	Differences []Difference `json:"differences"`
	Summary     string       `json:"summary"`
}

// Input is one section pair to compare.
type Input struct {
	Label     string
	NextLabel string
	NewText   string
	OldText   string

	// Headings folded into the spans by alignment, passed as context.
	InsertedHeadings    []string
	AbsorbedOldHeadings []string
}

// Comparator produces a Result for a pair of section texts.
type Comparator interface {
	Compare(ctx context.Context, in Input) (*Result, error)
	Model() string
}

const resultSeparator = "\n\n-----------------------------------------------\n\n"

// Format renders the result as the plain-text report stored alongside
// each section.
func (r *Result) Format() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Differences:\n")
	for _, d := range r.Differences {
		fmt.Fprintf(&sb, "Type: %s, Description: %s\n", d.Type, d.Description)
		if d.Section != "" {
			fmt.Fprintf(&sb, "Section: %s\n", d.Section)
		}
		if d.NewFileText != "" || d.OldFileText != "" {
			fmt.Fprintf(&sb, "New content: %s\n", d.NewFileText)
			fmt.Fprintf(&sb, "Old content: %s\n", d.OldFileText)
		}
		if d.Content != "" {
			fmt.Fprintf(&sb, "Content: %s\n", d.Content)
		}
		if d.Position != nil {
			fmt.Fprintf(&sb, "Position: %d\n", *d.Position)
		}
	}
	sb.WriteString("\n\nSummary:")
	sb.WriteString(r.Summary)
	sb.WriteString(resultSeparator)
	return sb.String()
}

// Counts tallies differences by type.
func (r *Result) Counts() map[string]int {
	out := map[string]int{}
	if r == nil {
		return out
	}
	for _, d := range r.Differences {
		out[d.Type]++
	}
	return out
}
