package section

import (
	"errors"
	"fmt"
)

// Fixed labels used for segments that are not bounded by a matched heading.
const (
	LabelInitial        = "Initial content"
	LabelEntireDocument = "Entire document"
	NextEntireDocument  = "Entire document was provided"
	NextLastSection     = "Last section: No section after this."
)

// Span is a half-open byte range [Start, End) of a document text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the span width.
func (s Span) Len() int { return s.End - s.Start }

// SegmentPair is one aligned unit: the text of a section in the new
// document and the corresponding text in the old document.
type SegmentPair struct {
	Label     string `json:"section_heading"`
	NewText   string `json:"new_text"`
	OldText   string `json:"old_text"`
	NextLabel string `json:"next_section_heading"`

	NewSpan Span `json:"new_span"`
	OldSpan Span `json:"old_span"`

	// InsertedHeadings are new-only headings folded into this segment.
	InsertedHeadings []string `json:"inserted_headings,omitempty"`
	// AbsorbedOldHeadings are old-only headings whose text falls in OldSpan.
	AbsorbedOldHeadings []string `json:"absorbed_old_headings,omitempty"`
}

// Blank reports whether both sides of the pair are empty after trimming.
func (p SegmentPair) Blank() bool {
	return isBlank(p.NewText) && isBlank(p.OldText)
}

func isBlank(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
		default:
			return false
		}
	}
	return true
}

// ErrHeadingNotFound is returned when a heading cannot be located in its
// document text at or after the current position.
var ErrHeadingNotFound = errors.New("heading not found in document text")

// Side identifies which document a failure refers to.
type Side string

const (
	SideNew Side = "new"
	SideOld Side = "old"
)

// MissingHeadingError describes a heading that could not be located.
type MissingHeadingError struct {
	Side    Side
	Heading string
	From    int
}

func (e *MissingHeadingError) Error() string {
	return fmt.Sprintf("%s document: heading %q not found at or after offset %d", e.Side, e.Heading, e.From)
}

func (e *MissingHeadingError) Unwrap() error { return ErrHeadingNotFound }

// WholeDocument returns the single pair used when no heading aligns.
func WholeDocument(newText, oldText string) []SegmentPair {
	return []SegmentPair{{
		Label:     LabelEntireDocument,
		NewText:   newText,
		OldText:   oldText,
		NextLabel: NextEntireDocument,
		NewSpan:   Span{0, len(newText)},
		OldSpan:   Span{0, len(oldText)},
	}}
}
