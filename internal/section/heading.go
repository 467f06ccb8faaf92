// Package section aligns the top-level sections of two versions of a
// document and cuts both texts into corresponding spans.
package section

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docdiff/internal/doctree"
)

// numberPrefix matches a section number such as "8.3.2.1". It only counts
// as a prefix when whitespace follows.
var numberPrefix = regexp.MustCompile(`^\d+(\.\d+)*`)

// Normalize strips surrounding whitespace and the leading section-number
// prefix from a heading. The result is the cross-document matching key.
// Repeated prefixes ("1 2 Title") are all removed so that normalizing a
// normalized heading is a no-op. Any Unicode space separates a prefix,
// including the non-breaking spaces PDF extraction tends to produce.
func Normalize(raw string) string {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	for {
		loc := numberPrefix.FindStringIndex(s)
		if loc == nil {
			break
		}
		rest := s[loc[1]:]
		r, _ := utf8.DecodeRuneInString(rest)
		if rest == "" || !unicode.IsSpace(r) {
			break
		}
		s = strings.TrimLeftFunc(rest, unicode.IsSpace)
	}
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// Heading is a top-level section title as extracted from a document.
type Heading struct {
	Text       string `json:"text"`       // verbatim, numbering included
	Path       string `json:"path"`       // structural path from extraction
	Normalized string `json:"normalized"` // matching key, may be empty
}

// Matchable reports whether the heading takes part in alignment.
func (h Heading) Matchable() bool { return h.Normalized != "" }

// Sequence is the ordered list of headings of one document.
type Sequence []Heading

// NewSequence normalizes the given heading elements in document order.
func NewSequence(elements []doctree.Element) Sequence {
	seq := make(Sequence, 0, len(elements))
	for _, el := range elements {
		seq = append(seq, Heading{
			Text:       el.Text,
			Path:       el.Path,
			Normalized: Normalize(el.Text),
		})
	}
	return seq
}

// HeadingsOf extracts and normalizes the depth-1 headings of an extraction.
func HeadingsOf(ex *doctree.Extraction) Sequence {
	return NewSequence(doctree.SectionHeadings(ex))
}

// Matchable returns the headings with a non-empty normalized form.
func (s Sequence) Matchable() Sequence {
	out := make(Sequence, 0, len(s))
	for _, h := range s {
		if h.Matchable() {
			out = append(out, h)
		}
	}
	return out
}

// Normalized returns the normalized text of every matchable heading.
func (s Sequence) Normalized() []string {
	out := make([]string, 0, len(s))
	for _, h := range s {
		if h.Matchable() {
			out = append(out, h.Normalized)
		}
	}
	return out
}

// index maps a normalized heading to its first occurrence.
type index map[string]int

func indexOf(s Sequence) index {
	idx := make(index, len(s))
	for i, h := range s {
		if _, ok := idx[h.Normalized]; !ok {
			idx[h.Normalized] = i
		}
	}
	return idx
}
