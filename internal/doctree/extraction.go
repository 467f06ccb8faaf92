package doctree

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DocumentPrefix is the root of every element path in an extraction.
const DocumentPrefix = "//Document/"

// Element is one structural element of an extracted document.
type Element struct {
	Path string `json:"Path"`
	Text string `json:"Text,omitempty"`
	Page int    `json:"Page"`
}

// Extraction is the decoded output of a structured document extractor.
// Only the element stream is interpreted; the other blocks are carried
// through untouched so cached extractions round-trip.
type Extraction struct {
	Version          json.RawMessage `json:"version,omitempty"`
	ExtendedMetadata json.RawMessage `json:"extended_metadata,omitempty"`
	Elements         []Element       `json:"elements"`
	Pages            json.RawMessage `json:"pages,omitempty"`
}

// Decode reads an extraction JSON document.
func Decode(r io.Reader) (*Extraction, error) {
	var ex Extraction
	if err := json.NewDecoder(r).Decode(&ex); err != nil {
		return nil, fmt.Errorf("decode extraction: %w", err)
	}
	return &ex, nil
}

// HeadingLevel reports the depth of a heading element path such as
// "//Document/H2[3]". Depth is the single digit after the H marker.
func HeadingLevel(path string) (int, bool) {
	p := strings.TrimPrefix(path, DocumentPrefix)
	if len(p) < 2 || p[0] != 'H' || !isDigit(p[1]) {
		return 0, false
	}
	if len(p) > 2 && isDigit(p[2]) {
		return 0, false
	}
	return int(p[1] - '0'), true
}

// IsTOC reports whether the element belongs to a table of contents.
func IsTOC(path string) bool {
	return strings.Contains(path, "TOC")
}

// SectionHeadings returns the depth-1 heading elements in document order.
// Element text is returned as extracted, without trimming.
func SectionHeadings(ex *Extraction) []Element {
	var out []Element
	for _, el := range ex.Elements {
		if level, ok := HeadingLevel(el.Path); ok && level == 1 {
			out = append(out, el)
		}
	}
	return out
}

// ReconstructText joins the text of every non-TOC element that has
// visible content, one element per line.
func ReconstructText(ex *Extraction) string {
	var b strings.Builder
	first := true
	for _, el := range ex.Elements {
		if IsTOC(el.Path) || strings.TrimSpace(el.Text) == "" {
			continue
		}
		if !first {
			b.WriteByte('\n')
		}
		b.WriteString(el.Text)
		first = false
	}
	return b.String()
}

// TableOfContents lists the text of table-of-contents elements in order.
func TableOfContents(ex *Extraction) []string {
	var out []string
	for _, el := range ex.Elements {
		if IsTOC(el.Path) && el.Text != "" {
			out = append(out, el.Text)
		}
	}
	return out
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func trimText(s string) string {
	return strings.TrimSpace(s)
}
