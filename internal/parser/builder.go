package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/docdiff/internal/doctree"
)

// builder assembles an element stream with indexed structural paths in
// the same shape a structured extraction service produces:
// //Document/H1, //Document/H1[2], //Document/P[7] and so on.
type builder struct {
	counts   map[string]int
	elements []doctree.Element
}

func newBuilder() *builder {
	return &builder{counts: make(map[string]int)}
}

func (b *builder) add(tag, text string, page int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	b.counts[tag]++
	path := doctree.DocumentPrefix + tag
	if n := b.counts[tag]; n > 1 {
		path = fmt.Sprintf("%s[%d]", path, n)
	}
	b.elements = append(b.elements, doctree.Element{Path: path, Text: text, Page: page})
}

func (b *builder) heading(level int, text string, page int) {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	b.add(fmt.Sprintf("H%d", level), text, page)
}

func (b *builder) paragraph(text string, page int) { b.add("P", text, page) }

func (b *builder) listItem(text string, page int) { b.add("L/LI", text, page) }

func (b *builder) tocEntry(text string, page int) { b.add("TOC/TOCI", text, page) }

func (b *builder) tableRow(text string, page int) { b.add("Table/TR", text, page) }

func (b *builder) extraction() *doctree.Extraction {
	return &doctree.Extraction{Elements: b.elements}
}

var (
	// numberedHeading matches "3 Scope" or "4.2.1 Key Management".
	numberedHeading = regexp.MustCompile(`^(\d+(?:\.\d+)*)\.?\s+(\p{Lu}.*)$`)
	// tocLine matches a contents entry with dot leaders and a page number.
	tocLine = regexp.MustCompile(`\.{4,}\s*\d+\s*$`)
)

const maxHeadingLen = 120

// classifyLine guesses whether a line of extracted plain text is a
// numbered heading and at what depth. Sentences and long lines are body.
func classifyLine(line string) (level int, ok bool) {
	line = strings.TrimSpace(line)
	if len(line) > maxHeadingLen || strings.HasSuffix(line, ".") || strings.HasSuffix(line, ",") {
		return 0, false
	}
	m := numberedHeading.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	return strings.Count(m[1], ".") + 1, true
}

// addPlainText splits a block of extracted text into heading, contents and
// paragraph elements. Consecutive body lines form one paragraph.
func (b *builder) addPlainText(text string, page int) {
	var para []string
	flush := func() {
		if len(para) > 0 {
			b.paragraph(strings.Join(para, "\n"), page)
			para = para[:0]
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case tocLine.MatchString(trimmed):
			flush()
			b.tocEntry(trimmed, page)
		default:
			if level, ok := classifyLine(trimmed); ok {
				flush()
				b.heading(level, trimmed, page)
				continue
			}
			para = append(para, trimmed)
		}
	}
	flush()
}
