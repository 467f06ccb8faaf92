package parser

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/docdiff/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Paragraph styles decide the element
// kind: "Heading N" maps to HN and "TOC N" to a contents entry.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Extraction, error) {
	// go-docx needs a ReaderAt with a known size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	b := newBuilder()
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		style := docxStyle(para)
		switch {
		case strings.HasPrefix(style, "toc"):
			b.tocEntry(text, 0)
		case styleLevel(style, "heading") > 0:
			b.heading(styleLevel(style, "heading"), text, 0)
		case style == "title":
			b.add("Title", text, 0)
		case strings.HasPrefix(style, "list"):
			b.listItem(text, 0)
		default:
			b.paragraph(text, 0)
		}
	}

	return b.extraction(), nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
}

// styleLevel parses "heading2" style names.
func styleLevel(style, prefix string) int {
	rest, ok := strings.CutPrefix(style, prefix)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > 9 {
		return 0
	}
	return n
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
