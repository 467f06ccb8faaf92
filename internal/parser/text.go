package parser

import (
	"io"

	"github.com/dgallion1/docdiff/internal/doctree"
)

// TextParser handles plain text files. Lines such as "4.2 Key Management"
// are taken as headings and dot-leader lines as contents entries.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Extraction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b := newBuilder()
	b.addPlainText(string(data), 0)
	return b.extraction(), nil
}
