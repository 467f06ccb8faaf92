package parser

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"

	"github.com/dgallion1/docdiff/internal/doctree"
)

// JSONParser reads a structured extraction produced by an external PDF
// extraction service.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, filename string) (*doctree.Extraction, error) {
	ex, err := doctree.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("parse extraction %s: %w", filename, err)
	}
	return ex, nil
}

// StructuredDataName is the extraction entry inside a service result archive.
const StructuredDataName = "structuredData.json"

// ZipParser reads the structuredData.json entry of an extraction archive.
type ZipParser struct{}

func (p *ZipParser) Parse(r io.Reader, filename string) (*doctree.Extraction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", filename, err)
	}

	for _, f := range zr.File {
		if path.Base(f.Name) != StructuredDataName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		defer rc.Close()
		return (&JSONParser{}).Parse(rc, f.Name)
	}
	return nil, fmt.Errorf("archive %s has no %s", filename, StructuredDataName)
}
