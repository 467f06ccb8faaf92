package parser

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/docdiff/internal/doctree"
)

func TestHTMLParser_Elements(t *testing.T) {
	input := `<html><head><title>T</title></head><body>
<nav><ul><li>1 Scope</li></ul></nav>
<h1>1 Scope</h1>
<p>Body
   text</p>
<ul><li>item</li></ul>
<script>var x = 1;</script>
<h2>1.1 Sub</h2>
</body></html>`

	p := &HTMLParser{}
	ex, err := p.Parse(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertElements(t, ex, []doctree.Element{
		{Path: "//Document/TOC/TOCI", Text: "1 Scope"},
		{Path: "//Document/H1", Text: "1 Scope"},
		{Path: "//Document/P", Text: "Body text"},
		{Path: "//Document/L/LI", Text: "item"},
		{Path: "//Document/H2", Text: "1.1 Sub"},
	})
}

func TestCSVParser_Rows(t *testing.T) {
	input := "name,role\nAda,engineer\nGrace,admiral,extra\n"
	p := &CSVParser{}
	ex, err := p.Parse(strings.NewReader(input), "people.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertElements(t, ex, []doctree.Element{
		{Path: "//Document/Table/TR", Text: "name | role"},
		{Path: "//Document/Table/TR[2]", Text: "name: Ada, role: engineer"},
		{Path: "//Document/Table/TR[3]", Text: "name: Grace, role: admiral, extra"},
	})
}

const structuredJSON = `{"elements": [
	{"Path": "//Document/H1", "Text": "1 Scope ", "Page": 0},
	{"Path": "//Document/P", "Text": "Body", "Page": 0}
]}`

func TestJSONParser(t *testing.T) {
	p := &JSONParser{}
	ex, err := p.Parse(strings.NewReader(structuredJSON), "structuredData.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertElements(t, ex, []doctree.Element{
		{Path: "//Document/H1", Text: "1 Scope "},
		{Path: "//Document/P", Text: "Body"},
	})

	if _, err := p.Parse(strings.NewReader("{"), "bad.json"); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestZipParser(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("figures/readme.txt")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("ignored"))
	w, err = zw.Create("result/structuredData.json")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte(structuredJSON))
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	p := &ZipParser{}
	ex, err := p.Parse(bytes.NewReader(buf.Bytes()), "extract.zip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ex.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(ex.Elements))
	}
}

func TestZipParser_MissingEntry(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.Create("other.json")
	zw.Close()

	p := &ZipParser{}
	_, err := p.Parse(bytes.NewReader(buf.Bytes()), "extract.zip")
	if err == nil || !strings.Contains(err.Error(), StructuredDataName) {
		t.Fatalf("expected missing entry error, got %v", err)
	}
}

func TestForFile(t *testing.T) {
	for _, name := range []string{"a.txt", "a.MD", "a.markdown", "a.csv", "a.htm", "a.pdf", "a.docx", "a.json", "a.zip"} {
		if _, err := ForFile(name, Options{}); err != nil {
			t.Errorf("ForFile(%q): %v", name, err)
		}
		if !IsSupportedExtension(name) {
			t.Errorf("IsSupportedExtension(%q) = false", name)
		}
	}
	if _, err := ForFile("a.xlsx", Options{}); err == nil {
		t.Error("expected error for unsupported extension")
	}
	p, _ := ForFile("a.pdf", Options{FallbackPdftotext: true})
	if !p.(*PDFParser).FallbackPdftotext {
		t.Error("expected pdftotext fallback to be carried to the PDF parser")
	}
}
