package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docdiff/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Extraction, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	b := newBuilder()

	var walk func(*html.Node, bool)
	walk = func(n *html.Node, inTOC bool) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				b.heading(level, textContent(n), 0)
				return
			}

			switch n.Data {
			case "script", "style", "footer", "header":
				return
			case "nav":
				inTOC = true
			case "p", "td", "blockquote", "pre":
				t := textContent(n)
				if inTOC {
					b.tocEntry(t, 0)
				} else {
					b.paragraph(t, 0)
				}
				return
			case "li":
				t := textContent(n)
				if inTOC {
					b.tocEntry(t, 0)
				} else {
					b.listItem(t, 0)
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inTOC)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body, false)
	} else {
		walk(doc, false)
	}

	return b.extraction(), nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
