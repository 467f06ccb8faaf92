package pipeline

import (
	"github.com/dgallion1/docdiff/internal/doctree"
	"github.com/dgallion1/docdiff/internal/section"
)

// AlignExtractions aligns two extracted documents. When a heading cannot
// be located in its text the documents are paired whole and the alignment
// error is returned alongside the fallback pairs as a warning.
func AlignExtractions(newEx, oldEx *doctree.Extraction) ([]section.SegmentPair, error) {
	newText := doctree.ReconstructText(newEx)
	oldText := doctree.ReconstructText(oldEx)

	pairs, err := section.Align(section.HeadingsOf(newEx), section.HeadingsOf(oldEx), newText, oldText)
	if err != nil {
		return section.WholeDocument(newText, oldText), err
	}
	return pairs, nil
}
