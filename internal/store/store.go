// Package store defines persistence for aligned comparisons and cached
// document extractions.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dgallion1/docdiff/internal/compare"
	"github.com/dgallion1/docdiff/internal/doctree"
	"github.com/dgallion1/docdiff/internal/section"
)

// ErrNotFound is returned when a comparison or extraction does not exist.
var ErrNotFound = errors.New("not found")

// PairKey builds the storage key of a (new, old) document pair.
func PairKey(newDocID, oldDocID string) string {
	return newDocID + "_" + oldDocID
}

// Section is one aligned segment pair together with its comparison outcome.
type Section struct {
	section.SegmentPair

	// ComparisonResults is the plain-text rendering of Result. Empty when
	// the comparison failed.
	ComparisonResults string          `json:"comparison_results"`
	Result            *compare.Result `json:"result,omitempty"`
	Error             string          `json:"error,omitempty"`
}

// Failed reports whether the comparator failed for this section.
func (s Section) Failed() bool { return s.Error != "" }

// Comparison is the persisted record for one document pair.
type Comparison struct {
	Key       string    `json:"file_pair"`
	NewDocID  string    `json:"new_doc_id"`
	OldDocID  string    `json:"old_doc_id"`
	Model     string    `json:"model,omitempty"`
	Sections  []Section `json:"sections"`
	Warnings  []string  `json:"warnings,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Headings lists the section labels in order.
func (c *Comparison) Headings() []string {
	out := make([]string, len(c.Sections))
	for i, s := range c.Sections {
		out[i] = s.Label
	}
	return out
}

// SectionsByHeading returns every section labeled heading. Labels repeat
// when a document has duplicate titles.
func (c *Comparison) SectionsByHeading(heading string) []Section {
	var out []Section
	for _, s := range c.Sections {
		if s.Label == heading {
			out = append(out, s)
		}
	}
	return out
}

// Summary condenses the record for listings.
func (c *Comparison) Summary() ComparisonSummary {
	sum := ComparisonSummary{
		Key:       c.Key,
		NewDocID:  c.NewDocID,
		OldDocID:  c.OldDocID,
		Sections:  len(c.Sections),
		UpdatedAt: c.UpdatedAt,
	}
	for _, s := range c.Sections {
		if s.Failed() {
			sum.Failed++
		}
	}
	return sum
}

// ComparisonSummary is a listing entry.
type ComparisonSummary struct {
	Key       string    `json:"file_pair"`
	NewDocID  string    `json:"new_doc_id"`
	OldDocID  string    `json:"old_doc_id"`
	Sections  int       `json:"sections"`
	Failed    int       `json:"failed"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SortSummaries orders a listing newest first, then by key.
func SortSummaries(list []ComparisonSummary) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].Key < list[j].Key
	})
}

// ComparisonStore persists comparisons keyed by PairKey.
type ComparisonStore interface {
	// SaveComparison inserts or replaces the record with c.Key.
	SaveComparison(ctx context.Context, c *Comparison) error
	GetComparison(ctx context.Context, key string) (*Comparison, error)
	ListComparisons(ctx context.Context) ([]ComparisonSummary, error)
	DeleteComparison(ctx context.Context, key string) error
}

// ExtractionStore caches extraction outputs by document id.
type ExtractionStore interface {
	SaveExtraction(ctx context.Context, docID string, ex *doctree.Extraction) error
	GetExtraction(ctx context.Context, docID string) (*doctree.Extraction, error)
}

// Store is a full persistence backend.
type Store interface {
	ComparisonStore
	ExtractionStore
	Close() error
}
