package store

import (
	"context"
	"sync"
	"time"

	"github.com/dgallion1/docdiff/internal/doctree"
)

// Memory is an in-process Store. Records are copied on the way in and out.
type Memory struct {
	mu          sync.RWMutex
	comparisons map[string]*Comparison
	extractions map[string]*doctree.Extraction
	now         func() time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		comparisons: make(map[string]*Comparison),
		extractions: make(map[string]*doctree.Extraction),
		now:         time.Now,
	}
}

func (m *Memory) SaveComparison(_ context.Context, c *Comparison) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := copyComparison(c)
	now := m.now().UTC()
	cp.CreatedAt = now
	if prev, ok := m.comparisons[c.Key]; ok {
		cp.CreatedAt = prev.CreatedAt
	}
	cp.UpdatedAt = now
	m.comparisons[c.Key] = cp

	c.CreatedAt, c.UpdatedAt = cp.CreatedAt, cp.UpdatedAt
	return nil
}

func (m *Memory) GetComparison(_ context.Context, key string) (*Comparison, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.comparisons[key]
	if !ok {
		return nil, ErrNotFound
	}
	return copyComparison(c), nil
}

func (m *Memory) ListComparisons(_ context.Context) ([]ComparisonSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ComparisonSummary, 0, len(m.comparisons))
	for _, c := range m.comparisons {
		out = append(out, c.Summary())
	}
	SortSummaries(out)
	return out, nil
}

func (m *Memory) DeleteComparison(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comparisons[key]; !ok {
		return ErrNotFound
	}
	delete(m.comparisons, key)
	return nil
}

func (m *Memory) SaveExtraction(_ context.Context, docID string, ex *doctree.Extraction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *ex
	cp.Elements = append([]doctree.Element(nil), ex.Elements...)
	m.extractions[docID] = &cp
	return nil
}

func (m *Memory) GetExtraction(_ context.Context, docID string) (*doctree.Extraction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ex, ok := m.extractions[docID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *ex
	cp.Elements = append([]doctree.Element(nil), ex.Elements...)
	return &cp, nil
}

func (m *Memory) Close() error { return nil }

func copyComparison(c *Comparison) *Comparison {
	cp := *c
	cp.Sections = append([]Section(nil), c.Sections...)
	cp.Warnings = append([]string(nil), c.Warnings...)
	return &cp
}
