package pathstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dgallion1/docdiff/internal/doctree"
	"github.com/dgallion1/docdiff/internal/store"
)

const (
	comparisonsPrefix = "docdiff/comparisons"
	extractionsPrefix = "docdiff/extractions"
	listLimit         = 1000
	source            = "docdiff"
)

// Store keeps comparisons and extractions as pathstore nodes. Each
// comparison is linked to the extractions of its two documents.
type Store struct {
	client *Client
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

func NewStore(client *Client) *Store {
	return &Store{client: client, now: time.Now}
}

func comparisonKey(key string) string {
	return comparisonsPrefix + "/" + url.PathEscape(key)
}

func extractionKey(docID string) string {
	return extractionsPrefix + "/" + url.PathEscape(docID)
}

func (s *Store) SaveComparison(ctx context.Context, c *store.Comparison) error {
	now := s.now().UTC()
	c.UpdatedAt = now
	if c.CreatedAt.IsZero() {
		prev, err := s.GetComparison(ctx, c.Key)
		switch {
		case err == nil:
			c.CreatedAt = prev.CreatedAt
		case errors.Is(err, store.ErrNotFound):
			c.CreatedAt = now
		default:
			return err
		}
	}

	key := comparisonKey(c.Key)
	if err := s.client.PutNode(ctx, key, NodeRequest{Value: c, MergeMode: "replace", Source: source}); err != nil {
		return err
	}

	for _, docID := range []string{c.NewDocID, c.OldDocID} {
		if docID == "" {
			continue
		}
		err := s.client.PutLink(ctx, LinkRequest{
			From:    key,
			To:      extractionKey(docID),
			Weight:  1,
			Summary: fmt.Sprintf("compares %s with %s", c.NewDocID, c.OldDocID),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetComparison(ctx context.Context, key string) (*store.Comparison, error) {
	node, err := s.client.GetNode(ctx, comparisonKey(key))
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, store.ErrNotFound
	}
	var c store.Comparison
	if err := json.Unmarshal(node.Value, &c); err != nil {
		return nil, fmt.Errorf("decode comparison %s: %w", key, err)
	}
	return &c, nil
}

func (s *Store) ListComparisons(ctx context.Context) ([]store.ComparisonSummary, error) {
	nodes, err := s.client.ListChildren(ctx, comparisonsPrefix, listLimit)
	if err != nil {
		return nil, err
	}
	out := make([]store.ComparisonSummary, 0, len(nodes))
	for _, n := range nodes {
		var c store.Comparison
		if err := json.Unmarshal(n.Value, &c); err != nil {
			return nil, fmt.Errorf("decode comparison %s: %w", n.Key, err)
		}
		out = append(out, c.Summary())
	}
	store.SortSummaries(out)
	return out, nil
}

func (s *Store) DeleteComparison(ctx context.Context, key string) error {
	existed, err := s.client.DeleteNode(ctx, comparisonKey(key), false)
	if err != nil {
		return err
	}
	if !existed {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) SaveExtraction(ctx context.Context, docID string, ex *doctree.Extraction) error {
	return s.client.PutNode(ctx, extractionKey(docID), NodeRequest{Value: ex, MergeMode: "replace", Source: source})
}

func (s *Store) GetExtraction(ctx context.Context, docID string) (*doctree.Extraction, error) {
	node, err := s.client.GetNode(ctx, extractionKey(docID))
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, store.ErrNotFound
	}
	var ex doctree.Extraction
	if err := json.Unmarshal(node.Value, &ex); err != nil {
		return nil, fmt.Errorf("decode extraction %s: %w", docID, err)
	}
	return &ex, nil
}

func (s *Store) Close() error {
	s.client.Close()
	return nil
}
