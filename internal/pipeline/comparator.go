package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docdiff/internal/compare"
	"github.com/dgallion1/docdiff/internal/section"
	"github.com/dgallion1/docdiff/internal/store"
)

// NoContentSummary is recorded for segment pairs that are blank on both
// sides; they are never sent to the model.
const NoContentSummary = "No content in either version."

// SegmentComparator runs the comparison model over aligned segment pairs
// with bounded concurrency. A failing segment never aborts the others.
type SegmentComparator struct {
	cmp           compare.Comparator
	log           *slog.Logger
	maxConcurrent int
	backoff       func(attempt int) time.Duration
}

func NewSegmentComparator(cmp compare.Comparator, log *slog.Logger, maxConcurrent int) *SegmentComparator {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &SegmentComparator{
		cmp:           cmp,
		log:           log,
		maxConcurrent: maxConcurrent,
		backoff:       Backoff,
	}
}

// Model names the model behind the comparator.
func (c *SegmentComparator) Model() string { return c.cmp.Model() }

// CompareSegments compares every pair and returns the sections in input order.
func (c *SegmentComparator) CompareSegments(ctx context.Context, pairs []section.SegmentPair) []store.Section {
	return c.CompareSegmentsFunc(ctx, pairs, nil)
}

// CompareSegmentsFunc is CompareSegments with a callback invoked as each
// section finishes, in completion order. done may be nil.
func (c *SegmentComparator) CompareSegmentsFunc(ctx context.Context, pairs []section.SegmentPair, done func(store.Section)) []store.Section {
	out := make([]store.Section, len(pairs))

	type segResult struct {
		sec store.Section
		idx int
	}
	results := make(chan segResult, len(pairs))
	sem := make(chan struct{}, c.maxConcurrent)

	for i, pair := range pairs {
		if pair.Blank() {
			results <- segResult{sec: blankSection(pair), idx: i}
			continue
		}
		sem <- struct{}{}
		go func(i int, pair section.SegmentPair) {
			defer func() { <-sem }()
			results <- segResult{sec: c.compareOne(ctx, i, pair), idx: i}
		}(i, pair)
	}

	for range pairs {
		r := <-results
		out[r.idx] = r.sec
		if done != nil {
			done(r.sec)
		}
	}
	return out
}

func (c *SegmentComparator) compareOne(ctx context.Context, idx int, pair section.SegmentPair) store.Section {
	sec := store.Section{SegmentPair: pair}
	log := c.log.With("segment", idx, "label", pair.Label)

	in := compare.Input{
		Label:               pair.Label,
		NextLabel:           pair.NextLabel,
		NewText:             pair.NewText,
		OldText:             pair.OldText,
		InsertedHeadings:    pair.InsertedHeadings,
		AbsorbedOldHeadings: pair.AbsorbedOldHeadings,
	}

	var res *compare.Result
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		res, lastErr = c.cmp.Compare(ctx, in)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		if attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable comparison error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(retryDelay(lastErr, attempt, c.backoff)):
		case <-ctx.Done():
			lastErr = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
	}

	if lastErr == nil && res == nil {
		lastErr = fmt.Errorf("empty comparison result")
	}
	if lastErr != nil {
		log.Error("comparison failed", "error", lastErr)
		sec.Error = fmt.Sprintf("compare %q: %s", pair.Label, lastErr)
		return sec
	}

	if dropped := compare.Sanitize(res); dropped > 0 {
		log.Debug("dropped invalid differences", "count", dropped)
	}
	sec.Result = res
	sec.ComparisonResults = res.Format()
	return sec
}

func blankSection(pair section.SegmentPair) store.Section {
	return store.Section{
		SegmentPair:       pair,
		Result:            &compare.Result{Differences: []compare.Difference{}, Summary: NoContentSummary},
		ComparisonResults: NoContentSummary,
	}
}
