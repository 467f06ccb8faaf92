package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/docdiff/internal/compare"
	"github.com/dgallion1/docdiff/internal/section"
	"github.com/dgallion1/docdiff/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeComparator answers from fn and counts calls per label.
type fakeComparator struct {
	mu    sync.Mutex
	calls map[string]int
	fn    func(in compare.Input, call int) (*compare.Result, error)
}

func newFakeComparator(fn func(in compare.Input, call int) (*compare.Result, error)) *fakeComparator {
	return &fakeComparator{calls: map[string]int{}, fn: fn}
}

func (f *fakeComparator) Model() string { return "fake-model" }

func (f *fakeComparator) Compare(ctx context.Context, in compare.Input) (*compare.Result, error) {
	f.mu.Lock()
	f.calls[in.Label]++
	call := f.calls[in.Label]
	f.mu.Unlock()
	return f.fn(in, call)
}

func (f *fakeComparator) callCount(label string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[label]
}

func echoResult(in compare.Input, _ int) (*compare.Result, error) {
	return &compare.Result{
		Differences: []compare.Difference{{Type: "modified", Description: in.Label}},
		Summary:     " changed " + in.Label + " ",
	}, nil
}

func noBackoff(int) time.Duration { return 0 }

func testPairs() []section.SegmentPair {
	return []section.SegmentPair{
		{Label: section.LabelInitial, NewText: " ", OldText: "", NextLabel: "A"},
		{Label: "A", NewText: "A new", OldText: "A old", NextLabel: "B"},
		{Label: "B", NewText: "B new", OldText: "B old", NextLabel: "C"},
		{Label: "C", NewText: "C new", OldText: "C old", NextLabel: section.NextLastSection},
	}
}

func TestCompareSegments_OrderAndBlank(t *testing.T) {
	fake := newFakeComparator(echoResult)
	sc := NewSegmentComparator(fake, discardLogger(), 2)

	got := sc.CompareSegments(context.Background(), testPairs())
	if len(got) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(got))
	}

	if got[0].ComparisonResults != NoContentSummary || got[0].Result.Summary != NoContentSummary {
		t.Errorf("expected blank pair summary, got %+v", got[0])
	}
	if fake.callCount(section.LabelInitial) != 0 {
		t.Error("blank pair should not reach the comparator")
	}

	for i, label := range []string{"A", "B", "C"} {
		s := got[i+1]
		if s.Label != label {
			t.Errorf("section %d: expected label %q, got %q", i+1, label, s.Label)
		}
		if s.Failed() || s.Result == nil {
			t.Fatalf("section %d unexpectedly failed: %s", i+1, s.Error)
		}
		if s.Result.Summary != "changed "+label {
			t.Errorf("expected sanitized summary, got %q", s.Result.Summary)
		}
		if !strings.HasPrefix(s.ComparisonResults, "Differences:\n") {
			t.Errorf("expected formatted results, got %q", s.ComparisonResults)
		}
	}
}

func TestCompareSegments_FailureIsolation(t *testing.T) {
	fake := newFakeComparator(func(in compare.Input, call int) (*compare.Result, error) {
		if in.Label == "B" {
			return nil, errors.New("model refused")
		}
		return echoResult(in, call)
	})
	sc := NewSegmentComparator(fake, discardLogger(), 4)

	var done int
	var mu sync.Mutex
	got := sc.CompareSegmentsFunc(context.Background(), testPairs(), func(store.Section) {
		mu.Lock()
		done++
		mu.Unlock()
	})

	if done != 4 {
		t.Errorf("expected 4 progress callbacks, got %d", done)
	}
	if !got[2].Failed() || got[2].Result != nil || got[2].ComparisonResults != "" {
		t.Errorf("expected section B to fail, got %+v", got[2])
	}
	if !strings.Contains(got[2].Error, "model refused") {
		t.Errorf("expected error text, got %q", got[2].Error)
	}
	if got[1].Failed() || got[3].Failed() {
		t.Error("failure leaked into neighbouring sections")
	}
	if fake.callCount("B") != 1 {
		t.Errorf("non-retryable error should not be retried, got %d calls", fake.callCount("B"))
	}
}

func TestCompareSegments_RetriesRetryable(t *testing.T) {
	fake := newFakeComparator(func(in compare.Input, call int) (*compare.Result, error) {
		if call < 3 {
			return nil, &compare.RetryableError{StatusCode: 503, Message: "overloaded"}
		}
		return echoResult(in, call)
	})
	sc := NewSegmentComparator(fake, discardLogger(), 1)
	sc.backoff = noBackoff

	pairs := []section.SegmentPair{{Label: "A", NewText: "x", OldText: "y", NextLabel: section.NextLastSection}}
	got := sc.CompareSegments(context.Background(), pairs)
	if got[0].Failed() {
		t.Fatalf("expected success after retries, got %s", got[0].Error)
	}
	if fake.callCount("A") != MaxRetries {
		t.Errorf("expected %d calls, got %d", MaxRetries, fake.callCount("A"))
	}
}

func TestCompareSegments_RetriesExhausted(t *testing.T) {
	fake := newFakeComparator(func(compare.Input, int) (*compare.Result, error) {
		return nil, &compare.RetryableError{StatusCode: 429, Message: "slow down"}
	})
	sc := NewSegmentComparator(fake, discardLogger(), 1)
	sc.backoff = noBackoff

	pairs := []section.SegmentPair{{Label: "A", NewText: "x", OldText: "y"}}
	got := sc.CompareSegments(context.Background(), pairs)
	if !got[0].Failed() {
		t.Fatal("expected failure after exhausting retries")
	}
	if fake.callCount("A") != MaxRetries {
		t.Errorf("expected %d calls, got %d", MaxRetries, fake.callCount("A"))
	}
}

func TestCompareSegments_Cancelled(t *testing.T) {
	fake := newFakeComparator(echoResult)
	sc := NewSegmentComparator(fake, discardLogger(), 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := sc.CompareSegments(ctx, testPairs())
	if len(got) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(got))
	}
	for _, s := range got[1:] {
		if !s.Failed() || !strings.Contains(s.Error, context.Canceled.Error()) {
			t.Errorf("expected cancellation error, got %q", s.Error)
		}
	}
	if got[0].Failed() {
		t.Error("blank pair should still get its summary")
	}
}

func TestCompareSegments_NilResult(t *testing.T) {
	fake := newFakeComparator(func(compare.Input, int) (*compare.Result, error) { return nil, nil })
	sc := NewSegmentComparator(fake, discardLogger(), 1)
	got := sc.CompareSegments(context.Background(), []section.SegmentPair{{Label: "A", NewText: "x"}})
	if !got[0].Failed() {
		t.Error("expected nil result to be treated as a failure")
	}
}

func TestRetryDelay_HonorsRetryAfter(t *testing.T) {
	err := &compare.RetryableError{StatusCode: 429, RetryAfter: 7}
	if d := retryDelay(err, 0, noBackoff); d != 7*time.Second {
		t.Errorf("expected Retry-After delay, got %v", d)
	}
	if d := retryDelay(errors.New("x"), 0, func(int) time.Duration { return time.Second }); d != time.Second {
		t.Errorf("expected backoff delay, got %v", d)
	}
}
