package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/docdiff/internal/store"
)

// Worker processes a single comparison job.
type Worker struct {
	comparator *SegmentComparator
	store      store.Store
	log        *slog.Logger
}

func NewWorker(comparator *SegmentComparator, st store.Store, log *slog.Logger) *Worker {
	return &Worker{
		comparator: comparator,
		store:      st,
		log:        log,
	}
}

// Process runs alignment, comparison and storage for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "pair", job.Key())

	// Phase 1: Align
	job.SetStatus(StatusAligning, "aligning")
	newEx, err := w.store.GetExtraction(ctx, job.NewDocID)
	if err != nil {
		w.failLoad(log, job, job.NewDocID, err)
		return
	}
	oldEx, err := w.store.GetExtraction(ctx, job.OldDocID)
	if err != nil {
		w.failLoad(log, job, job.OldDocID, err)
		return
	}

	pairs, alignErr := AlignExtractions(newEx, oldEx)
	if alignErr != nil {
		log.Warn("alignment failed, comparing whole documents", "error", alignErr)
		job.AddWarning(fmt.Sprintf("alignment: %s; compared entire documents", alignErr))
	}
	job.SetTotalSections(len(pairs))
	log.Info("aligned documents", "sections", len(pairs))

	// Phase 2: Compare
	job.SetStatus(StatusComparing, "comparing")
	sections := w.comparator.CompareSegmentsFunc(ctx, pairs, func(s store.Section) {
		job.RecordSection(s.Failed())
		if s.Failed() {
			job.AddError(s.Error)
		}
	})

	failed := 0
	for _, s := range sections {
		if s.Failed() {
			failed++
		}
	}
	log.Info("comparison complete", "sections", len(sections), "failed", failed)

	// Phase 3: Store. Failed sections keep their aligned text and error so
	// the pair can be inspected and retried.
	job.SetStatus(StatusStoring, "storing")
	cmp := &store.Comparison{
		Key:      job.Key(),
		NewDocID: job.NewDocID,
		OldDocID: job.OldDocID,
		Model:    w.comparator.Model(),
		Sections: sections,
		Warnings: job.Warnings(),
	}
	if err := w.store.SaveComparison(ctx, cmp); err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}

	switch {
	case failed > 0 && failed == len(sections):
		job.SetStatus(StatusFailed, "comparing")
	case failed > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}

func (w *Worker) failLoad(log *slog.Logger, job *Job, docID string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		err = fmt.Errorf("document %s has no stored extraction", docID)
	}
	log.Error("load extraction failed", "doc_id", docID, "error", err)
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, "aligning")
}
