package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docdiff/internal/config"
	"github.com/dgallion1/docdiff/internal/store"
)

// ErrQueueFull is returned by Submit when no queue slot is free.
var ErrQueueFull = errors.New("job queue is full")

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("pipeline stopped")

const cleanupInterval = 5 * time.Minute

// Orchestrator queues comparison jobs and runs them on a fixed pool of
// workers that share one SegmentComparator.
type Orchestrator struct {
	jobs       *JobStore
	queue      chan *Job
	comparator *SegmentComparator
	store      store.Store
	log        *slog.Logger
	cfg        config.Config

	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, comparator *SegmentComparator, st store.Store, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:       NewJobStore(cfg.JobTTL),
		queue:      make(chan *Job, cfg.MaxQueueSize),
		comparator: comparator,
		store:      st,
		log:        log,
		cfg:        cfg,
	}
}

// Start launches the workers and the job registry cleanup loop.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go o.runWorker(ctx, NewWorker(o.comparator, o.store, o.log.With("worker", i)))
	}
	o.wg.Add(1)
	go o.cleanupLoop(ctx)
	o.log.Info("pipeline started", "workers", o.cfg.WorkerCount, "queue_size", o.cfg.MaxQueueSize)
}

func (o *Orchestrator) runWorker(ctx context.Context, w *Worker) {
	defer o.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-o.queue:
			if !ok {
				return
			}
			w.Process(ctx, job)
		}
	}
}

func (o *Orchestrator) cleanupLoop(ctx context.Context) {
	defer o.wg.Done()
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.jobs.Cleanup()
		}
	}
}

// Stop cancels running jobs and waits for the workers to exit. Later
// calls are no-ops.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit registers the job and queues it without blocking. A job that
// cannot be queued is marked failed.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		job.AddError(ErrStopped.Error())
		job.SetStatus(StatusFailed, "queue")
		return ErrStopped
	}
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError(ErrQueueFull.Error())
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID, or nil once it has expired.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Store returns the result store for direct use by API handlers.
func (o *Orchestrator) Store() store.Store {
	return o.store
}

// Model names the comparison model in use.
func (o *Orchestrator) Model() string {
	return o.comparator.Model()
}
