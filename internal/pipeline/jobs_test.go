package pipeline

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("v4", "v3")
	if job.Status != StatusQueued {
		t.Errorf("expected queued, got %q", job.Status)
	}
	if job.Key() != "v4_v3" {
		t.Errorf("expected key v4_v3, got %q", job.Key())
	}
	id, err := uuid.Parse(job.ID)
	if err != nil {
		t.Fatalf("job id is not a uuid: %v", err)
	}
	if id.Version() != 7 {
		t.Errorf("expected a version 7 uuid, got %d", id.Version())
	}
	if NewJob("a", "b").ID == job.ID {
		t.Error("expected unique job ids")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusAligning, "aligning"},
		{StatusComparing, "comparing sections"},
		{StatusStoring, "storing results"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_ErrorsAndWarnings(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("section 3 failed")
	job.AddError("section 7 failed")
	job.AddWarning("heading missing")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "section 3 failed" {
		t.Errorf("expected first error %q, got %q", "section 3 failed", snap.Progress.Errors[0])
	}
	if got := job.Warnings(); len(got) != 1 || got[0] != "heading missing" {
		t.Errorf("unexpected warnings %v", got)
	}

	// Snapshots are copies.
	snap.Progress.Errors[0] = "changed"
	if job.Snapshot().Progress.Errors[0] != "section 3 failed" {
		t.Error("snapshot shares the job's error slice")
	}
}

func TestJob_RecordSection(t *testing.T) {
	job := &Job{ID: "incr-test", UpdatedAt: time.Now()}
	job.SetTotalSections(3)
	job.RecordSection(false)
	job.RecordSection(true)
	job.RecordSection(false)

	snap := job.Snapshot()
	if snap.Progress.TotalSections != 3 || snap.Progress.SectionsCompared != 3 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
	if snap.Progress.SectionsFailed != 1 {
		t.Errorf("expected 1 failed section, got %d", snap.Progress.SectionsFailed)
	}
}

func TestJob_SnapshotSlicesNotNil(t *testing.T) {
	job := &Job{ID: "snap-test", NewDocID: "n", OldDocID: "o", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil || snap.Progress.Warnings == nil {
		t.Error("expected non-nil slices in snapshot")
	}
	if snap.Key != "n_o" {
		t.Errorf("expected key n_o, got %q", snap.Key)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestBackoff(t *testing.T) {
	for attempt, base := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		d := Backoff(attempt)
		if d < base || d >= base+base/2 {
			t.Errorf("Backoff(%d) = %v, want in [%v, %v)", attempt, d, base, base+base/2)
		}
	}
	if d := Backoff(10); d < 30*time.Second || d >= 45*time.Second {
		t.Errorf("expected capped backoff, got %v", d)
	}
}
