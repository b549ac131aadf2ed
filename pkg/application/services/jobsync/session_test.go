package jobsync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vsinha/jobshop/pkg/application/dto"
	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/records"
)

type reloadRecorder struct {
	mu      sync.Mutex
	results []*dto.SyncResult
	done    chan struct{}
}

func newReloadRecorder() *reloadRecorder {
	return &reloadRecorder{done: make(chan struct{}, 16)}
}

func (r *reloadRecorder) reload(result *dto.SyncResult, err error) {
	r.mu.Lock()
	r.results = append(r.results, result)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *reloadRecorder) snapshot() []*dto.SyncResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*dto.SyncResult(nil), r.results...)
}

func waitReload(t *testing.T, r *reloadRecorder) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for reload")
	}
}

func TestSession_CollapsesRapidEdits(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore(seededStore())
	close(store.release)
	recorder := newReloadRecorder()

	session := NewSession(ctx, NewSynchronizer(store, Config{}, nil, nil), "JOB-1", 30*time.Millisecond, recorder.reload)
	session.Schedule(panel(), entities.RawDashQuantities{"-01": 1})
	session.Schedule(panel(), entities.RawDashQuantities{"-01": "2"})
	last := session.Schedule(panel(), entities.RawDashQuantities{"01": 3, "-02": ""})

	waitReload(t, recorder)
	session.Wait()

	if store.passes() != 1 {
		t.Errorf("Expected a single sync pass, got %d", store.passes())
	}
	results := recorder.snapshot()
	if len(results) != 1 || results[0].Sequence != last {
		t.Fatalf("Expected one reload for sequence %d, got %+v", last, results)
	}

	lines, _ := records.NewRepository(store).ListJobLines(ctx, "JOB-1")
	got := linesByInventory(lines)
	if !got["AL"].Quantity.Equal(dec("1.5")) {
		t.Errorf("Expected lines for the last edit (AL 1.5), got %s", got["AL"].Quantity)
	}
}

func TestSession_DiscardsStaleCompletion(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore(seededStore())
	recorder := newReloadRecorder()

	session := NewSession(ctx, NewSynchronizer(store, Config{}, nil, nil), "JOB-1", 5*time.Millisecond, recorder.reload)
	first := session.Schedule(panel(), entities.RawDashQuantities{"-01": 1})

	// The first pass is now blocked inside the store
	select {
	case <-store.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("First pass never reached the store")
	}

	second := session.Schedule(panel(), entities.RawDashQuantities{"-01": 4})
	waitReload(t, recorder)

	close(store.release)
	session.Wait()

	results := recorder.snapshot()
	if len(results) != 1 {
		t.Fatalf("Expected only the latest completion to reload, got %d", len(results))
	}
	if results[0].Sequence != second || second <= first {
		t.Errorf("Expected reload for sequence %d, got %d", second, results[0].Sequence)
	}

	// The superseded pass must not overwrite the later quantities
	lines, _ := records.NewRepository(store).ListJobLines(ctx, "JOB-1")
	got := linesByInventory(lines)
	if !got["AL"].Quantity.Equal(dec("2")) || !got["BOX"].Quantity.Equal(dec("4")) {
		t.Errorf("Expected AL 2 and BOX 4 from the latest edit, got AL %s BOX %s", got["AL"].Quantity, got["BOX"].Quantity)
	}
}

func TestSession_Cancel(t *testing.T) {
	store := seededStore()
	recorder := newReloadRecorder()

	session := NewSession(context.Background(), NewSynchronizer(store, Config{}, nil, nil), "JOB-1", 10*time.Millisecond, recorder.reload)
	session.Schedule(panel(), entities.RawDashQuantities{"-01": 1})
	session.Cancel()

	time.Sleep(50 * time.Millisecond)
	session.Wait()

	if len(recorder.snapshot()) != 0 {
		t.Error("Cancelled edit must not reload")
	}
	if n := store.Count(repositories.JobInventoryCollection); n != 0 {
		t.Errorf("Cancelled edit must not write, got %d lines", n)
	}
}

func TestSession_Flush(t *testing.T) {
	store := seededStore()
	recorder := newReloadRecorder()

	session := NewSession(context.Background(), NewSynchronizer(store, Config{}, nil, nil), "JOB-1", time.Hour, recorder.reload)

	result, err := session.Flush(context.Background())
	if result != nil || err != nil {
		t.Fatalf("Flush with nothing pending should be a no-op, got %v, %v", result, err)
	}

	seq := session.Schedule(panel(), entities.RawDashQuantities{"-02": 2})
	result, err = session.Flush(context.Background())
	if err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if result.Sequence != seq || len(result.Created) != 3 {
		t.Errorf("Unexpected flush result: %+v", result)
	}
	if len(recorder.snapshot()) != 1 {
		t.Errorf("Expected one reload after flush, got %d", len(recorder.snapshot()))
	}
}
