package jobsync

import (
	"context"
	"errors"
	"testing"

	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
	"github.com/vsinha/jobshop/pkg/infrastructure/events"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/records"
)

func TestSync_JobNotFound(t *testing.T) {
	store := seededStore()
	s := NewSynchronizer(store, Config{}, nil, nil)

	_, err := s.Sync(context.Background(), "JOB-404", panel(), entities.DashQuantities{"-01": 1})
	if !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("Expected ErrJobNotFound, got %v", err)
	}
	if n := store.Count(repositories.JobInventoryCollection); n != 0 {
		t.Errorf("Expected no writes, got %d lines", n)
	}
}

func TestSync_CreatesThenLeavesUnchanged(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	s := NewSynchronizer(store, Config{}, nil, nil)
	dash := entities.DashQuantities{"-01": 2, "-02": 4}

	result, err := s.Sync(ctx, "JOB-1", panel(), dash)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if len(result.Created) != 3 {
		t.Fatalf("Expected 3 created lines, got %d", len(result.Created))
	}

	lines, _ := records.NewRepository(store).ListJobLines(ctx, "JOB-1")
	got := linesByInventory(lines)
	want := map[string]string{"AL": "2", "PLA": "40", "BOX": "6"}
	for id, qty := range want {
		if !got[id].Quantity.Equal(dec(qty)) {
			t.Errorf("%s: expected %s, got %s", id, qty, got[id].Quantity)
		}
	}
	if got["PLA"].Unit != "g" {
		t.Errorf("Expected PLA unit g, got %q", got["PLA"].Unit)
	}

	again, err := s.Sync(ctx, "JOB-1", panel(), dash)
	if err != nil {
		t.Fatalf("second Sync failed: %v", err)
	}
	if again.Writes() != 0 || len(again.Unchanged) != 3 {
		t.Errorf("Expected 3 unchanged and no writes, got %+v", again)
	}
}

func TestSync_UpdatesAndKeepsManualLines(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	repo := records.NewRepository(store)

	// A line within epsilon of the requirement and a manual addition the part never asks for
	repo.CreateJobLine(ctx, entities.JobInventoryLine{JobID: "JOB-1", InventoryID: "AL", Quantity: dec("2.00005"), Unit: "kg"})
	repo.CreateJobLine(ctx, entities.JobInventoryLine{JobID: "JOB-1", InventoryID: "GLUE", Quantity: dec("1"), Unit: "tube"})
	repo.CreateJobLine(ctx, entities.JobInventoryLine{JobID: "JOB-1", InventoryID: "PLA", Quantity: dec("5"), Unit: "g"})

	s := NewSynchronizer(store, Config{}, nil, nil)
	result, err := s.Sync(ctx, "JOB-1", panel(), entities.DashQuantities{"-01": 2, "-02": 4})
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	if len(result.Updated) != 1 || result.Updated[0].InventoryID != "PLA" {
		t.Errorf("Expected only PLA updated, got %+v", result.Updated)
	}
	if len(result.Created) != 1 || result.Created[0].InventoryID != "BOX" {
		t.Errorf("Expected only BOX created, got %+v", result.Created)
	}
	if len(result.Unchanged) != 1 || result.Unchanged[0] != "AL" {
		t.Errorf("Expected AL unchanged within epsilon, got %v", result.Unchanged)
	}

	lines, _ := repo.ListJobLines(ctx, "JOB-1")
	got := linesByInventory(lines)
	if _, ok := got["GLUE"]; !ok {
		t.Error("Manual GLUE line was removed")
	}
	if !got["PLA"].Quantity.Equal(dec("40")) {
		t.Errorf("Expected PLA 40, got %s", got["PLA"].Quantity)
	}

	// Dropping to zero units requires nothing, so nothing is written or removed
	empty, err := s.Sync(ctx, "JOB-1", panel(), entities.DashQuantities{})
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if empty.Writes() != 0 {
		t.Errorf("Expected no writes for empty dash quantities, got %d", empty.Writes())
	}
	if n := store.Count(repositories.JobInventoryCollection); n != 4 {
		t.Errorf("Expected 4 lines to remain, got %d", n)
	}
}

func TestSync_PartialFailureKeepsOtherLines(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{RecordStore: seededStore(), inventoryID: "PLA"}
	eventStore := events.NewInMemoryEventStore(nil)
	s := NewSynchronizer(store, Config{}, nil, eventStore)

	result, err := s.Sync(ctx, "JOB-1", panel(), entities.DashQuantities{"-01": 2, "-02": 4})
	if err != nil {
		t.Fatalf("Per-line failures must not fail the pass: %v", err)
	}
	if len(result.Failed) != 1 || result.Failed[0].InventoryID != "PLA" {
		t.Fatalf("Expected PLA failure, got %+v", result.Failed)
	}
	if len(result.Created) != 2 {
		t.Errorf("Expected the other 2 lines created, got %d", len(result.Created))
	}

	stream, _ := eventStore.ReadEvents("JOB-1", 1)
	counts := map[string]int{}
	for _, e := range stream {
		counts[e.Type()]++
	}
	if counts[events.JobInventoryLineCreatedEvent] != 2 || counts[events.JobInventoryLineFailedEvent] != 1 {
		t.Errorf("Unexpected events: %v", counts)
	}
}

func TestSync_CustomEpsilon(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	repo := records.NewRepository(store)
	repo.CreateJobLine(ctx, entities.JobInventoryLine{JobID: "JOB-1", InventoryID: "AL", Quantity: dec("0.45"), Unit: "kg"})

	s := NewSynchronizer(store, Config{Epsilon: dec("0.1")}, nil, nil)
	result, err := s.Sync(ctx, "JOB-1", panel(), entities.DashQuantities{"-01": 1})
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if len(result.Unchanged) != 1 || result.Unchanged[0] != "AL" {
		t.Errorf("Expected AL within 0.1 to stay unchanged, got %+v", result)
	}
}

func TestSync_RefusesConsumedJob(t *testing.T) {
	ctx := context.Background()
	store := seededStore()
	store.Seed(repositories.JobsCollection, "JOB-2", records.JobFields(entities.Job{PartID: "PANEL", Status: entities.JobDelivered}))
	store.Seed(repositories.JobsCollection, "JOB-3", records.JobFields(entities.Job{PartID: "PANEL", Status: entities.JobQualityCheck}))

	s := NewSynchronizer(store, Config{}, nil, nil)
	_, err := s.Sync(ctx, "JOB-2", panel(), entities.DashQuantities{"-01": 1})
	if !errors.Is(err, ErrJobConsumed) {
		t.Fatalf("Expected ErrJobConsumed for a delivered job, got %v", err)
	}
	if n := store.Count(repositories.JobInventoryCollection); n != 0 {
		t.Errorf("Expected no writes, got %d lines", n)
	}

	// quality_check consumes under a custom policy
	policy := entities.NewStatusPolicy(entities.JobQualityCheck)
	custom := NewSynchronizer(store, Config{Policy: &policy}, nil, nil)
	if _, err := custom.Sync(ctx, "JOB-3", panel(), entities.DashQuantities{"-01": 1}); !errors.Is(err, ErrJobConsumed) {
		t.Errorf("Expected ErrJobConsumed under custom policy, got %v", err)
	}
	if _, err := custom.Sync(ctx, "JOB-2", panel(), entities.DashQuantities{"-01": 1}); err != nil {
		t.Errorf("Delivered is open under the custom policy, got %v", err)
	}
}
