package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/vsinha/jobshop/pkg/application/dto"
	"github.com/vsinha/jobshop/pkg/application/services/inventory"
	"github.com/vsinha/jobshop/pkg/application/services/jobstatus"
	"github.com/vsinha/jobshop/pkg/application/services/jobsync"
	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
	"github.com/vsinha/jobshop/pkg/infrastructure/events"
	"github.com/vsinha/jobshop/pkg/infrastructure/logging"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/records"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger, err := logging.NewLogger(logging.Config{Level: "warn", Format: "console", OutputPath: "stderr"})
	if err != nil {
		return err
	}
	defer logger.Sync()

	catalog, err := csv.NewLoader().LoadCatalog("example/catalog")
	if err != nil {
		return err
	}
	part, ok := catalog.Part("BRKT-100")
	if !ok {
		return fmt.Errorf("BRKT-100 missing from catalog")
	}

	store := memory.NewRecordStore()
	for _, item := range catalog.Inventory {
		store.Seed(repositories.InventoryCollection, item.ID, records.InventoryItemFields(item))
	}
	for _, job := range catalog.Jobs {
		store.Seed(repositories.JobsCollection, job.ID, records.JobFields(job))
	}

	eventStore := events.NewInMemoryEventStore(logger)
	eventStore.Subscribe(events.AllEventTypes, events.HandlerFunc(func(e events.Event) error {
		fmt.Printf("   📣 %s\n", e.Type())
		return nil
	}))

	policy := entities.DefaultStatusPolicy()
	synchronizer := jobsync.NewSynchronizer(store, jobsync.Config{Policy: &policy}, logger, eventStore)
	status := jobstatus.NewService(store, policy, logger, eventStore)
	stock := inventory.NewService(store, policy, logger)

	// Rapid edits collapse into one pass once the window closes
	fmt.Println("✏️  Editing JOB-1001 quantities...")
	reloaded := make(chan *dto.SyncResult, 1)
	session := jobsync.NewSession(ctx, synchronizer, "JOB-1001", 200*time.Millisecond,
		func(result *dto.SyncResult, err error) {
			if err != nil {
				fmt.Printf("❌ sync failed: %v\n", err)
			}
			reloaded <- result
		})
	session.Schedule(part, entities.RawDashQuantities{"-01": 1})
	session.Schedule(part, entities.RawDashQuantities{"-01": 2, "-02": "4"})
	result := <-reloaded
	session.Wait()
	eventStore.Wait()
	if result != nil {
		fmt.Printf("✅ Synced: %d created, %d updated\n\n", len(result.Created), len(result.Updated))
	}

	if err := printSnapshot(ctx, stock); err != nil {
		return err
	}

	fmt.Println("🚚 Delivering JOB-1001...")
	if _, err := status.ChangeStatus(ctx, "JOB-1001", entities.JobDelivered); err != nil {
		return err
	}
	eventStore.Wait()
	if err := printSnapshot(ctx, stock); err != nil {
		return err
	}

	fmt.Println("↩️  Reopening JOB-1001...")
	if _, err := status.ChangeStatus(ctx, "JOB-1001", entities.JobInProgress); err != nil {
		return err
	}
	eventStore.Wait()
	return printSnapshot(ctx, stock)
}

func printSnapshot(ctx context.Context, stock *inventory.Service) error {
	snapshots, err := stock.Snapshot(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%-10s %-10s %-10s %-10s\n", "Item", "In Stock", "Allocated", "Available")
	for _, s := range snapshots {
		fmt.Printf("%-10s %-10s %-10s %-10s\n", s.Item.ID, s.Item.InStock, s.Allocated, s.Available)
	}
	fmt.Println()
	return nil
}
