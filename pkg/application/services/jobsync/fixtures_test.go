package jobsync

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/records"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// panel has no set composition, so its per-set box is multiplied by total units
func panel() *entities.Part {
	return &entities.Part{
		ID:         "PANEL",
		LaborHours: dec("1"),
		Materials: []entities.MaterialLine{
			{InventoryID: "BOX", QuantityPerUnit: dec("1"), Unit: "ea", UsageType: entities.PerSet},
		},
		Variants: []entities.PartVariant{
			{VariantSuffix: "-01", Materials: []entities.MaterialLine{
				{InventoryID: "AL", QuantityPerUnit: dec("0.5"), Unit: "kg"},
			}},
			{VariantSuffix: "-02", Materials: []entities.MaterialLine{
				{InventoryID: "AL", QuantityPerUnit: dec("0.25"), Unit: "kg"},
				{InventoryID: "PLA", QuantityPerUnit: dec("10"), Unit: "g"},
			}},
		},
	}
}

func seededStore() *memory.RecordStore {
	store := memory.NewRecordStore()
	store.Seed(repositories.JobsCollection, "JOB-1", records.JobFields(entities.Job{
		Name:   "Panel run",
		PartID: "PANEL",
		Status: entities.JobInProgress,
	}))
	return store
}

func linesByInventory(lines []entities.JobInventoryLine) map[string]entities.JobInventoryLine {
	out := make(map[string]entities.JobInventoryLine, len(lines))
	for _, l := range lines {
		out[l.InventoryID] = l
	}
	return out
}

// failingStore rejects creates for one inventory item
type failingStore struct {
	*memory.RecordStore
	inventoryID string
}

func (s *failingStore) Create(ctx context.Context, collection string, fields map[string]any) (*repositories.Record, error) {
	if collection == repositories.JobInventoryCollection && fields[records.FieldInventory] == s.inventoryID {
		return nil, errors.New("write rejected")
	}
	return s.RecordStore.Create(ctx, collection, fields)
}

// gatedStore blocks the first job line listing until release is closed
type gatedStore struct {
	*memory.RecordStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}

	mu    sync.Mutex
	finds int
}

func newGatedStore(inner *memory.RecordStore) *gatedStore {
	return &gatedStore{
		RecordStore: inner,
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (s *gatedStore) Find(ctx context.Context, collection string, query repositories.Query) ([]*repositories.Record, error) {
	if collection == repositories.JobInventoryCollection {
		s.mu.Lock()
		s.finds++
		first := s.finds == 1
		s.mu.Unlock()
		if first {
			s.once.Do(func() { close(s.entered) })
			<-s.release
		}
	}
	return s.RecordStore.Find(ctx, collection, query)
}

func (s *gatedStore) passes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finds
}
