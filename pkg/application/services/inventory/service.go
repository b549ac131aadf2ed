// Package inventory reports stock positions net of open job allocations.
package inventory

import (
	"context"

	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
	"github.com/vsinha/jobshop/pkg/domain/services"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/records"
	"go.uber.org/zap"
)

// Service computes inventory snapshots from a record store
type Service struct {
	repo   *records.Repository
	policy entities.StatusPolicy
	logger *zap.Logger
}

func NewService(store repositories.RecordStore, policy entities.StatusPolicy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: records.NewRepository(store), policy: policy, logger: logger}
}

// Snapshot returns every item with its allocation to open jobs and derived availability
func (s *Service) Snapshot(ctx context.Context) ([]entities.InventorySnapshot, error) {
	items, err := s.repo.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	jobs, err := s.repo.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.ListAllJobLines(ctx)
	if err != nil {
		return nil, err
	}

	allocated := services.AllocatedQuantities(jobs, lines, s.policy)

	snapshots := make([]entities.InventorySnapshot, 0, len(items))
	reorder := 0
	for _, item := range items {
		alloc := allocated[item.ID]
		snap := entities.InventorySnapshot{
			Item:             item,
			Allocated:        alloc,
			Available:        item.Available(alloc),
			DisplayAvailable: item.DisplayAvailable(alloc),
			NeedsReorder:     item.NeedsReorder(alloc),
		}
		if snap.NeedsReorder {
			reorder++
		}
		snapshots = append(snapshots, snap)
	}

	s.logger.Debug("inventory snapshot computed", zap.Int("items", len(items)), zap.Int("needs_reorder", reorder))
	return snapshots, nil
}
