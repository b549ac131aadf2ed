// Package jobstatus applies job status changes and the stock movements they imply.
package jobstatus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vsinha/jobshop/pkg/application/dto"
	"github.com/vsinha/jobshop/pkg/application/services/jobsync"
	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
	"github.com/vsinha/jobshop/pkg/domain/services"
	"github.com/vsinha/jobshop/pkg/infrastructure/events"
	"github.com/vsinha/jobshop/pkg/infrastructure/metrics"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/records"
	"go.uber.org/zap"
)

// Service moves jobs between statuses. Crossing into the consuming class draws the
// job's lines from stock, crossing out of it puts them back.
type Service struct {
	repo       *records.Repository
	policy     entities.StatusPolicy
	logger     *zap.Logger
	eventStore events.EventStore

	// status changes read stock then write it, so they run one at a time
	mu sync.Mutex
}

// NewService creates a status service. eventStore may be nil.
func NewService(
	store repositories.RecordStore,
	policy entities.StatusPolicy,
	logger *zap.Logger,
	eventStore events.EventStore,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:       records.NewRepository(store),
		policy:     policy,
		logger:     logger,
		eventStore: eventStore,
	}
}

// ChangeStatus sets a job's status and reconciles stock when the change crosses the consuming class.
// Either every mutation and the new status are written, or stock is put back as it was.
func (s *Service) ChangeStatus(ctx context.Context, jobID string, status entities.JobStatus) (*dto.StatusChangeResult, error) {
	next, err := entities.ParseJobStatus(string(status))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", jobsync.ErrJobNotFound, jobID)
		}
		return nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	result := &dto.StatusChangeResult{JobID: jobID, From: job.Status, To: next}
	if job.Status == next {
		return result, nil
	}

	direction, reconcile := s.policy.Direction(job.Status, next)
	if !reconcile {
		if err := s.repo.UpdateJobStatus(ctx, jobID, next); err != nil {
			return nil, fmt.Errorf("failed to update status of job %s: %w", jobID, err)
		}
		s.publish(jobID, events.NewJobStatusChangedEvent(jobID, job.Status, next))
		return result, nil
	}

	mutations, err := s.reconcile(ctx, job, next, direction)
	metrics.RecordReconciliation(direction.String(), len(mutations), err)
	if err != nil {
		return nil, err
	}

	result.Direction = direction.String()
	result.Mutations = mutations

	s.logger.Info("job stock reconciled",
		zap.String("job_id", jobID),
		zap.String("from", string(job.Status)),
		zap.String("to", string(next)),
		zap.String("direction", direction.String()),
		zap.Int("mutations", len(mutations)))
	s.publish(jobID, events.NewInventoryReconciledEvent(jobID, direction, mutations))
	s.publish(jobID, events.NewJobStatusChangedEvent(jobID, job.Status, next))
	return result, nil
}

func (s *Service) reconcile(
	ctx context.Context,
	job entities.Job,
	next entities.JobStatus,
	direction entities.ReconcileDirection,
) ([]entities.InventoryMutation, error) {
	lines, err := s.repo.ListJobLines(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	inventory, err := s.repo.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	original := make(map[string]entities.Quantity, len(inventory))
	for _, item := range inventory {
		original[item.ID] = item.InStock
	}

	mutations := services.Reconcile(lines, inventory, direction)

	applied := make([]entities.InventoryMutation, 0, len(mutations))
	for _, m := range mutations {
		if err := s.repo.SetInStock(ctx, m.InventoryID, m.NewInStock); err != nil {
			s.revert(job.ID, applied, original)
			return nil, fmt.Errorf("failed to %s %s for job %s: %w", direction, m.InventoryID, job.ID, err)
		}
		applied = append(applied, m)
	}

	if err := s.repo.UpdateJobStatus(ctx, job.ID, next); err != nil {
		s.revert(job.ID, applied, original)
		return nil, fmt.Errorf("failed to update status of job %s: %w", job.ID, err)
	}

	for _, m := range applied {
		if err := s.repo.RecordTransaction(ctx, job.ID, direction, m); err != nil {
			s.logger.Warn("failed to record inventory transaction",
				zap.String("job_id", job.ID),
				zap.String("inventory_id", m.InventoryID),
				zap.Error(err))
		}
	}
	return applied, nil
}

// revert puts stock back to its pre-reconciliation level. It ignores the caller's
// context so a cancelled request still leaves stock consistent.
func (s *Service) revert(jobID string, applied []entities.InventoryMutation, original map[string]entities.Quantity) {
	ctx := context.Background()
	for i := len(applied) - 1; i >= 0; i-- {
		m := applied[i]
		if err := s.repo.SetInStock(ctx, m.InventoryID, original[m.InventoryID]); err != nil {
			s.logger.Error("failed to revert inventory mutation",
				zap.String("job_id", jobID),
				zap.String("inventory_id", m.InventoryID),
				zap.String("in_stock", original[m.InventoryID].String()),
				zap.Error(err))
		}
	}
}

func (s *Service) publish(jobID string, event events.Event) {
	if s.eventStore == nil {
		return
	}
	if err := s.eventStore.AppendEvent(jobID, event); err != nil {
		s.logger.Warn("failed to publish event", zap.String("event_type", event.Type()), zap.Error(err))
	}
}
