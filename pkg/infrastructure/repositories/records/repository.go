package records

import (
	"context"
	"fmt"

	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
)

// Repository gives typed access to the engine's collections in a RecordStore
type Repository struct {
	store repositories.RecordStore
}

// NewRepository creates a typed repository over a record store
func NewRepository(store repositories.RecordStore) *Repository {
	return &Repository{store: store}
}

// Store returns the underlying record store
func (r *Repository) Store() repositories.RecordStore {
	return r.store
}

// GetJob loads a job. Errors wrap repositories.ErrNotFound when the job does not exist.
func (r *Repository) GetJob(ctx context.Context, jobID string) (entities.Job, error) {
	record, err := r.store.Get(ctx, repositories.JobsCollection, jobID)
	if err != nil {
		return entities.Job{}, err
	}
	return JobFromRecord(record)
}

// ListJobs loads every job
func (r *Repository) ListJobs(ctx context.Context) ([]entities.Job, error) {
	found, err := r.store.Find(ctx, repositories.JobsCollection, repositories.Query{})
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	jobs := make([]entities.Job, 0, len(found))
	for _, record := range found {
		job, err := JobFromRecord(record)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// UpdateJobStatus writes a job's status
func (r *Repository) UpdateJobStatus(ctx context.Context, jobID string, status entities.JobStatus) error {
	_, err := r.store.Update(ctx, repositories.JobsCollection, jobID, map[string]any{FieldStatus: string(status)})
	return err
}

// UpdateJobDashQuantities writes a job's requested variant quantities
func (r *Repository) UpdateJobDashQuantities(ctx context.Context, jobID string, dash entities.DashQuantities) error {
	fields := JobFields(entities.Job{DashQuantities: dash})
	_, err := r.store.Update(ctx, repositories.JobsCollection, jobID, map[string]any{
		FieldDashQuantities: fields[FieldDashQuantities],
	})
	return err
}

// ListJobLines loads the recorded inventory lines of a job
func (r *Repository) ListJobLines(ctx context.Context, jobID string) ([]entities.JobInventoryLine, error) {
	found, err := r.store.Find(ctx, repositories.JobInventoryCollection, repositories.Query{
		Filter: map[string]any{FieldJob: jobID},
		Sort:   "created",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory lines for job %s: %w", jobID, err)
	}
	return decodeLines(found)
}

// ListAllJobLines loads the inventory lines of every job
func (r *Repository) ListAllJobLines(ctx context.Context) ([]entities.JobInventoryLine, error) {
	found, err := r.store.Find(ctx, repositories.JobInventoryCollection, repositories.Query{})
	if err != nil {
		return nil, fmt.Errorf("failed to list job inventory lines: %w", err)
	}
	return decodeLines(found)
}

// CreateJobLine stores a new line and returns it with its id
func (r *Repository) CreateJobLine(ctx context.Context, line entities.JobInventoryLine) (entities.JobInventoryLine, error) {
	record, err := r.store.Create(ctx, repositories.JobInventoryCollection, JobInventoryLineFields(line))
	if err != nil {
		return entities.JobInventoryLine{}, err
	}
	return JobInventoryLineFromRecord(record)
}

// UpdateJobLine writes a line's quantity and unit
func (r *Repository) UpdateJobLine(ctx context.Context, line entities.JobInventoryLine) error {
	_, err := r.store.Update(ctx, repositories.JobInventoryCollection, line.ID, map[string]any{
		FieldQuantity: line.Quantity.String(),
		FieldUnit:     line.Unit,
	})
	return err
}

// GetInventoryItem loads one inventory item
func (r *Repository) GetInventoryItem(ctx context.Context, id string) (entities.InventoryItem, error) {
	record, err := r.store.Get(ctx, repositories.InventoryCollection, id)
	if err != nil {
		return entities.InventoryItem{}, err
	}
	return InventoryItemFromRecord(record)
}

// ListInventory loads every inventory item
func (r *Repository) ListInventory(ctx context.Context) ([]entities.InventoryItem, error) {
	found, err := r.store.Find(ctx, repositories.InventoryCollection, repositories.Query{Sort: FieldName})
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	items := make([]entities.InventoryItem, 0, len(found))
	for _, record := range found {
		item, err := InventoryItemFromRecord(record)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// SetInStock writes an inventory item's physical stock level
func (r *Repository) SetInStock(ctx context.Context, inventoryID string, inStock entities.Quantity) error {
	_, err := r.store.Update(ctx, repositories.InventoryCollection, inventoryID, map[string]any{
		FieldInStock: inStock.String(),
	})
	return err
}

// RecordTransaction writes the audit trail entry for an applied mutation
func (r *Repository) RecordTransaction(
	ctx context.Context,
	jobID string,
	direction entities.ReconcileDirection,
	mutation entities.InventoryMutation,
) error {
	_, err := r.store.Create(ctx, repositories.InventoryTransactionsCollection, TransactionFields(jobID, direction, mutation))
	return err
}

func decodeLines(found []*repositories.Record) ([]entities.JobInventoryLine, error) {
	lines := make([]entities.JobInventoryLine, 0, len(found))
	for _, record := range found {
		line, err := JobInventoryLineFromRecord(record)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}
