package dto

import (
	"github.com/vsinha/jobshop/pkg/domain/entities"
)

// CalculationResult contains everything derived from one part and set of dash quantities
type CalculationResult struct {
	PartID         string                    `json:"part_id"`
	DashQuantities entities.DashQuantities   `json:"dash_quantities"`
	SetMultiplier  int64                     `json:"set_multiplier"`
	Allocation     entities.AllocationResult `json:"allocation"`
	Requirements   entities.Requirements     `json:"requirements"`
}

// LineFailure records a requirement whose line could not be written
type LineFailure struct {
	InventoryID string            `json:"inventory_id"`
	Quantity    entities.Quantity `json:"quantity"`
	Error       string            `json:"error"`
}

// SyncResult contains the outcome of one job inventory synchronization pass
type SyncResult struct {
	JobID     string                      `json:"job_id"`
	Sequence  uint64                      `json:"sequence,omitempty"`
	Created   []entities.JobInventoryLine `json:"created"`
	Updated   []entities.JobInventoryLine `json:"updated"`
	Unchanged []string                    `json:"unchanged"`
	Failed    []LineFailure               `json:"failed"`
}

// Writes counts the lines that were written
func (r *SyncResult) Writes() int {
	return len(r.Created) + len(r.Updated)
}

// StatusChangeResult contains the outcome of a job status change
type StatusChangeResult struct {
	JobID     string                       `json:"job_id"`
	From      entities.JobStatus           `json:"from"`
	To        entities.JobStatus           `json:"to"`
	Direction string                       `json:"direction,omitempty"` // empty when stock was not touched
	Mutations []entities.InventoryMutation `json:"mutations"`
}
