package entities

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownJobStatus is returned for a status outside the workflow set
var ErrUnknownJobStatus = errors.New("unknown job status")

// JobStatus represents a step of the job workflow
type JobStatus string

const (
	JobPending      JobStatus = "pending"
	JobInProgress   JobStatus = "in_progress"
	JobQualityCheck JobStatus = "quality_check"
	JobFinished     JobStatus = "finished"
	JobDelivered    JobStatus = "delivered"
	JobOnHold       JobStatus = "on_hold"
	JobCancelled    JobStatus = "cancelled"
)

// AllJobStatuses lists every status in workflow order
var AllJobStatuses = []JobStatus{
	JobPending,
	JobInProgress,
	JobQualityCheck,
	JobFinished,
	JobDelivered,
	JobOnHold,
	JobCancelled,
}

// ParseJobStatus converts a string into a known JobStatus
func ParseJobStatus(s string) (JobStatus, error) {
	normalized := JobStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, status := range AllJobStatuses {
		if status == normalized {
			return status, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownJobStatus, s)
}

// String method for JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// Job represents a production job for a part
type Job struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	PartID         string         `json:"part_id"`
	Status         JobStatus      `json:"status"`
	DashQuantities DashQuantities `json:"dash_quantities,omitempty"`
}

// JobInventoryLine records material consumption of a job against one inventory item
type JobInventoryLine struct {
	ID          string   `json:"id"`
	JobID       string   `json:"job_id"`
	InventoryID string   `json:"inventory_id"`
	Quantity    Quantity `json:"quantity"`
	Unit        string   `json:"unit"`
}

// NewJobInventoryLine creates a validated JobInventoryLine
func NewJobInventoryLine(jobID, inventoryID string, quantity Quantity, unit string) (*JobInventoryLine, error) {
	if jobID == "" {
		return nil, fmt.Errorf("job id cannot be empty")
	}
	if inventoryID == "" {
		return nil, fmt.Errorf("inventory id cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("quantity cannot be negative, got %s", quantity)
	}

	return &JobInventoryLine{
		JobID:       jobID,
		InventoryID: inventoryID,
		Quantity:    quantity,
		Unit:        unit,
	}, nil
}

// StatusPolicy classifies statuses as material-consuming or not
type StatusPolicy struct {
	consuming map[JobStatus]bool
}

// NewStatusPolicy creates a policy in which the given statuses consume material
func NewStatusPolicy(consuming ...JobStatus) StatusPolicy {
	set := make(map[JobStatus]bool, len(consuming))
	for _, status := range consuming {
		set[status] = true
	}
	return StatusPolicy{consuming: set}
}

// DefaultStatusPolicy treats finished and delivered jobs as having drawn their material from stock
func DefaultStatusPolicy() StatusPolicy {
	return NewStatusPolicy(JobFinished, JobDelivered)
}

// IsConsuming reports whether a job in the given status has drawn its material from stock
func (p StatusPolicy) IsConsuming(status JobStatus) bool {
	return p.consuming[status]
}

// IsOpen reports whether a job in the given status still holds an allocation on stock
func (p StatusPolicy) IsOpen(status JobStatus) bool {
	return !p.IsConsuming(status) && status != JobCancelled
}

// Direction returns the reconciliation to run for a status change.
// ok is false when the change stays within the same class.
func (p StatusPolicy) Direction(before, after JobStatus) (dir ReconcileDirection, ok bool) {
	wasConsuming := p.IsConsuming(before)
	isConsuming := p.IsConsuming(after)
	switch {
	case !wasConsuming && isConsuming:
		return Consume, true
	case wasConsuming && !isConsuming:
		return Restore, true
	default:
		return Consume, false
	}
}
