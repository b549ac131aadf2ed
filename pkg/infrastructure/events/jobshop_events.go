package events

import (
	"github.com/vsinha/jobshop/pkg/domain/entities"
)

const (
	JobInventoryLineCreatedEvent = "job_inventory.line.created"
	JobInventoryLineUpdatedEvent = "job_inventory.line.updated"
	JobInventoryLineFailedEvent  = "job_inventory.line.failed"

	InventoryConsumedEvent = "inventory.consumed"
	InventoryRestoredEvent = "inventory.restored"

	JobStatusChangedEvent = "job.status.changed"
)

// AllEventTypes lists every event type the engine publishes
var AllEventTypes = []string{
	JobInventoryLineCreatedEvent,
	JobInventoryLineUpdatedEvent,
	JobInventoryLineFailedEvent,
	InventoryConsumedEvent,
	InventoryRestoredEvent,
	JobStatusChangedEvent,
}

type JobInventoryLineCreated struct {
	Line entities.JobInventoryLine `json:"line"`
}

type JobInventoryLineUpdated struct {
	Line        entities.JobInventoryLine `json:"line"`
	PreviousQty entities.Quantity         `json:"previous_quantity"`
}

type JobInventoryLineFailed struct {
	JobID       string            `json:"job_id"`
	InventoryID string            `json:"inventory_id"`
	Quantity    entities.Quantity `json:"quantity"`
	Error       string            `json:"error"`
}

// InventoryReconciled is the payload of both inventory.consumed and inventory.restored
type InventoryReconciled struct {
	JobID     string                       `json:"job_id"`
	Direction string                       `json:"direction"`
	Mutations []entities.InventoryMutation `json:"mutations"`
}

type JobStatusChanged struct {
	JobID string             `json:"job_id"`
	From  entities.JobStatus `json:"from"`
	To    entities.JobStatus `json:"to"`
}

func NewJobInventoryLineCreatedEvent(line entities.JobInventoryLine) Event {
	return NewEvent(JobInventoryLineCreatedEvent, line.JobID, JobInventoryLineCreated{Line: line})
}

func NewJobInventoryLineUpdatedEvent(line entities.JobInventoryLine, previous entities.Quantity) Event {
	return NewEvent(JobInventoryLineUpdatedEvent, line.JobID, JobInventoryLineUpdated{
		Line:        line,
		PreviousQty: previous,
	})
}

func NewJobInventoryLineFailedEvent(jobID string, req entities.MaterialRequirement, err error) Event {
	return NewEvent(JobInventoryLineFailedEvent, jobID, JobInventoryLineFailed{
		JobID:       jobID,
		InventoryID: req.InventoryID,
		Quantity:    req.Quantity,
		Error:       err.Error(),
	})
}

func NewInventoryReconciledEvent(
	jobID string,
	direction entities.ReconcileDirection,
	mutations []entities.InventoryMutation,
) Event {
	eventType := InventoryConsumedEvent
	if direction == entities.Restore {
		eventType = InventoryRestoredEvent
	}
	return NewEvent(eventType, jobID, InventoryReconciled{
		JobID:     jobID,
		Direction: direction.String(),
		Mutations: mutations,
	})
}

func NewJobStatusChangedEvent(jobID string, from, to entities.JobStatus) Event {
	return NewEvent(JobStatusChangedEvent, jobID, JobStatusChanged{JobID: jobID, From: from, To: to})
}
