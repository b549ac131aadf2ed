package repositories

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// Collection names used by the engine
const (
	JobsCollection                  = "jobs"
	JobInventoryCollection          = "job_inventory"
	InventoryCollection             = "inventory"
	InventoryTransactionsCollection = "inventory_transactions"
)

// Record is a stored document in a collection
type Record struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	Fields     map[string]any `json:"fields"`
	Created    time.Time      `json:"created"`
	Updated    time.Time      `json:"updated"`
}

// Query selects records from a collection.
// Filter matches fields by equality, Sort names a field with an optional "-" prefix for
// descending order, and Limit of zero means no limit.
type Query struct {
	Filter map[string]any
	Sort   string
	Limit  int
}

// RecordStore provides collection-based record storage
type RecordStore interface {
	Get(ctx context.Context, collection, id string) (*Record, error)
	Find(ctx context.Context, collection string, query Query) ([]*Record, error)
	Create(ctx context.Context, collection string, fields map[string]any) (*Record, error)
	// Update merges fields into the existing record
	Update(ctx context.Context, collection, id string, fields map[string]any) (*Record, error)
	Delete(ctx context.Context, collection, id string) error
}
