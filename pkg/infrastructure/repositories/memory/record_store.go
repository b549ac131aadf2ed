package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
)

// RecordStore provides in-memory collection storage
type RecordStore struct {
	mutex       sync.RWMutex
	collections map[string]map[string]*repositories.Record
	order       map[string][]string // insertion order per collection
	now         func() time.Time
}

// NewRecordStore creates a new in-memory record store
func NewRecordStore() *RecordStore {
	return &RecordStore{
		collections: make(map[string]map[string]*repositories.Record),
		order:       make(map[string][]string),
		now:         time.Now,
	}
}

// Verify interface compliance
var _ repositories.RecordStore = (*RecordStore)(nil)

// Seed inserts a record with a caller-chosen id, replacing any existing record with that id
func (s *RecordStore) Seed(collection, id string, fields map[string]any) *repositories.Record {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	records := s.collection(collection)
	if _, exists := records[id]; !exists {
		s.order[collection] = append(s.order[collection], id)
	}
	now := s.now()
	record := &repositories.Record{
		ID:         id,
		Collection: collection,
		Fields:     copyFields(fields),
		Created:    now,
		Updated:    now,
	}
	records[id] = record
	return cloneRecord(record)
}

// Get returns a record by id
func (s *RecordStore) Get(ctx context.Context, collection, id string) (*repositories.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	record, exists := s.collections[collection][id]
	if !exists {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, repositories.ErrNotFound)
	}
	return cloneRecord(record), nil
}

// Find returns the records of a collection matching the query
func (s *RecordStore) Find(ctx context.Context, collection string, query repositories.Query) ([]*repositories.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	records := s.collections[collection]
	matched := make([]*repositories.Record, 0)
	for _, id := range s.order[collection] {
		record, exists := records[id]
		if !exists || !matches(record, query.Filter) {
			continue
		}
		matched = append(matched, cloneRecord(record))
	}

	if query.Sort != "" {
		field := strings.TrimPrefix(query.Sort, "-")
		descending := strings.HasPrefix(query.Sort, "-")
		sort.SliceStable(matched, func(i, j int) bool {
			cmp := compareValues(sortValue(matched[i], field), sortValue(matched[j], field))
			if descending {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

// Create stores a new record with a generated id
func (s *RecordStore) Create(ctx context.Context, collection string, fields map[string]any) (*repositories.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := uuid.New().String()
	now := s.now()
	record := &repositories.Record{
		ID:         id,
		Collection: collection,
		Fields:     copyFields(fields),
		Created:    now,
		Updated:    now,
	}
	s.collection(collection)[id] = record
	s.order[collection] = append(s.order[collection], id)
	return cloneRecord(record), nil
}

// Update merges fields into an existing record
func (s *RecordStore) Update(ctx context.Context, collection, id string, fields map[string]any) (*repositories.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	record, exists := s.collections[collection][id]
	if !exists {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, repositories.ErrNotFound)
	}
	for k, v := range fields {
		record.Fields[k] = v
	}
	record.Updated = s.now()
	return cloneRecord(record), nil
}

// Delete removes a record
func (s *RecordStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	records := s.collections[collection]
	if _, exists := records[id]; !exists {
		return fmt.Errorf("%s/%s: %w", collection, id, repositories.ErrNotFound)
	}
	delete(records, id)

	ids := s.order[collection]
	for i, existing := range ids {
		if existing == id {
			s.order[collection] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of records in a collection
func (s *RecordStore) Count(collection string) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.collections[collection])
}

func (s *RecordStore) collection(name string) map[string]*repositories.Record {
	records, exists := s.collections[name]
	if !exists {
		records = make(map[string]*repositories.Record)
		s.collections[name] = records
	}
	return records
}

func matches(record *repositories.Record, filter map[string]any) bool {
	for field, want := range filter {
		var got any
		switch field {
		case "id":
			got = record.ID
		default:
			value, exists := record.Fields[field]
			if !exists {
				return false
			}
			got = value
		}
		// ids are opaque, so "01" and "1" are different keys
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func sortValue(record *repositories.Record, field string) any {
	switch field {
	case "id":
		return record.ID
	case "created":
		return record.Created.UnixNano()
	case "updated":
		return record.Updated.UnixNano()
	default:
		return record.Fields[field]
	}
}

// compareValues orders numbers numerically and everything else by its string form.
// Only sorting uses it; filters compare exactly.
func compareValues(a, b any) int {
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	ad, aErr := decimal.NewFromString(as)
	bd, bErr := decimal.NewFromString(bs)
	if aErr == nil && bErr == nil {
		return ad.Cmp(bd)
	}
	return strings.Compare(as, bs)
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func cloneRecord(record *repositories.Record) *repositories.Record {
	clone := *record
	clone.Fields = copyFields(record.Fields)
	return &clone
}
