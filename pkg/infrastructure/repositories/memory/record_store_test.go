package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
)

func TestRecordStore_CreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()

	created, err := store.Create(ctx, "job_inventory", map[string]any{"job": "JOB-1", "quantity": "2"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "job_inventory", created.Collection)

	fetched, err := store.Get(ctx, "job_inventory", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "JOB-1", fetched.Fields["job"])

	updated, err := store.Update(ctx, "job_inventory", created.ID, map[string]any{"quantity": "3"})
	require.NoError(t, err)
	assert.Equal(t, "3", updated.Fields["quantity"])
	assert.Equal(t, "JOB-1", updated.Fields["job"], "update merges fields")

	require.NoError(t, store.Delete(ctx, "job_inventory", created.ID))
	_, err = store.Get(ctx, "job_inventory", created.ID)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
}

func TestRecordStore_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()

	_, err := store.Get(ctx, "jobs", "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = store.Update(ctx, "jobs", "missing", map[string]any{"status": "pending"})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "jobs", "missing"), repositories.ErrNotFound)
}

func TestRecordStore_ReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()

	fields := map[string]any{"status": "pending"}
	store.Seed("jobs", "JOB-1", fields)
	fields["status"] = "mutated"

	record, err := store.Get(ctx, "jobs", "JOB-1")
	require.NoError(t, err)
	record.Fields["status"] = "also mutated"

	again, err := store.Get(ctx, "jobs", "JOB-1")
	require.NoError(t, err)
	assert.Equal(t, "pending", again.Fields["status"])
}

func TestRecordStore_FindFilterSortLimit(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()

	store.Seed("job_inventory", "a", map[string]any{"job": "JOB-1", "quantity": decimal.NewFromInt(10)})
	store.Seed("job_inventory", "b", map[string]any{"job": "JOB-1", "quantity": 2})
	store.Seed("job_inventory", "c", map[string]any{"job": "JOB-2", "quantity": "5"})
	store.Seed("job_inventory", "d", map[string]any{"job": "JOB-1", "quantity": "0.5"})

	records, err := store.Find(ctx, "job_inventory", repositories.Query{Filter: map[string]any{"job": "JOB-1"}})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"a", "b", "d"}, ids(records), "insertion order without sort")

	records, err = store.Find(ctx, "job_inventory", repositories.Query{
		Filter: map[string]any{"job": "JOB-1"},
		Sort:   "quantity",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b", "a"}, ids(records), "numeric ascending sort")

	records, err = store.Find(ctx, "job_inventory", repositories.Query{Sort: "-quantity", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(records), "descending with limit")

	records, err = store.Find(ctx, "job_inventory", repositories.Query{Filter: map[string]any{"missing": "x"}})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecordStore_FilterComparesIDsExactly(t *testing.T) {
	ctx := context.Background()
	store := NewRecordStore()

	store.Seed("job_inventory", "a", map[string]any{"job": "01"})
	store.Seed("job_inventory", "b", map[string]any{"job": "1"})
	store.Seed("job_inventory", "c", map[string]any{"job": "1.0"})

	records, err := store.Find(ctx, "job_inventory", repositories.Query{Filter: map[string]any{"job": "1"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(records))

	records, err = store.Find(ctx, "job_inventory", repositories.Query{Filter: map[string]any{"job": "01"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(records))

	records, err = store.Find(ctx, "job_inventory", repositories.Query{Filter: map[string]any{"id": "a"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(records))
}

func TestRecordStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewRecordStore()
	_, err := store.Create(ctx, "jobs", map[string]any{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.Count("jobs"))
}

func ids(records []*repositories.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
