package records

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/jobshop/pkg/domain/entities"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
	"github.com/vsinha/jobshop/pkg/infrastructure/repositories/memory"
)

func TestDecimal_AcceptsStoreRepresentations(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "0"},
		{"", "0"},
		{"1.25", "1.25"},
		{json.Number("3.5"), "3.5"},
		{float64(0.1), "0.1"},
		{int(4), "4"},
		{int64(-2), "-2"},
		{decimal.RequireFromString("7.001"), "7.001"},
	}
	for _, c := range cases {
		got, err := Decimal(c.in)
		require.NoError(t, err, "%v", c.in)
		assert.True(t, got.Equal(decimal.RequireFromString(c.want)), "%v: got %s", c.in, got)
	}

	_, err := Decimal("abc")
	assert.Error(t, err)
	_, err = Decimal([]string{"1"})
	assert.Error(t, err)
}

func TestInventoryItem_RoundTrip(t *testing.T) {
	item := entities.InventoryItem{
		ID:            "AL-6061",
		Name:          "Aluminium 6061",
		Unit:          "kg",
		InStock:       decimal.RequireFromString("-2.5"),
		OnOrder:       decimal.RequireFromString("10"),
		ReorderPoint:  decimal.RequireFromString("4"),
		CustomerPrice: decimal.RequireFromString("20"),
	}

	decoded, err := InventoryItemFromRecord(&repositories.Record{ID: item.ID, Fields: InventoryItemFields(item)})
	require.NoError(t, err)
	assert.Equal(t, item.Name, decoded.Name)
	assert.True(t, decoded.InStock.Equal(item.InStock))
	assert.True(t, decoded.CustomerPrice.Equal(item.CustomerPrice))
	assert.True(t, decoded.Disposed.IsZero())
}

func TestJobFromRecord(t *testing.T) {
	record := &repositories.Record{
		ID: "JOB-1",
		Fields: map[string]any{
			FieldPart:           "BRKT-100",
			FieldStatus:         "in_progress",
			FieldDashQuantities: map[string]any{"01": float64(2), "-02": "4", "-03": 0},
		},
	}

	job, err := JobFromRecord(record)
	require.NoError(t, err)
	assert.Equal(t, entities.JobInProgress, job.Status)
	assert.Equal(t, entities.DashQuantities{"-01": 2, "-02": 4}, job.DashQuantities)

	record.Fields[FieldStatus] = "exploded"
	_, err = JobFromRecord(record)
	assert.Error(t, err)
}

func TestRepository_JobLines(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	repo := NewRepository(store)

	created, err := repo.CreateJobLine(ctx, entities.JobInventoryLine{
		JobID: "JOB-1", InventoryID: "PLA", Quantity: decimal.RequireFromString("12.5"), Unit: "g",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	_, err = repo.CreateJobLine(ctx, entities.JobInventoryLine{JobID: "JOB-2", InventoryID: "PLA", Quantity: decimal.NewFromInt(1)})
	require.NoError(t, err)

	created.Quantity = decimal.RequireFromString("13")
	require.NoError(t, repo.UpdateJobLine(ctx, created))

	lines, err := repo.ListJobLines(ctx, "JOB-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Quantity.Equal(decimal.NewFromInt(13)))

	all, err := repo.ListAllJobLines(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRepository_InventoryAndTransactions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRecordStore()
	repo := NewRepository(store)

	store.Seed(repositories.InventoryCollection, "PLA", InventoryItemFields(entities.InventoryItem{Name: "PLA filament", InStock: decimal.NewFromInt(100)}))
	require.NoError(t, repo.SetInStock(ctx, "PLA", decimal.NewFromInt(40)))

	item, err := repo.GetInventoryItem(ctx, "PLA")
	require.NoError(t, err)
	assert.True(t, item.InStock.Equal(decimal.NewFromInt(40)))

	err = repo.RecordTransaction(ctx, "JOB-1", entities.Consume, entities.InventoryMutation{
		InventoryID: "PLA", NewInStock: decimal.NewFromInt(40), ChangeAmount: decimal.NewFromInt(-60),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Count(repositories.InventoryTransactionsCollection))

	_, err = repo.GetJob(ctx, "nope")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
