package gormstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/jobshop/pkg/domain/repositories"
	"gorm.io/gorm/clause"
)

func TestOrderBy(t *testing.T) {
	byCreated := orderBy("-created")
	require.Len(t, byCreated.Columns, 1)
	assert.Equal(t, "created_at", byCreated.Columns[0].Column.Name)
	assert.True(t, byCreated.Columns[0].Desc)

	byField := orderBy("quantity")
	expr, ok := byField.Expression.(clause.Expr)
	require.True(t, ok)
	assert.Equal(t, "fields->>? ASC", expr.SQL)
	assert.Equal(t, []any{"quantity"}, expr.Vars)
}

// TestRecordStore_Postgres runs against a real database when JOBSHOP_TEST_DSN is set
func TestRecordStore_Postgres(t *testing.T) {
	dsn := os.Getenv("JOBSHOP_TEST_DSN")
	if dsn == "" {
		t.Skip("No test database configured - set JOBSHOP_TEST_DSN")
	}

	ctx := context.Background()
	store, err := Open(dsn, false)
	require.NoError(t, err, "Failed to open store")

	created, err := store.Create(ctx, "job_inventory", map[string]any{"job": "JOB-T", "quantity": "2"})
	require.NoError(t, err)
	defer store.Delete(ctx, "job_inventory", created.ID)

	updated, err := store.Update(ctx, "job_inventory", created.ID, map[string]any{"quantity": "3"})
	require.NoError(t, err)
	assert.Equal(t, "3", updated.Fields["quantity"])
	assert.Equal(t, "JOB-T", updated.Fields["job"])

	found, err := store.Find(ctx, "job_inventory", repositories.Query{Filter: map[string]any{"job": "JOB-T"}})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = store.Get(ctx, "job_inventory", "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
