package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/taskdeck/internal/domain/model"
)

func TestActionLogRepo_AppendAndReadAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActionLogRepo(db)
	ctx := context.Background()

	err := repo.Append(ctx, model.LogRecord{
		Timestamp: "2025-03-01 10:00:00",
		Action:    "fetch_events",
		Details:   "Fetched 3 events",
	})
	require.NoError(t, err)

	err = repo.Append(ctx, model.LogRecord{
		Timestamp: "2025-03-01 10:00:05",
		Action:    "fetch_tasks",
		Details:   "Fetched 7 tasks",
	})
	require.NoError(t, err)

	records, err := repo.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "fetch_events", records[0].Action)
	assert.Equal(t, "fetch_tasks", records[1].Action)
}

func TestActionLogRepo_ReadAllEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActionLogRepo(db)

	records, err := repo.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestActionLogRepo_AppendPreservesOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActionLogRepo(db)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		err := repo.Append(ctx, model.LogRecord{
			Timestamp: "2025-03-01 10:00:00",
			Action:    "act",
			Details:   fmt.Sprintf("entry %d", i),
		})
		require.NoError(t, err)
	}

	records, err := repo.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 20)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("entry %d", i), rec.Details)
	}
}
