package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/taskdeck/internal/domain/port/driven"
)

func TestCredentialRepo_SetAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	err := repo.Set(ctx, "trello", "token", "tkn_abc123")
	require.NoError(t, err)

	val, err := repo.Get(ctx, "trello", "token")
	require.NoError(t, err)
	assert.Equal(t, "tkn_abc123", val)
}

func TestCredentialRepo_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	val, err := repo.Get(ctx, "trello", "nonexistent")
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestCredentialRepo_UpsertOverwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	err := repo.Set(ctx, "google", "token", "old-value")
	require.NoError(t, err)

	err = repo.Set(ctx, "google", "token", "new-value")
	require.NoError(t, err)

	val, err := repo.Get(ctx, "google", "token")
	require.NoError(t, err)
	assert.Equal(t, "new-value", val)
}

func TestCredentialRepo_GetAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	err := repo.Set(ctx, "trello", "key", "key_abc")
	require.NoError(t, err)

	err = repo.Set(ctx, "trello", "token", "tkn_def")
	require.NoError(t, err)

	fields, err := repo.GetAll(ctx, "trello")
	require.NoError(t, err)
	assert.Len(t, fields, 2)
	assert.Equal(t, "key_abc", fields["key"])
	assert.Equal(t, "tkn_def", fields["token"])
}

func TestCredentialRepo_GetAllEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	fields, err := repo.GetAll(ctx, "google")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestCredentialRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	err := repo.Set(ctx, "trello", "key", "key_abc")
	require.NoError(t, err)
	err = repo.Set(ctx, "trello", "token", "tkn_def")
	require.NoError(t, err)

	err = repo.Delete(ctx, "trello")
	require.NoError(t, err)

	fields, err := repo.GetAll(ctx, "trello")
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestCredentialRepo_ValuesEncryptedAtRest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	err := repo.Set(ctx, "google", "token", "super-secret")
	require.NoError(t, err)

	var stored string
	err = db.Reader.QueryRowContext(ctx,
		`SELECT value FROM credentials WHERE provider = 'google' AND field = 'token'`,
	).Scan(&stored)
	require.NoError(t, err)
	assert.NotContains(t, stored, "super-secret")
}

func TestCredentialRepo_NoKeyReturnsSentinel(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, nil)
	ctx := context.Background()

	err := repo.Set(ctx, "trello", "token", "tkn")
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)

	_, err = repo.Get(ctx, "trello", "token")
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)

	_, err = repo.GetAll(ctx, "trello")
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
}
