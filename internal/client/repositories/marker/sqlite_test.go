package marker

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobtrackr/jobtrackr-go/internal/client/api"
	"github.com/jobtrackr/jobtrackr-go/internal/client/storage"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open(context.Background(), "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleRecord() *Record {
	return &Record{
		User: api.User{
			ID:       "u1",
			Email:    "a@b.com",
			Username: "alice",
			Role:     api.RoleUser,
		},
		SavedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSQLiteRepository_GetWhenEmpty(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	rec, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSQLiteRepository_SaveGetRoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleRecord()))

	rec, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, *sampleRecord(), *rec)
}

func TestSQLiteRepository_SaveOverwrites(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleRecord()))

	updated := sampleRecord()
	updated.User.Username = "alice-renamed"
	require.NoError(t, repo.Save(ctx, updated))

	rec, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "alice-renamed", rec.User.Username)
}

func TestSQLiteRepository_Clear(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleRecord()))
	require.NoError(t, repo.Clear(ctx))

	rec, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	// Clearing an already-empty store is fine.
	require.NoError(t, repo.Clear(ctx))
}

func TestSQLiteRepository_CorruptValueReadsAsAbsent(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO metadata (key, value) VALUES (?, ?)`, storageKey, []byte("{not json"))
	require.NoError(t, err)

	rec, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestMemoryRepository_RoundTrip(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	rec, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, repo.Save(ctx, sampleRecord()))

	rec, err = repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, *sampleRecord(), *rec)

	// The repository hands out copies, not aliases.
	rec.User.Username = "mutated"
	again, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", again.User.Username)

	require.NoError(t, repo.Clear(ctx))
	rec, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)
}
