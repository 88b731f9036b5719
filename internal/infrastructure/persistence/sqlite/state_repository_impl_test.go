package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themis-iprm/themis/internal/application/port/output"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, NewMigrator(db).Migrate(context.Background()))
	return db
}

func TestMigrator_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	m := NewMigrator(db)
	require.NoError(t, m.Migrate(ctx))

	v, err := m.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, v)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestStateRepository_SaveAndLoad(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewStateRepository(db)
	ctx := context.Background()

	_, err := repo.Load(ctx, "themis-wizard-state")
	require.Error(t, err)
	assert.ErrorIs(t, err, output.ErrStateNotFound)

	first := []byte(`{"version":1,"state":{"role":"author"}}`)
	require.NoError(t, repo.Save(ctx, "themis-wizard-state", first))

	got, err := repo.Load(ctx, "themis-wizard-state")
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := []byte(`{"version":1,"state":{"role":"qa"}}`)
	require.NoError(t, repo.Save(ctx, "themis-wizard-state", second))

	got, err = repo.Load(ctx, "themis-wizard-state")
	require.NoError(t, err)
	assert.Equal(t, second, got)

	var rows, version int
	require.NoError(t, db.QueryRow("SELECT COUNT(*), MAX(version) FROM wizard_state").Scan(&rows, &version))
	assert.Equal(t, 1, rows)
	assert.Equal(t, 1, version)
}

func TestStateRepository_NamesAreIndependent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewStateRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "a", []byte(`{"version":1}`)))
	require.NoError(t, repo.Save(ctx, "b", []byte(`not json`)))

	a, err := repo.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(a))

	b, err := repo.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, `not json`, string(b))

	require.NoError(t, repo.Delete(ctx, "a"))
	_, err = repo.Load(ctx, "a")
	assert.ErrorIs(t, err, output.ErrStateNotFound)
	require.NoError(t, repo.Delete(ctx, "a"))
}

func TestOpen_CreatesAndMigratesFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "themis.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, NewStateRepository(db).Save(ctx, "wizard", []byte(`{"version":1}`)))
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	got, err := NewStateRepository(db).Load(ctx, "wizard")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(got))
}
