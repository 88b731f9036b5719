package file

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themis-iprm/themis/internal/application/port/output"
)

func TestStateRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	repo := NewStateRepository(fs, "/home/.themis/var")

	_, err := repo.Load(ctx, "themis-wizard-state")
	require.Error(t, err)
	assert.True(t, errors.Is(err, output.ErrStateNotFound))

	require.NoError(t, repo.Save(ctx, "themis-wizard-state", []byte(`{"version":1}`)))
	assert.Equal(t, "/home/.themis/var/themis-wizard-state.json", repo.Path("themis-wizard-state"))

	data, err := repo.Load(ctx, "themis-wizard-state")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(data))

	require.NoError(t, repo.Save(ctx, "themis-wizard-state", []byte(`{"version":1,"state":{}}`)))
	data, err = repo.Load(ctx, "themis-wizard-state")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1,"state":{}}`, string(data))
}

func TestStateRepository_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	repo := NewStateRepository(fs, "/var")

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Save(ctx, "wizard", []byte("{}")))
	}

	entries, err := afero.ReadDir(fs, "/var")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "wizard.json", entries[0].Name())
}

func TestStateRepository_RejectsBadNames(t *testing.T) {
	ctx := context.Background()
	repo := NewStateRepository(afero.NewMemMapFs(), "/var")

	for _, name := range []string{"", "..", "a/b", `a\b`} {
		assert.Error(t, repo.Save(ctx, name, []byte("{}")), "name %q", name)
		_, err := repo.Load(ctx, name)
		assert.Error(t, err, "name %q", name)
	}
}

func TestStateRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := NewStateRepository(afero.NewMemMapFs(), "/var")

	assert.ErrorIs(t, repo.Save(ctx, "wizard", []byte("{}")), context.Canceled)
}

func TestWriteFileAtomic_ReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	err := WriteFileAtomic(fs, "/var/wizard.json", []byte("{}"))
	assert.Error(t, err)
}
