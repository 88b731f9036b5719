package fs

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock_CreatesFileAndReleases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "var", "themis.lock")

	lock, err := AcquireLock(path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	require.NoError(t, lock.Release())
	// second release is a no-op
	require.NoError(t, lock.Release())

	again, err := AcquireLock(path)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestAcquireLock_SerializesHolders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themis.lock")

	first, err := AcquireLock(path)
	require.NoError(t, err)

	acquired := make(chan *Lock)
	go func() {
		second, err := AcquireLock(path)
		if err != nil {
			close(acquired)
			return
		}
		acquired <- second
	}()

	select {
	case <-acquired:
		t.Fatal("second holder acquired the lock while the first still held it")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, first.Release())

	select {
	case second, ok := <-acquired:
		require.True(t, ok, "second AcquireLock failed")
		require.NoError(t, second.Release())
	case <-time.After(5 * time.Second):
		t.Fatal("second holder never acquired the lock")
	}
}

func TestRelease_NilLock(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Release())
}
