package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	st := NewFileStore(t.TempDir(), "default")

	require.NoError(t, st.SaveSessionID("sess-abc-123"))

	id, err := st.LoadSessionID()
	require.NoError(t, err)
	assert.Equal(t, "sess-abc-123", id)

	require.NoError(t, st.ClearSessionID())

	id, err = st.LoadSessionID()
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestFileStoreLoadMissingReturnsEmpty(t *testing.T) {
	st := NewFileStore(t.TempDir(), "default")

	id, err := st.LoadSessionID()
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestFileStoreClearMissingIsNoOp(t *testing.T) {
	st := NewFileStore(t.TempDir(), "default")
	assert.NoError(t, st.ClearSessionID())
}

func TestFileStoreOverwrite(t *testing.T) {
	st := NewFileStore(t.TempDir(), "default")

	require.NoError(t, st.SaveSessionID("first"))
	require.NoError(t, st.SaveSessionID("second"))

	id, err := st.LoadSessionID()
	require.NoError(t, err)
	assert.Equal(t, "second", id)
}

func TestFileStoreProfilesAreIsolated(t *testing.T) {
	dir := t.TempDir()
	jane := NewFileStore(dir, "Jane Doe")
	sipho := NewFileStore(dir, "Sipho M")

	require.NoError(t, jane.SaveSessionID("jane-session"))
	require.NoError(t, sipho.SaveSessionID("sipho-session"))

	id, err := jane.LoadSessionID()
	require.NoError(t, err)
	assert.Equal(t, "jane-session", id)

	// Profile names are slugified into distinct state files
	_, err = os.Stat(filepath.Join(dir, "jane-doe.session"))
	assert.NoError(t, err)
}

func TestFileStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	st := NewFileStore(dir, "default")

	require.NoError(t, st.SaveSessionID("sess-1"))

	id, err := st.LoadSessionID()
	require.NoError(t, err)
	assert.Equal(t, "sess-1", id)
}
