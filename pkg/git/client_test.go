package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Lock(t *testing.T) {
	dir := t.TempDir()
	client := NewClient(dir, "", nil)

	unlock, err := client.Lock()
	require.NoError(t, err)
	lockPath := filepath.Join(dir, DefaultLockName)
	assert.FileExists(t, lockPath)

	unlock()
	_, err = os.Stat(lockPath)
	assert.True(t, os.IsNotExist(err), "lock file removed after unlock")
}

func TestClient_LockTimeout(t *testing.T) {
	dir := t.TempDir()
	holder := NewClient(dir, "custom.lock", nil)
	unlock, err := holder.Lock()
	require.NoError(t, err)
	defer unlock()

	waiter := NewClient(dir, "custom.lock", nil)
	waiter.LockTimeout = 50 * time.Millisecond
	_, err = waiter.Lock()
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestClient_CommitAndLog(t *testing.T) {
	if !IsInstalled() {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	client := NewClient(dir, "", nil)

	require.NoError(t, client.Init())
	assert.True(t, client.IsRepo())

	file := "page.json"
	for i, body := range []string{`{"v":1}`, `{"v":2}`} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(body), 0644))
		require.NoError(t, client.Add(file))
		require.NoError(t, client.Commit("save "+string(rune('a'+i))))
	}

	revs, err := client.Log(file, 10)
	require.NoError(t, err)
	require.Len(t, revs, 2)
	assert.Equal(t, "save b", revs[0].Subject)
	assert.Equal(t, "save a", revs[1].Subject)

	old, err := client.Show(revs[1].Hash, file)
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(old))

	status, err := client.Status()
	require.NoError(t, err)
	assert.Empty(t, status)
}
