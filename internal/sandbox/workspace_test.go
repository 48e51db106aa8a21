package sandbox

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceLifecycle(t *testing.T) {
	root := t.TempDir()
	ws, err := NewWorkspace(filepath.Join(root, "jobs"), 0o755)
	require.NoError(t, err)

	require.NoError(t, ws.Write(File{Name: "Main.java", Content: "class Main {}"}))
	data, err := os.ReadFile(filepath.Join(ws.Dir, "Main.java"))
	require.NoError(t, err)
	assert.Equal(t, "class Main {}", string(data))

	require.NoError(t, ws.Close())
	_, err = os.Stat(ws.Dir)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, ws.Close())
}

func TestWorkspaceRejectsNestedNames(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir(), 0o755)
	require.NoError(t, err)
	defer ws.Close()

	assert.Error(t, ws.Write(File{Name: "../escape.txt"}))
	assert.Error(t, ws.Write(File{Name: ""}))
}

func TestResultTimedOut(t *testing.T) {
	assert.True(t, (&Result{ExitCode: ExitTimeout}).TimedOut(time.Second))
	assert.True(t, (&Result{ExitCode: 137, Duration: 2 * time.Second}).TimedOut(time.Second))
	assert.False(t, (&Result{ExitCode: 137, Duration: 10 * time.Millisecond}).TimedOut(time.Second))
	assert.False(t, (&Result{ExitCode: 1}).TimedOut(time.Second))
}

func TestCappedBuffer(t *testing.T) {
	b := &cappedBuffer{limit: 4}
	n, err := b.Write([]byte("abcdef"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	_, _ = b.Write([]byte("gh"))
	assert.Equal(t, "abcd", b.String())
}
