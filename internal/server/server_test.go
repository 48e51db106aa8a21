package server

import (
	"context"
	"os"
	"testing"

	"github.com/itstheanurag/codejudge/internal/sandbox/sandboxtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceUser(t *testing.T) {
	user, mode := workspaceUser(true, 1000, 1001)
	assert.Equal(t, "1000:1001", user)
	assert.Equal(t, os.FileMode(0o755), mode)

	user, mode = workspaceUser(true, 0, 0)
	assert.Equal(t, nobody, user)
	assert.Equal(t, os.FileMode(0o777), mode)

	user, _ = workspaceUser(true, -1, -1)
	assert.Equal(t, nobody, user)

	user, mode = workspaceUser(false, 1000, 1000)
	assert.Empty(t, user)
	assert.Equal(t, os.FileMode(0o777), mode)
}

func TestEnsureImages(t *testing.T) {
	engine := sandboxtest.NewEngine(nil, "gcc:13")
	require.NoError(t, ensureImages(context.Background(), engine, []string{"gcc:13", "openjdk:17-slim", "python:3.11-slim"}))
	assert.ElementsMatch(t, []string{"openjdk:17-slim", "python:3.11-slim"}, engine.Pulls())

	require.NoError(t, ensureImages(context.Background(), engine, []string{"openjdk:17-slim"}))
	assert.Len(t, engine.Pulls(), 2)
}
