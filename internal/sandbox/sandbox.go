package sandbox

import (
	"context"
	"errors"
	"time"
)

// MountPath is where a workspace appears inside every container.
const MountPath = "/app"

// ExitTimeout is the status reserved by the in-container timeout utility.
const ExitTimeout = 124

// exitKilled is reported when timeout had to escalate to SIGKILL.
const exitKilled = 137

// ErrWaitTimeout means the engine gave up waiting for a container to exit.
var ErrWaitTimeout = errors.New("container did not exit in time")

type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// TimedOut reports whether the in-container timeout fired for a limit.
func (r *Result) TimedOut(limit time.Duration) bool {
	if r.ExitCode == ExitTimeout {
		return true
	}
	return r.ExitCode == exitKilled && limit > 0 && r.Duration >= limit
}

// ContainerSpec describes one throwaway container bound to a workspace.
type ContainerSpec struct {
	Image   string
	Cmd     []string
	Env     []string
	User    string
	WorkDir string
	// Wait bounds how long the engine blocks on the container's exit.
	Wait   time.Duration
	Labels map[string]string
}

// Engine is the container runtime as seen by the executor.
// Run must stop and remove its container on every path.
type Engine interface {
	ImagePresent(ctx context.Context, image string) (bool, error)
	EnsureImage(ctx context.Context, image string) error
	Run(ctx context.Context, spec ContainerSpec) (*Result, error)
}
