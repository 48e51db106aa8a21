package sandbox

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// fakeDocker records the order of API calls made for a single container.
type fakeDocker struct {
	mu    sync.Mutex
	calls []string

	hostConfig *container.HostConfig
	config     *container.Config

	startErr  error
	exitCode  int64
	hang      bool // never report an exit
	running   bool // state seen by inspect
	gone      bool // inspect reports not found
	stdout    string
	stderr    string
	removeErr error
	removeCtx error

	images map[string]bool
	pulls  int
}

func (f *fakeDocker) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeDocker) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeDocker) ContainerCreate(_ context.Context, config *container.Config, hostConfig *container.HostConfig, _ *network.NetworkingConfig, _ *ocispec.Platform, _ string) (container.CreateResponse, error) {
	f.record("create")
	f.config, f.hostConfig = config, hostConfig
	return container.CreateResponse{ID: "0123456789abcdef"}, nil
}

func (f *fakeDocker) ContainerStart(context.Context, string, container.StartOptions) error {
	f.record("start")
	return f.startErr
}

func (f *fakeDocker) ContainerWait(ctx context.Context, _ string, _ container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	f.record("wait")
	statusCh := make(chan container.WaitResponse, 1)
	errCh := make(chan error, 1)
	if f.hang {
		go func() {
			<-ctx.Done()
			errCh <- ctx.Err()
		}()
	} else {
		statusCh <- container.WaitResponse{StatusCode: f.exitCode}
	}
	return statusCh, errCh
}

func (f *fakeDocker) ContainerLogs(context.Context, string, container.LogsOptions) (io.ReadCloser, error) {
	f.record("logs")
	var buf bytes.Buffer
	_, _ = stdcopy.NewStdWriter(&buf, stdcopy.Stdout).Write([]byte(f.stdout))
	_, _ = stdcopy.NewStdWriter(&buf, stdcopy.Stderr).Write([]byte(f.stderr))
	return io.NopCloser(&buf), nil
}

func (f *fakeDocker) ContainerInspect(context.Context, string) (container.InspectResponse, error) {
	f.record("inspect")
	if f.gone {
		return container.InspectResponse{}, cerrdefs.ErrNotFound
	}
	return container.InspectResponse{
		ContainerJSONBase: &container.ContainerJSONBase{State: &container.State{Running: f.running}},
	}, nil
}

func (f *fakeDocker) ContainerStop(context.Context, string, container.StopOptions) error {
	f.record("stop")
	return nil
}

func (f *fakeDocker) ContainerRemove(ctx context.Context, _ string, options container.RemoveOptions) error {
	f.record("remove")
	if !options.Force {
		return errors.New("remove without force")
	}
	f.removeCtx = ctx.Err()
	return f.removeErr
}

func (f *fakeDocker) ImageInspect(_ context.Context, img string, _ ...client.ImageInspectOption) (image.InspectResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.images[img] {
		return image.InspectResponse{}, cerrdefs.ErrNotFound
	}
	return image.InspectResponse{ID: img}, nil
}

func (f *fakeDocker) ImagePull(_ context.Context, img string, _ image.PullOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pulls++
	f.images[img] = true
	return io.NopCloser(bytes.NewBufferString(`{"status":"done"}`)), nil
}

func (f *fakeDocker) Close() error { return nil }

func newTestEngine(f *fakeDocker, opts Options) *DockerEngine {
	logger := zerolog.Nop()
	if f.images == nil {
		f.images = make(map[string]bool)
	}
	return newDockerEngine(f, opts, &logger)
}

func testSpec() ContainerSpec {
	return ContainerSpec{
		Image:   "python:3.11-slim",
		Cmd:     []string{"python", "main.py"},
		User:    "1000:1000",
		WorkDir: "/tmp/ws",
		Wait:    time.Second,
	}
}

func TestDockerRunCapturesOutputAndRemoves(t *testing.T) {
	f := &fakeDocker{exitCode: 3, stdout: "out\n", stderr: "err\n"}
	e := newTestEngine(f, Options{MemoryBytes: 256 << 20, PidsLimit: 64})

	res, err := e.Run(context.Background(), testSpec())
	require.NoError(t, err)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, 3, res.ExitCode)

	assert.Equal(t, []string{"create", "start", "wait", "logs", "inspect", "remove"}, f.Calls())

	assert.Equal(t, "1000:1000", f.config.User)
	assert.Equal(t, MountPath, f.config.WorkingDir)
	assert.True(t, f.config.NetworkDisabled)
	assert.Equal(t, []string{"/tmp/ws:/app:rw"}, f.hostConfig.Binds)
	assert.Equal(t, container.NetworkMode("none"), f.hostConfig.NetworkMode)
	assert.Equal(t, []string{"ALL"}, []string(f.hostConfig.CapDrop))
	assert.Equal(t, int64(256<<20), f.hostConfig.Memory)
	assert.Equal(t, int64(256<<20), f.hostConfig.MemorySwap)
	require.NotNil(t, f.hostConfig.PidsLimit)
	assert.Equal(t, int64(64), *f.hostConfig.PidsLimit)
}

func TestDockerRunStopsBeforeRemovingOnWaitTimeout(t *testing.T) {
	f := &fakeDocker{hang: true, running: true}
	e := newTestEngine(f, Options{})

	spec := testSpec()
	spec.Wait = 20 * time.Millisecond
	_, err := e.Run(context.Background(), spec)
	assert.ErrorIs(t, err, ErrWaitTimeout)
	assert.Equal(t, []string{"create", "start", "wait", "inspect", "stop", "remove"}, f.Calls())
}

func TestDockerRunCleansUpAfterCancel(t *testing.T) {
	f := &fakeDocker{hang: true, running: true}
	e := newTestEngine(f, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := e.Run(ctx, testSpec())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"create", "start", "wait", "inspect", "stop", "remove"}, f.Calls())
	assert.NoError(t, f.removeCtx)
}

func TestDockerRunRemovesWhenStartFails(t *testing.T) {
	f := &fakeDocker{startErr: errors.New("no such image")}
	e := newTestEngine(f, Options{})

	_, err := e.Run(context.Background(), testSpec())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start container")
	assert.Equal(t, []string{"create", "start", "inspect", "remove"}, f.Calls())
}

func TestDockerRunReportsRemoveFailure(t *testing.T) {
	f := &fakeDocker{removeErr: errors.New("device busy")}
	e := newTestEngine(f, Options{})

	_, err := e.Run(context.Background(), testSpec())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to remove container")
}

func TestDockerCleanupSkipsVanishedContainer(t *testing.T) {
	f := &fakeDocker{gone: true}
	e := newTestEngine(f, Options{})

	_, err := e.Run(context.Background(), testSpec())
	require.NoError(t, err)
	assert.Equal(t, []string{"create", "start", "wait", "logs", "inspect"}, f.Calls())
}

func TestDockerRunCapsOutput(t *testing.T) {
	f := &fakeDocker{stdout: "0123456789"}
	e := newTestEngine(f, Options{MaxOutputBytes: 4})

	res, err := e.Run(context.Background(), testSpec())
	require.NoError(t, err)
	assert.Equal(t, "0123", res.Stdout)
}

func TestDockerEnsureImage(t *testing.T) {
	f := &fakeDocker{images: map[string]bool{"gcc:13": true}}
	e := newTestEngine(f, Options{})
	ctx := context.Background()

	present, err := e.ImagePresent(ctx, "openjdk:17-slim")
	require.NoError(t, err)
	assert.False(t, present)

	require.NoError(t, e.EnsureImage(ctx, "gcc:13"))
	assert.Equal(t, 0, f.pulls)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, e.EnsureImage(ctx, "openjdk:17-slim"))
		}()
	}
	wg.Wait()
	require.NoError(t, e.EnsureImage(ctx, "openjdk:17-slim"))
	assert.Equal(t, 1, f.pulls)

	present, err = e.ImagePresent(ctx, "openjdk:17-slim")
	require.NoError(t, err)
	assert.True(t, present)
}
