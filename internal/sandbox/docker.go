package sandbox

import (
	"bytes"
	"context"
	"io"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/itstheanurag/codejudge/internal/metrics"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

const cleanupTimeout = 30 * time.Second

type Options struct {
	MemoryBytes    int64
	PidsLimit      int64
	NanoCPUs       int64
	MaxOutputBytes int
}

// dockerClient is the part of the Docker API the engine uses.
type dockerClient interface {
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ImageInspect(ctx context.Context, imageID string, inspectOpts ...client.ImageInspectOption) (image.InspectResponse, error)
	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
	Close() error
}

type DockerEngine struct {
	cli    dockerClient
	opts   Options
	logger *zerolog.Logger
	pulls  singleflight.Group
}

func NewDockerEngine(opts Options, logger *zerolog.Logger) (*DockerEngine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}
	return newDockerEngine(cli, opts, logger), nil
}

func newDockerEngine(cli dockerClient, opts Options, logger *zerolog.Logger) *DockerEngine {
	if opts.MaxOutputBytes <= 0 {
		opts.MaxOutputBytes = 16 << 20
	}
	return &DockerEngine{cli: cli, opts: opts, logger: logger}
}

func (e *DockerEngine) Close() error {
	return e.cli.Close()
}

func (e *DockerEngine) Run(ctx context.Context, spec ContainerSpec) (res *Result, err error) {
	created := time.Now()

	// 1. Create container bound to the workspace
	resp, err := e.cli.ContainerCreate(ctx, e.containerConfig(spec), e.hostConfig(spec), nil, nil, "")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create container")
	}
	log := e.logger.With().Str("container", shortID(resp.ID)).Str("image", spec.Image).Logger()

	defer func() {
		if cerr := e.cleanup(resp.ID); cerr != nil {
			metrics.CleanupFailures.Inc()
			log.Error().Err(cerr).Msg("container cleanup failed")
			err = multierr.Append(err, cerr)
		}
		metrics.ContainerLifetime.Observe(float64(time.Since(created).Milliseconds()))
	}()

	// 2. Start
	if err := e.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return nil, errors.Wrap(err, "failed to start container")
	}
	started := time.Now()
	metrics.ContainerCreationTime.Observe(float64(started.Sub(created).Milliseconds()))

	// 3. Wait for exit; the in-container timeout normally fires first
	waitCtx, cancel := context.WithTimeout(ctx, spec.Wait)
	defer cancel()

	statusCh, errCh := e.cli.ContainerWait(waitCtx, resp.ID, container.WaitConditionNotRunning)
	var exitCode int64
	select {
	case status := <-statusCh:
		if status.Error != nil && status.Error.Message != "" {
			return nil, errors.Errorf("container wait failed: %s", status.Error.Message)
		}
		exitCode = status.StatusCode
	case werr := <-errCh:
		if ctx.Err() == nil && waitCtx.Err() != nil {
			return nil, ErrWaitTimeout
		}
		return nil, errors.Wrap(werr, "failed to wait for container")
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrWaitTimeout
	}
	duration := time.Since(started)

	// 4. Capture and demultiplex output
	stdout, stderr, err := e.logs(ctx, resp.ID)
	if err != nil {
		return nil, err
	}

	log.Debug().Int64("exit_code", exitCode).Dur("duration", duration).Msg("container exited")

	return &Result{
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: int(exitCode),
		Duration: duration,
	}, nil
}

func (e *DockerEngine) containerConfig(spec ContainerSpec) *container.Config {
	return &container.Config{
		Image:           spec.Image,
		Cmd:             spec.Cmd,
		Env:             spec.Env,
		User:            spec.User,
		WorkingDir:      MountPath,
		Tty:             false,
		NetworkDisabled: true,
		Labels:          spec.Labels,
	}
}

func (e *DockerEngine) hostConfig(spec ContainerSpec) *container.HostConfig {
	hc := &container.HostConfig{
		Binds:       []string{spec.WorkDir + ":" + MountPath + ":rw"},
		NetworkMode: "none",
		SecurityOpt: []string{"no-new-privileges"},
		CapDrop:     []string{"ALL"},
		Tmpfs: map[string]string{
			"/tmp": "rw,nosuid,size=64m,mode=1777",
		},
		Resources: container.Resources{
			NanoCPUs: e.opts.NanoCPUs,
		},
	}
	if e.opts.MemoryBytes > 0 {
		hc.Resources.Memory = e.opts.MemoryBytes
		hc.Resources.MemorySwap = e.opts.MemoryBytes // no swap
	}
	if e.opts.PidsLimit > 0 {
		pids := e.opts.PidsLimit
		hc.Resources.PidsLimit = &pids
	}
	return hc
}

func (e *DockerEngine) logs(ctx context.Context, id string) (string, string, error) {
	rc, err := e.cli.ContainerLogs(ctx, id, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", "", errors.Wrap(err, "failed to read container logs")
	}
	defer rc.Close()

	stdout := &cappedBuffer{limit: e.opts.MaxOutputBytes}
	stderr := &cappedBuffer{limit: e.opts.MaxOutputBytes}
	if _, err := stdcopy.StdCopy(stdout, stderr, rc); err != nil {
		return "", "", errors.Wrap(err, "failed to demultiplex container logs")
	}
	return stdout.String(), stderr.String(), nil
}

// cleanup stops the container if it is still running and removes it.
// It uses its own context so a cancelled job still releases the container.
func (e *DockerEngine) cleanup(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	var errs error
	info, err := e.cli.ContainerInspect(ctx, id)
	switch {
	case cerrdefs.IsNotFound(err):
		return nil
	case err != nil:
		errs = multierr.Append(errs, errors.Wrap(err, "failed to inspect container"))
	case info.ContainerJSONBase != nil && info.State != nil && info.State.Running:
		grace := 0
		if err := e.cli.ContainerStop(ctx, id, container.StopOptions{Timeout: &grace}); err != nil {
			errs = multierr.Append(errs, errors.Wrap(err, "failed to stop container"))
		}
	}

	if err := e.cli.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil && !cerrdefs.IsNotFound(err) {
		errs = multierr.Append(errs, errors.Wrap(err, "failed to remove container"))
	}
	return errs
}

func (e *DockerEngine) ImagePresent(ctx context.Context, img string) (bool, error) {
	_, err := e.cli.ImageInspect(ctx, img)
	if err == nil {
		return true, nil
	}
	if cerrdefs.IsNotFound(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "failed to inspect image %s", img)
}

// EnsureImage pulls img if it is missing. Concurrent callers for the same
// image share a single pull.
func (e *DockerEngine) EnsureImage(ctx context.Context, img string) error {
	_, err, _ := e.pulls.Do(img, func() (any, error) {
		present, err := e.ImagePresent(ctx, img)
		if err != nil || present {
			return nil, err
		}

		e.logger.Info().Str("image", img).Msg("pulling docker image")
		reader, err := e.cli.ImagePull(ctx, img, image.PullOptions{})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to pull image %s", img)
		}
		defer reader.Close()

		// the pull only completes once the progress stream is drained
		if _, err := io.Copy(io.Discard, reader); err != nil {
			return nil, errors.Wrapf(err, "failed to pull image %s", img)
		}

		metrics.ImagePulls.WithLabelValues(img).Inc()
		e.logger.Info().Str("image", img).Msg("successfully pulled docker image")
		return nil, nil
	})
	return err
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// cappedBuffer keeps the first limit bytes written and drops the rest.
type cappedBuffer struct {
	buf   bytes.Buffer
	limit int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}
