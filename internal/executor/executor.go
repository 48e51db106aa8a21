package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/itstheanurag/codejudge/internal/judgeerr"
	"github.com/itstheanurag/codejudge/internal/languages"
	"github.com/itstheanurag/codejudge/internal/metrics"
	"github.com/itstheanurag/codejudge/internal/sandbox"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

const (
	PhaseCompile = "compile"
	PhaseRun     = "run"
)

// killAfter is how long timeout waits after SIGTERM before SIGKILL.
const killAfter = time.Second

type Options struct {
	WorkRoot string
	// WorkspaceMode is applied to every workspace directory.
	WorkspaceMode os.FileMode
	// User is the numeric uid:gid containers run as; empty means image default.
	User string
	// WaitGrace is added to each in-container limit to bound our own wait.
	WaitGrace time.Duration
}

type Executor struct {
	registry *languages.Registry
	engine   sandbox.Engine
	opts     Options
	logger   *zerolog.Logger
}

func NewExecutor(registry *languages.Registry, engine sandbox.Engine, opts Options, logger *zerolog.Logger) *Executor {
	if opts.WorkspaceMode == 0 {
		opts.WorkspaceMode = 0o755
	}
	if opts.WaitGrace <= 0 {
		opts.WaitGrace = 10 * time.Second
	}
	return &Executor{
		registry: registry,
		engine:   engine,
		opts:     opts,
		logger:   logger,
	}
}

// Prepare materializes files into a new workspace and, for compiled
// languages, builds them. On error every resource is already released;
// on success the caller owns the Program and must Close it.
func (e *Executor) Prepare(ctx context.Context, langID string, files []sandbox.File) (*Program, error) {
	lang, err := e.registry.Get(langID)
	if err != nil {
		return nil, judgeerr.Wrap(err, judgeerr.KindUnsupported, fmt.Sprintf("unsupported language %q", langID))
	}

	if err := e.engine.EnsureImage(ctx, lang.Config.Image); err != nil {
		return nil, judgeerr.Wrap(err, judgeerr.KindInternal, "failed to ensure sandbox image")
	}

	ws, err := sandbox.NewWorkspace(e.opts.WorkRoot, e.opts.WorkspaceMode)
	if err != nil {
		return nil, judgeerr.Wrap(err, judgeerr.KindInternal, "failed to create workspace")
	}

	p := &Program{
		lang:    lang,
		exec:    e,
		ws:      ws,
		variant: variantFor(lang.Kind),
	}

	if err := ws.Write(files...); err != nil {
		return nil, multierr.Append(judgeerr.Wrap(err, judgeerr.KindInternal, "failed to materialize sources"), p.Close())
	}

	if err := p.variant.prepare(ctx, p); err != nil {
		return nil, multierr.Append(err, p.Close())
	}
	return p, nil
}

// With prepares a program, hands it to fn and always releases it.
func (e *Executor) With(ctx context.Context, langID string, files []sandbox.File, fn func(*Program) error) (err error) {
	p, err := e.Prepare(ctx, langID, files)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, p.Close())
	}()
	return fn(p)
}

// run executes cmd in a throwaway container under the in-container timeout.
func (e *Executor) run(ctx context.Context, p *Program, phase string, cmd []string, limit time.Duration) (*sandbox.Result, error) {
	log := e.logger.With().Str("language", p.lang.ID).Str("phase", phase).Logger()

	spec := sandbox.ContainerSpec{
		Image:   p.lang.Config.Image,
		Cmd:     withTimeout(cmd, limit),
		Env:     p.lang.Config.Env,
		User:    e.opts.User,
		WorkDir: p.ws.Dir,
		Wait:    limit + killAfter + e.opts.WaitGrace,
		Labels: map[string]string{
			"codejudge.language": p.lang.ID,
			"codejudge.phase":    phase,
		},
	}

	start := time.Now()
	res, err := e.engine.Run(ctx, spec)
	metrics.PhaseDuration.WithLabelValues(p.lang.ID, phase).Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		if errors.Is(err, sandbox.ErrWaitTimeout) {
			metrics.ExecutionsTotal.WithLabelValues(p.lang.ID, phase+"_timeout").Inc()
			log.Warn().Dur("limit", limit).Msg("container wait exceeded its bound")
			return nil, judgeerr.Wrap(err, judgeerr.KindTimeout, phase+" timed out").WithPhase(phase)
		}
		metrics.ExecutionsTotal.WithLabelValues(p.lang.ID, phase+"_failed").Inc()
		return nil, judgeerr.Wrap(err, judgeerr.KindInternal, "sandbox execution failed").WithPhase(phase)
	}

	switch {
	case res.TimedOut(limit):
		metrics.ExecutionsTotal.WithLabelValues(p.lang.ID, phase+"_timeout").Inc()
		log.Info().Dur("limit", limit).Msg("time limit exceeded")
		return res, judgeerr.New(judgeerr.KindTimeout, phase+" timed out").
			WithPhase(phase).
			WithOutput(res.Stdout)

	case res.ExitCode != 0:
		kind, msg := judgeerr.KindRuntime, "runtime error"
		if phase == PhaseCompile {
			kind, msg = judgeerr.KindCompile, "compilation failed"
		}
		metrics.ExecutionsTotal.WithLabelValues(p.lang.ID, phase+"_error").Inc()
		log.Debug().Int("exit_code", res.ExitCode).Msg(msg)
		return res, judgeerr.New(kind, msg).
			WithPhase(phase).
			WithDetail(diagnostics(res)).
			WithOutput(res.Stdout)
	}

	metrics.ExecutionsTotal.WithLabelValues(p.lang.ID, phase+"_success").Inc()
	return res, nil
}

// ImageStatus reports whether the sandbox image for a language is present.
type ImageStatus struct {
	Language string `json:"language"`
	Image    string `json:"image"`
	Present  bool   `json:"present"`
}

func (e *Executor) ImageStatus(ctx context.Context, langID string) (*ImageStatus, error) {
	lang, err := e.registry.Get(langID)
	if err != nil {
		return nil, judgeerr.Wrap(err, judgeerr.KindUnsupported, fmt.Sprintf("unsupported language %q", langID))
	}
	present, err := e.engine.ImagePresent(ctx, lang.Config.Image)
	if err != nil {
		return nil, judgeerr.Wrap(err, judgeerr.KindInternal, "failed to inspect image")
	}
	return &ImageStatus{Language: lang.ID, Image: lang.Config.Image, Present: present}, nil
}

// EnsureLanguageImage pulls the language image and the reference image
// used for grading, if either is missing.
func (e *Executor) EnsureLanguageImage(ctx context.Context, langID string) error {
	for _, id := range []string{langID, languages.Oracle} {
		lang, err := e.registry.Get(id)
		if err != nil {
			return judgeerr.Wrap(err, judgeerr.KindUnsupported, fmt.Sprintf("unsupported language %q", id))
		}
		if err := e.engine.EnsureImage(ctx, lang.Config.Image); err != nil {
			return judgeerr.Wrap(err, judgeerr.KindInternal, "failed to pull image "+lang.Config.Image)
		}
	}
	return nil
}

func withTimeout(cmd []string, limit time.Duration) []string {
	wrapped := []string{
		"timeout",
		"-k", strconv.FormatFloat(killAfter.Seconds(), 'f', -1, 64),
		strconv.FormatFloat(limit.Seconds(), 'f', -1, 64),
	}
	return append(wrapped, cmd...)
}

// diagnostics prefers stderr and falls back to stdout.
func diagnostics(res *sandbox.Result) string {
	if res.Stderr != "" {
		return res.Stderr
	}
	return res.Stdout
}
