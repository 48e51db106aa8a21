package executor

import (
	"context"
	"sync"

	"github.com/itstheanurag/codejudge/internal/judgeerr"
	"github.com/itstheanurag/codejudge/internal/languages"
	"github.com/itstheanurag/codejudge/internal/metrics"
	"github.com/itstheanurag/codejudge/internal/sandbox"
)

// Program is a prepared workspace for one language. It owns the
// workspace until Close.
type Program struct {
	lang    languages.Language
	exec    *Executor
	ws      *sandbox.Workspace
	variant variant

	mu     sync.Mutex
	closed bool
}

func (p *Program) Language() languages.Language {
	return p.lang
}

func (p *Program) Dir() string {
	return p.ws.Dir
}

// Execute runs the prepared program under the run timeout.
func (p *Program) Execute(ctx context.Context) (*sandbox.Result, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, judgeerr.New(judgeerr.KindInternal, "program already released")
	}
	return p.variant.execute(ctx, p)
}

// Close deletes the workspace. Safe to call more than once.
func (p *Program) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.ws.Close(); err != nil {
		metrics.CleanupFailures.Inc()
		p.exec.logger.Error().Err(err).Str("dir", p.ws.Dir).Msg("workspace cleanup failed")
		return err
	}
	return nil
}

// variant is the per-kind half of the prepare/execute contract.
type variant interface {
	prepare(ctx context.Context, p *Program) error
	execute(ctx context.Context, p *Program) (*sandbox.Result, error)
}

func variantFor(kind languages.Kind) variant {
	if kind.Compiled() {
		return compiled{}
	}
	return interpreted{}
}

// compiled builds in one container and runs the artifact in another.
type compiled struct{}

func (compiled) prepare(ctx context.Context, p *Program) error {
	cfg := p.lang.Config
	_, err := p.exec.run(ctx, p, PhaseCompile, cfg.CompileCommand, cfg.CompileTimeout)
	return err
}

func (compiled) execute(ctx context.Context, p *Program) (*sandbox.Result, error) {
	return p.exec.run(ctx, p, PhaseRun, p.lang.Config.RunCommand, p.lang.Config.RunTimeout)
}

// interpreted has nothing to build once files are written.
type interpreted struct{}

func (interpreted) prepare(context.Context, *Program) error {
	return nil
}

func (interpreted) execute(ctx context.Context, p *Program) (*sandbox.Result, error) {
	return p.exec.run(ctx, p, PhaseRun, p.lang.Config.RunCommand, p.lang.Config.RunTimeout)
}
