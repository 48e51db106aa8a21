// Package sandboxtest provides an in-memory sandbox.Engine for tests.
package sandboxtest

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/itstheanurag/codejudge/internal/sandbox"
)

// Handler decides the outcome of one container run.
type Handler func(spec sandbox.ContainerSpec) (*sandbox.Result, error)

type Engine struct {
	Handler Handler

	mu      sync.Mutex
	images  map[string]bool
	pulls   []string
	runs    []sandbox.ContainerSpec
	live    int
	removed int
}

func NewEngine(h Handler, images ...string) *Engine {
	e := &Engine{Handler: h, images: make(map[string]bool)}
	for _, img := range images {
		e.images[img] = true
	}
	return e
}

func (e *Engine) ImagePresent(_ context.Context, image string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.images[image], nil
}

func (e *Engine) EnsureImage(_ context.Context, image string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.images[image] {
		e.images[image] = true
		e.pulls = append(e.pulls, image)
	}
	return nil
}

func (e *Engine) Run(ctx context.Context, spec sandbox.ContainerSpec) (*sandbox.Result, error) {
	e.mu.Lock()
	e.live++
	e.runs = append(e.runs, spec)
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.live--
		e.removed++
		e.mu.Unlock()
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.Handler == nil {
		return &sandbox.Result{}, nil
	}
	return e.Handler(spec)
}

// Live is the number of containers currently created and not yet removed.
func (e *Engine) Live() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.live
}

func (e *Engine) Removed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removed
}

func (e *Engine) Pulls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.pulls...)
}

func (e *Engine) Runs() []sandbox.ContainerSpec {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sandbox.ContainerSpec(nil), e.runs...)
}

// ReadFile returns a file from the workspace bound to spec, or "".
func ReadFile(spec sandbox.ContainerSpec, name string) string {
	data, err := os.ReadFile(filepath.Join(spec.WorkDir, name))
	if err != nil {
		return ""
	}
	return string(data)
}

// Exists reports whether the workspace bound to spec contains name.
func Exists(spec sandbox.ContainerSpec, name string) bool {
	_, err := os.Stat(filepath.Join(spec.WorkDir, name))
	return err == nil
}

// Stdout is a Handler result with exit status zero.
func Stdout(out string) (*sandbox.Result, error) {
	return &sandbox.Result{Stdout: out}, nil
}
