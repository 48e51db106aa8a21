package executor

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/itstheanurag/codejudge/internal/judgeerr"
	"github.com/itstheanurag/codejudge/internal/languages"
	"github.com/itstheanurag/codejudge/internal/sandbox"
	"github.com/itstheanurag/codejudge/internal/sandbox/sandboxtest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(t *testing.T, h sandboxtest.Handler) (*Executor, *sandboxtest.Engine) {
	t.Helper()
	engine := sandboxtest.NewEngine(h)
	logger := zerolog.Nop()
	exec := NewExecutor(languages.NewRegistry(), engine, Options{
		WorkRoot:  t.TempDir(),
		User:      "1000:1000",
		WaitGrace: time.Second,
	}, &logger)
	return exec, engine
}

func isCompile(spec sandbox.ContainerSpec) bool {
	return strings.Contains(strings.Join(spec.Cmd, " "), "javac") ||
		strings.Contains(strings.Join(spec.Cmd, " "), "g++")
}

func assertGone(t *testing.T, dir string) {
	t.Helper()
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "workspace %s still exists", dir)
}

func TestCompiledProgramLifecycle(t *testing.T) {
	exec, engine := newTestExecutor(t, func(spec sandbox.ContainerSpec) (*sandbox.Result, error) {
		if isCompile(spec) {
			require.True(t, sandboxtest.Exists(spec, "Main.java"))
			return sandboxtest.Stdout("")
		}
		return sandboxtest.Stdout("hello\n")
	})

	var dir string
	err := exec.With(context.Background(), languages.Java, []sandbox.File{{Name: "Main.java", Content: "class Main {}"}}, func(p *Program) error {
		dir = p.Dir()
		res, err := p.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "hello\n", res.Stdout)
		return nil
	})
	require.NoError(t, err)

	runs := engine.Runs()
	require.Len(t, runs, 2)
	assert.Equal(t, []string{"timeout", "-k", "1", "10"}, runs[0].Cmd[:4])
	assert.Equal(t, []string{"timeout", "-k", "1", "3"}, runs[1].Cmd[:4])
	assert.Equal(t, "1000:1000", runs[1].User)
	assert.Equal(t, 3*time.Second+killAfter+time.Second, runs[1].Wait)
	assert.Equal(t, 0, engine.Live())
	assertGone(t, dir)
}

func TestInterpretedSkipsCompile(t *testing.T) {
	exec, engine := newTestExecutor(t, func(spec sandbox.ContainerSpec) (*sandbox.Result, error) {
		return sandboxtest.Stdout("ok")
	})

	p, err := exec.Prepare(context.Background(), languages.Python, []sandbox.File{{Name: "main.py", Content: "print('ok')"}})
	require.NoError(t, err)
	assert.Empty(t, engine.Runs())

	_, err = p.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, engine.Runs(), 1)
	assert.Contains(t, engine.Runs()[0].Env, "PYTHONDONTWRITEBYTECODE=1")

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assertGone(t, p.Dir())

	_, err = p.Execute(context.Background())
	assert.Error(t, err)
}

func TestInfiniteLoopIsTimeoutAndLeavesNothing(t *testing.T) {
	exec, engine := newTestExecutor(t, func(spec sandbox.ContainerSpec) (*sandbox.Result, error) {
		return &sandbox.Result{Stdout: "partial\n", ExitCode: sandbox.ExitTimeout, Duration: 5 * time.Second}, nil
	})

	var dir string
	err := exec.With(context.Background(), languages.Python, []sandbox.File{{Name: "main.py", Content: "while True: pass"}}, func(p *Program) error {
		dir = p.Dir()
		_, err := p.Execute(context.Background())
		return err
	})

	require.Error(t, err)
	assert.True(t, judgeerr.Is(err, judgeerr.KindTimeout))
	e, ok := judgeerr.As(err)
	require.True(t, ok)
	assert.Equal(t, PhaseRun, e.Phase)
	assert.Equal(t, "partial\n", e.Output)

	assert.Equal(t, 0, engine.Live())
	assert.Equal(t, 1, engine.Removed())
	assertGone(t, dir)
}

func TestCompileErrorReleasesWorkspace(t *testing.T) {
	var dir string
	exec, engine := newTestExecutor(t, func(spec sandbox.ContainerSpec) (*sandbox.Result, error) {
		dir = spec.WorkDir
		return &sandbox.Result{Stderr: "Main.cpp:1:1: error: expected unqualified-id", ExitCode: 1}, nil
	})

	p, err := exec.Prepare(context.Background(), languages.Cpp, []sandbox.File{{Name: "Main.cpp", Content: "oops"}})
	require.Nil(t, p)
	require.Error(t, err)

	e, ok := judgeerr.As(err)
	require.True(t, ok)
	assert.Equal(t, judgeerr.KindCompile, e.Kind)
	assert.Contains(t, e.Detail, "expected unqualified-id")
	assert.Equal(t, 0, engine.Live())
	assertGone(t, dir)
}

func TestCompileTimeout(t *testing.T) {
	exec, _ := newTestExecutor(t, func(spec sandbox.ContainerSpec) (*sandbox.Result, error) {
		return &sandbox.Result{ExitCode: sandbox.ExitTimeout}, nil
	})

	_, err := exec.Prepare(context.Background(), languages.Java, nil)
	e, ok := judgeerr.As(err)
	require.True(t, ok)
	assert.Equal(t, judgeerr.KindTimeout, e.Kind)
	assert.Equal(t, PhaseCompile, e.Phase)
}

func TestRuntimeErrorFallsBackToStdout(t *testing.T) {
	exec, _ := newTestExecutor(t, func(spec sandbox.ContainerSpec) (*sandbox.Result, error) {
		return &sandbox.Result{Stdout: "Traceback: boom", ExitCode: 1}, nil
	})

	err := exec.With(context.Background(), languages.Python, nil, func(p *Program) error {
		_, err := p.Execute(context.Background())
		return err
	})
	e, ok := judgeerr.As(err)
	require.True(t, ok)
	assert.Equal(t, judgeerr.KindRuntime, e.Kind)
	assert.Equal(t, "Traceback: boom", e.Detail)
}

func TestWaitTimeoutIsTimeout(t *testing.T) {
	exec, _ := newTestExecutor(t, func(spec sandbox.ContainerSpec) (*sandbox.Result, error) {
		return nil, sandbox.ErrWaitTimeout
	})

	err := exec.With(context.Background(), languages.Python, nil, func(p *Program) error {
		_, err := p.Execute(context.Background())
		return err
	})
	assert.True(t, judgeerr.Is(err, judgeerr.KindTimeout))
}

func TestUnsupportedLanguage(t *testing.T) {
	exec, engine := newTestExecutor(t, nil)

	_, err := exec.Prepare(context.Background(), "cobol", nil)
	assert.True(t, judgeerr.Is(err, judgeerr.KindUnsupported))
	assert.Empty(t, engine.Runs())
}

func TestImageProvisioning(t *testing.T) {
	exec, engine := newTestExecutor(t, nil)

	status, err := exec.ImageStatus(context.Background(), languages.Cpp)
	require.NoError(t, err)
	assert.False(t, status.Present)
	assert.Equal(t, "gcc:13", status.Image)

	require.NoError(t, exec.EnsureLanguageImage(context.Background(), languages.Cpp))
	require.NoError(t, exec.EnsureLanguageImage(context.Background(), languages.Cpp))
	assert.Equal(t, []string{"gcc:13", "openjdk:17-slim"}, engine.Pulls())

	status, err = exec.ImageStatus(context.Background(), languages.Cpp)
	require.NoError(t, err)
	assert.True(t, status.Present)
}

func TestWithTimeout(t *testing.T) {
	assert.Equal(t,
		[]string{"timeout", "-k", "1", "2.5", "./main"},
		withTimeout([]string{"./main"}, 2500*time.Millisecond))
}
