package oracle

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/itstheanurag/codejudge/internal/executor"
	"github.com/itstheanurag/codejudge/internal/harness"
	"github.com/itstheanurag/codejudge/internal/judgeerr"
	"github.com/itstheanurag/codejudge/internal/languages"
	"github.com/itstheanurag/codejudge/internal/sandbox"
	"github.com/itstheanurag/codejudge/internal/sandbox/sandboxtest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sumMarker = `class Marker {
    public int sum(int a, int b) { return a + b; }
}`

func sumRequest(outputs ...string) Request {
	return Request{
		ProblemID: "sum",
		Spec: harness.Spec{
			FunctionName: "sum",
			Params:       []harness.Param{{Name: "a", Type: harness.TypeInt}, {Name: "b", Type: harness.TypeInt}},
			OutputType:   harness.TypeInt,
			TestCases: []harness.TestCase{
				{"a": float64(2), "b": float64(3)},
				{"a": "1", "b": "4"},
			},
		},
		Marker:  sumMarker,
		Outputs: outputs,
	}
}

func newTestGrader(t *testing.T, run sandboxtest.Handler) (*Grader, *sandboxtest.Engine) {
	t.Helper()
	engine := sandboxtest.NewEngine(func(spec sandbox.ContainerSpec) (*sandbox.Result, error) {
		if strings.Contains(strings.Join(spec.Cmd, " "), "javac") {
			return sandboxtest.Stdout("")
		}
		return run(spec)
	})
	logger := zerolog.Nop()
	exec := executor.NewExecutor(languages.NewRegistry(), engine, executor.Options{
		WorkRoot:  t.TempDir(),
		WaitGrace: time.Second,
	}, &logger)
	return NewGrader(exec, &logger), engine
}

func mainSource(t *testing.T, files []sandbox.File) string {
	t.Helper()
	for _, f := range files {
		if f.Name == "Main.java" {
			return f.Content
		}
	}
	t.Fatal("no Main.java")
	return ""
}

func TestGenerateComparesDisplay(t *testing.T) {
	files, err := Generate(sumRequest("5", "No output"))
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"ListNode.java", "TreeNode.java", "Marker.java", "Main.java"}, names)

	main := mainSource(t, files)
	assert.Contains(t, main, "expected = display(new Marker().sum(2, 3), false);")
	assert.Contains(t, main, "expected = display(new Marker().sum(1, 4), false);")
	assert.Contains(t, main, `ok = expected.equals(display(to_int("5"), false));`)
	assert.Contains(t, main, `ok = expected.equals(display(to_int("No output"), false));`)
	assert.NotContains(t, main, "isCorrect")
}

func TestGenerateUsesCustomChecker(t *testing.T) {
	req := Request{
		Spec: harness.Spec{
			FunctionName: "twoSum",
			Params:       []harness.Param{{Name: "nums", Type: harness.TypeIntArray}, {Name: "target", Type: harness.TypeInt}},
			OutputType:   harness.TypeIntArray,
			TestCases:    []harness.TestCase{{"nums": "[2,7]", "target": float64(9)}},
		},
		Marker:  "class Marker { boolean isCorrect(int[] n, int t, int[] o) { return true; } }",
		Outputs: []string{"[1, 0]"},
	}
	files, err := Generate(req)
	require.NoError(t, err)
	assert.Contains(t, mainSource(t, files), `ok = new Marker().isCorrect(to_int_array("[2,7]"), 9, to_int_array("[1, 0]"));`)
}

func TestGenerateMissingOutputs(t *testing.T) {
	files, err := Generate(sumRequest())
	require.NoError(t, err)
	assert.Contains(t, mainSource(t, files), `to_int("No output")`)
}

func TestGradeSum(t *testing.T) {
	var main string
	grader, engine := newTestGrader(t, func(spec sandbox.ContainerSpec) (*sandbox.Result, error) {
		main = sandboxtest.ReadFile(spec, "Main.java")
		require.True(t, sandboxtest.Exists(spec, "Marker.java"))
		return sandboxtest.Stdout(":::VERDICT:::true\n:::EXPECTED:::5\n:::END:::\n:::VERDICT:::false\n:::EXPECTED:::5\n:::END:::\n")
	})

	verdicts, err := grader.Grade(context.Background(), sumRequest("5", "6"))
	require.NoError(t, err)
	require.Len(t, verdicts, 2)
	assert.True(t, verdicts[0].IsCorrect)
	assert.Equal(t, "5", verdicts[0].CorrectAnswer)
	assert.False(t, verdicts[1].IsCorrect)
	assert.Equal(t, "5", verdicts[1].CorrectAnswer)

	assert.Contains(t, main, `to_int("6")`)
	assert.Equal(t, 0, engine.Live())
	assert.Equal(t, []string{"openjdk:17-slim"}, engine.Pulls())
}

func TestGradeFailuresAreGradingErrors(t *testing.T) {
	tests := []struct {
		name string
		run  sandboxtest.Handler
	}{
		{"runtime error", func(sandbox.ContainerSpec) (*sandbox.Result, error) {
			return &sandbox.Result{ExitCode: 1, Stderr: "Exception in thread main"}, nil
		}},
		{"timeout", func(sandbox.ContainerSpec) (*sandbox.Result, error) {
			return &sandbox.Result{ExitCode: sandbox.ExitTimeout}, nil
		}},
		{"reference threw", func(sandbox.ContainerSpec) (*sandbox.Result, error) {
			return sandboxtest.Stdout(":::ORACLE-ERROR:::java.lang.ArithmeticException\n:::END:::\n:::VERDICT:::true\n:::EXPECTED:::5\n:::END:::\n")
		}},
		{"truncated", func(sandbox.ContainerSpec) (*sandbox.Result, error) {
			return sandboxtest.Stdout(":::VERDICT:::true\n:::EXPECTED:::5\n:::END:::\n")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grader, engine := newTestGrader(t, tt.run)
			_, err := grader.Grade(context.Background(), sumRequest("5", "5"))
			require.Error(t, err)
			assert.Equal(t, judgeerr.KindGrading, judgeerr.KindOf(err))
			assert.Equal(t, 0, engine.Live())
		})
	}
}

func TestGradeWithoutMarker(t *testing.T) {
	grader, engine := newTestGrader(t, nil)
	req := sumRequest("5", "5")
	req.Marker = " "
	_, err := grader.Grade(context.Background(), req)
	assert.Equal(t, judgeerr.KindGrading, judgeerr.KindOf(err))
	assert.Empty(t, engine.Runs())
}

func TestGradeNoCases(t *testing.T) {
	grader, engine := newTestGrader(t, nil)
	req := sumRequest()
	req.Spec.TestCases = nil
	verdicts, err := grader.Grade(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, verdicts)
	assert.Empty(t, engine.Runs())
}
