// Package oracle grades candidate outputs against a problem's reference
// Marker class.
package oracle

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/itstheanurag/codejudge/internal/executor"
	"github.com/itstheanurag/codejudge/internal/harness"
	"github.com/itstheanurag/codejudge/internal/judgeerr"
	"github.com/itstheanurag/codejudge/internal/languages"
	"github.com/itstheanurag/codejudge/internal/metrics"
	"github.com/itstheanurag/codejudge/internal/protocol"
	"github.com/itstheanurag/codejudge/internal/sandbox"
	"github.com/rs/zerolog"
)

// hasIsCorrect detects a custom checker on the Marker class.
var hasIsCorrect = regexp.MustCompile(`\bisCorrect\s*\(`)

type Request struct {
	ProblemID string
	Spec      harness.Spec
	// Marker is the source of the reference class named Marker.
	Marker string
	// Outputs holds the candidate's displayed value per test case.
	Outputs []string
}

type Grader struct {
	exec   *executor.Executor
	logger *zerolog.Logger
}

func NewGrader(exec *executor.Executor, logger *zerolog.Logger) *Grader {
	return &Grader{exec: exec, logger: logger}
}

// Grade returns one verdict per test case, aligned by index. Every failure
// is a grading error.
func (g *Grader) Grade(ctx context.Context, req Request) ([]protocol.Verdict, error) {
	n := len(req.Spec.TestCases)
	if n == 0 {
		return nil, nil
	}
	if strings.TrimSpace(req.Marker) == "" {
		return nil, judgeerr.Newf(judgeerr.KindGrading, "problem %s has no reference solution", req.ProblemID)
	}

	files, err := Generate(req)
	if err != nil {
		return nil, judgeerr.Wrap(err, judgeerr.KindGrading, "failed to generate grader")
	}

	start := time.Now()
	var verdicts []protocol.Verdict
	err = g.exec.With(ctx, languages.Oracle, files, func(p *executor.Program) error {
		res, err := p.Execute(ctx)
		if err != nil {
			return err
		}
		verdicts, err = protocol.ParseVerdicts(res.Stdout, n)
		return err
	})
	metrics.PhaseDuration.WithLabelValues(languages.Oracle, "grade").Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		g.logger.Error().Err(err).Str("problem", req.ProblemID).Msg("grading failed")
		if e, ok := judgeerr.As(err); ok {
			return nil, judgeerr.Wrap(err, judgeerr.KindGrading, "reference solution failed").
				WithDetail(e.Detail).WithPhase(e.Phase)
		}
		return nil, judgeerr.Wrap(err, judgeerr.KindGrading, "reference solution failed")
	}
	return verdicts, nil
}

// Generate builds the grading program: a Main class with one static method
// per test case, plus the node classes and the Marker itself.
func Generate(req Request) ([]sandbox.File, error) {
	spec := req.Spec
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	custom := hasIsCorrect.MatchString(req.Marker)
	convert := harness.JavaConverter(spec.OutputType)
	nodeNull := harness.JavaNodeNull(spec.OutputType)

	var b strings.Builder
	b.WriteString("import java.io.*;\nimport java.util.*;\n\npublic class Main {\n")
	fmt.Fprintf(&b, "    private static final String VERDICT = %s;\n", harness.JavaLiteral(protocol.VerdictPrefix))
	fmt.Fprintf(&b, "    private static final String EXPECTED = %s;\n", harness.JavaLiteral(protocol.ExpectedPrefix))
	fmt.Fprintf(&b, "    private static final String ORACLE_ERROR = %s;\n", harness.JavaLiteral(protocol.OracleErrorPrefix))
	fmt.Fprintf(&b, "    private static final String SEPARATOR = %s;\n", harness.JavaLiteral(protocol.Separator))
	b.WriteString(harness.JavaHelpers)

	for i, tc := range spec.TestCases {
		args, err := harness.JavaArgs(spec, tc)
		if err != nil {
			return nil, fmt.Errorf("test case %d: %w", i, err)
		}
		output := protocol.NoOutput
		if i < len(req.Outputs) {
			output = req.Outputs[i]
		}
		candidate := convert + "(" + harness.JavaLiteral(output) + ")"

		fmt.Fprintf(&b, "\n    private static void case%d() {\n", i)
		b.WriteString("        String expected;\n        try {\n")
		fmt.Fprintf(&b, "            expected = display(new Marker().%s(%s), %t);\n", spec.FunctionName, args, nodeNull)
		b.WriteString("        } catch (Throwable t) {\n")
		b.WriteString("            System.out.println(ORACLE_ERROR + String.valueOf(t).replace('\\n', ' '));\n")
		b.WriteString("            return;\n        }\n")
		b.WriteString("        boolean ok;\n        try {\n")
		if custom {
			sep := ", "
			if args == "" {
				sep = ""
			}
			fmt.Fprintf(&b, "            ok = new Marker().isCorrect(%s%s%s);\n", args, sep, candidate)
		} else {
			fmt.Fprintf(&b, "            ok = expected.equals(display(%s, %t));\n", candidate, nodeNull)
		}
		b.WriteString("        } catch (Throwable t) {\n            ok = false;\n        }\n")
		b.WriteString("        System.out.println(VERDICT + ok);\n")
		b.WriteString("        System.out.println(EXPECTED + expected);\n")
		b.WriteString("    }\n")
	}

	b.WriteString(`
    public static void main(String[] args) throws Exception {
        System.setOut(new PrintStream(new FileOutputStream(FileDescriptor.out), true, "UTF-8"));
`)
	for i := range spec.TestCases {
		fmt.Fprintf(&b, "        case%d();\n        System.out.println(SEPARATOR);\n", i)
	}
	b.WriteString("    }\n}\n")

	var files []sandbox.File
	for _, f := range harness.JavaNodeFiles() {
		files = append(files, sandbox.File(f))
	}
	return append(files,
		sandbox.File{Name: "Marker.java", Content: req.Marker},
		sandbox.File{Name: "Main.java", Content: b.String()},
	), nil
}
