// Package judge wires the pipeline: problem lookup, test case preprocessing,
// harness generation, sandboxed execution, output parsing and grading.
package judge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/itstheanurag/codejudge/internal/executor"
	"github.com/itstheanurag/codejudge/internal/harness"
	"github.com/itstheanurag/codejudge/internal/judgeerr"
	"github.com/itstheanurag/codejudge/internal/metrics"
	"github.com/itstheanurag/codejudge/internal/oracle"
	"github.com/itstheanurag/codejudge/internal/preprocess"
	"github.com/itstheanurag/codejudge/internal/problem"
	"github.com/itstheanurag/codejudge/internal/protocol"
	"github.com/itstheanurag/codejudge/internal/sandbox"
	"github.com/rs/zerolog"
)

type Mode string

const (
	// ModeRun judges the test cases supplied with the submission.
	ModeRun Mode = "run"
	// ModeSubmit judges the next chunk of official tests.
	ModeSubmit Mode = "submit"
)

// Stage is reported through the progress callback as the pipeline advances.
type Stage string

const (
	StagePreparing Stage = "preparing"
	StageRunning   Stage = "running"
	StageJudging   Stage = "judging"
)

type Submission struct {
	ProblemID     string             `json:"problemId"`
	Language      string             `json:"language"`
	Code          string             `json:"code"`
	TestCases     []harness.TestCase `json:"testCases,omitempty"`
	Mode          Mode               `json:"mode,omitempty"`
	StartTestCase int                `json:"startTestCase,omitempty"`
}

func (s Submission) Validate() error {
	if s.ProblemID == "" {
		return judgeerr.New(judgeerr.KindInvalid, "problemId is required")
	}
	if s.Language == "" {
		return judgeerr.New(judgeerr.KindInvalid, "language is required")
	}
	if s.Code == "" {
		return judgeerr.New(judgeerr.KindInvalid, "code is required")
	}
	switch s.Mode {
	case "", ModeRun, ModeSubmit:
	default:
		return judgeerr.Newf(judgeerr.KindInvalid, "unknown mode %q", s.Mode)
	}
	if s.StartTestCase < 0 {
		return judgeerr.New(judgeerr.KindInvalid, "startTestCase must not be negative")
	}
	return nil
}

// CaseResult is one test case echoed back with its outcome.
type CaseResult struct {
	TestCase      harness.TestCase
	Output        string
	Logs          string
	IsCorrect     bool
	CorrectAnswer string
}

// MarshalJSON flattens the test case fields next to the outcome fields.
func (r CaseResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.TestCase)+5)
	for k, v := range r.TestCase {
		out[k] = v
	}
	out["output"] = r.Output
	out["logs"] = r.Logs
	out["isCorrect"] = r.IsCorrect
	out["correctAnswer"] = r.CorrectAnswer
	out["error"] = nil
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *CaseResult) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	r.Output, _ = fields["output"].(string)
	r.Logs, _ = fields["logs"].(string)
	r.IsCorrect, _ = fields["isCorrect"].(bool)
	r.CorrectAnswer, _ = fields["correctAnswer"].(string)
	for _, k := range []string{"output", "logs", "isCorrect", "correctAnswer", "error"} {
		delete(fields, k)
	}
	r.TestCase = fields
	return nil
}

type Report struct {
	Results  []CaseResult `json:"results,omitempty"`
	Accepted bool         `json:"accepted"`

	// Submit mode only.
	TotalTestCases int  `json:"totalTestCases,omitempty"`
	NextTestCase   int  `json:"nextTestCase,omitempty"`
	AllAccepted    bool `json:"allAccepted,omitempty"`

	Timeout         bool             `json:"timeout,omitempty"`
	TimeoutTestCase harness.TestCase `json:"timeoutTestCase,omitempty"`
}

// Grader grades candidate outputs against a reference.
type Grader interface {
	Grade(ctx context.Context, req oracle.Request) ([]protocol.Verdict, error)
}

type Service struct {
	store     problem.Store
	exec      *executor.Executor
	grader    Grader
	evaluator *preprocess.Evaluator
	logger    *zerolog.Logger
}

// NewService builds the pipeline. A nil evaluator leaves expression fields
// untouched.
func NewService(store problem.Store, exec *executor.Executor, grader Grader, evaluator *preprocess.Evaluator, logger *zerolog.Logger) *Service {
	return &Service{
		store:     store,
		exec:      exec,
		grader:    grader,
		evaluator: evaluator,
		logger:    logger,
	}
}

// Judge runs sub to completion. A timeout is not an error: it yields a
// report with Timeout set. progress may be nil.
func (s *Service) Judge(ctx context.Context, sub Submission, progress func(Stage)) (*Report, error) {
	if progress == nil {
		progress = func(Stage) {}
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	adapter, err := harness.For(sub.Language)
	if err != nil {
		return nil, err
	}

	prob, err := s.store.Get(ctx, sub.ProblemID)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	cases := sub.TestCases
	if sub.Mode == ModeSubmit {
		official, err := s.store.OfficialTests(ctx, sub.ProblemID)
		if err != nil {
			return nil, err
		}
		if official == nil {
			official = prob.TestCases
		}
		report.TotalTestCases = len(official)
		if sub.StartTestCase >= len(official) {
			report.AllAccepted = true
			report.Accepted = true
			report.NextTestCase = len(official)
			return report, nil
		}
		cases, report.NextTestCase = problem.NextChunk(official, sub.StartTestCase)
		cases = s.expand(ctx, cases)
	} else if len(cases) == 0 {
		cases = s.expand(ctx, prob.TestCases)
	}

	log := s.logger.With().
		Str("problem", sub.ProblemID).
		Str("language", sub.Language).
		Str("mode", string(sub.Mode)).
		Int("cases", len(cases)).
		Logger()
	start := time.Now()
	defer func() {
		metrics.PhaseDuration.WithLabelValues(sub.Language, "total").Observe(float64(time.Since(start).Milliseconds()))
	}()

	spec := prob.Spec(cases)
	generated, err := adapter.Generate(spec, sub.Code)
	if err != nil {
		return nil, err
	}
	files := make([]sandbox.File, len(generated))
	for i, f := range generated {
		files[i] = sandbox.File(f)
	}

	progress(StagePreparing)
	var stdout string
	err = s.exec.With(ctx, sub.Language, files, func(p *executor.Program) error {
		progress(StageRunning)
		res, err := p.Execute(ctx)
		if err != nil {
			return err
		}
		stdout = res.Stdout
		return nil
	})
	if judgeerr.Is(err, judgeerr.KindTimeout) {
		e, _ := judgeerr.As(err)
		report.Timeout = true
		if e.Phase == executor.PhaseRun {
			if i := protocol.Completed(e.Output); i < len(cases) {
				report.TimeoutTestCase = cases[i]
			}
		}
		log.Info().Str("phase", e.Phase).Msg("submission timed out")
		return report, nil
	}
	if err != nil {
		log.Info().Err(err).Msg("submission failed")
		return nil, err
	}

	progress(StageJudging)
	chunks := protocol.Parse(stdout, len(cases))
	outputs := make([]string, len(chunks))
	for i, c := range chunks {
		outputs[i] = c.Output
	}

	marker, err := s.store.Marker(ctx, sub.ProblemID)
	if err != nil {
		return nil, judgeerr.Wrap(err, judgeerr.KindGrading, "failed to load reference solution")
	}
	verdicts, err := s.grader.Grade(ctx, oracle.Request{
		ProblemID: sub.ProblemID,
		Spec:      spec,
		Marker:    marker,
		Outputs:   outputs,
	})
	if err != nil {
		return nil, err
	}
	if len(verdicts) != len(cases) {
		return nil, judgeerr.Newf(judgeerr.KindGrading, "expected %d verdicts, got %d", len(cases), len(verdicts))
	}

	report.Results = make([]CaseResult, len(cases))
	report.Accepted = true
	for i, tc := range cases {
		report.Results[i] = CaseResult{
			TestCase:      tc,
			Output:        chunks[i].Output,
			Logs:          chunks[i].Logs,
			IsCorrect:     verdicts[i].IsCorrect,
			CorrectAnswer: verdicts[i].CorrectAnswer,
		}
		report.Accepted = report.Accepted && verdicts[i].IsCorrect
	}
	log.Info().Bool("accepted", report.Accepted).Dur("elapsed", time.Since(start)).Msg("submission judged")
	return report, nil
}

// expand evaluates author expressions. Submitted test cases never pass
// through it.
func (s *Service) expand(ctx context.Context, cases []harness.TestCase) []harness.TestCase {
	if s.evaluator == nil {
		return cases
	}
	out := make([]harness.TestCase, len(cases))
	for i, tc := range cases {
		out[i] = s.evaluator.Expand(ctx, tc)
	}
	return out
}
