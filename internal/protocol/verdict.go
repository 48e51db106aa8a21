package protocol

import (
	"fmt"
	"strings"
)

// Verdict is the oracle's judgement of one test case.
type Verdict struct {
	IsCorrect     bool
	CorrectAnswer string
}

// MalformedError reports an oracle chunk that could not be read.
type MalformedError struct {
	Index  int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("test case %d: %s", e.Index, e.Reason)
}

// ParseVerdicts reads exactly n oracle verdicts from stdout.
func ParseVerdicts(stdout string, n int) ([]Verdict, error) {
	raw := Split(stdout)
	if len(raw) < n {
		return nil, &MalformedError{Index: len(raw), Reason: fmt.Sprintf("expected %d verdicts, got %d", n, len(raw))}
	}

	verdicts := make([]Verdict, n)
	for i := 0; i < n; i++ {
		v, err := parseVerdict(raw[i])
		if err != nil {
			return nil, &MalformedError{Index: i, Reason: err.Error()}
		}
		verdicts[i] = v
	}
	return verdicts, nil
}

func parseVerdict(chunk string) (Verdict, error) {
	var (
		v                       Verdict
		haveVerdict, haveAnswer bool
	)
	for _, line := range lines(chunk) {
		switch {
		case strings.HasPrefix(line, OracleErrorPrefix):
			return v, fmt.Errorf("reference failed: %s", strings.TrimPrefix(line, OracleErrorPrefix))
		case !haveVerdict && strings.HasPrefix(line, VerdictPrefix):
			switch strings.TrimSpace(strings.TrimPrefix(line, VerdictPrefix)) {
			case "true":
				v.IsCorrect = true
			case "false":
			default:
				return v, fmt.Errorf("malformed verdict line %q", line)
			}
			haveVerdict = true
		case !haveAnswer && strings.HasPrefix(line, ExpectedPrefix):
			v.CorrectAnswer = strings.TrimSpace(strings.TrimPrefix(line, ExpectedPrefix))
			haveAnswer = true
		}
	}
	if !haveVerdict {
		return v, fmt.Errorf("missing verdict line")
	}
	if !haveAnswer {
		return v, fmt.Errorf("missing expected value")
	}
	return v, nil
}
