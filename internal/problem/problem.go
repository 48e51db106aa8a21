// Package problem loads problem metadata, official tests and reference
// solutions.
package problem

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/itstheanurag/codejudge/internal/harness"
	"github.com/itstheanurag/codejudge/internal/judgeerr"
)

// LargeTestKey marks an official test that is judged in a chunk of its own.
const LargeTestKey = "_isLargeTest"

type Problem struct {
	ID           string             `json:"id,omitempty"`
	Title        string             `json:"title,omitempty"`
	FunctionName string             `json:"functionName"`
	Params       []harness.Param    `json:"params"`
	OutputType   harness.ParamType  `json:"outputType"`
	TestCases    []harness.TestCase `json:"testCases"`
}

// Spec binds the problem's signature to a set of test cases.
func (p *Problem) Spec(cases []harness.TestCase) harness.Spec {
	return harness.Spec{
		FunctionName: p.FunctionName,
		Params:       p.Params,
		OutputType:   p.OutputType,
		TestCases:    cases,
	}
}

type Store interface {
	Get(ctx context.Context, id string) (*Problem, error)
	// OfficialTests returns nil without error when the problem has none.
	OfficialTests(ctx context.Context, id string) ([]harness.TestCase, error)
	Marker(ctx context.Context, id string) (string, error)
}

var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)

func checkID(id string) error {
	if !validID.MatchString(id) {
		return judgeerr.Newf(judgeerr.KindInvalid, "invalid problem id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return judgeerr.Newf(judgeerr.KindNotFound, "problem %q not found", id)
}

// decode keeps numbers as json.Number so large values survive unchanged.
func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func decodeProblem(id string, data []byte) (*Problem, error) {
	var p Problem
	if err := decode(data, &p); err != nil {
		return nil, judgeerr.Wrap(err, judgeerr.KindConfiguration, fmt.Sprintf("malformed metadata for problem %q", id))
	}
	p.ID = id
	return &p, nil
}

func decodeTests(id string, data []byte) ([]harness.TestCase, error) {
	var tests []harness.TestCase
	if err := decode(data, &tests); err != nil {
		return nil, judgeerr.Wrap(err, judgeerr.KindConfiguration, fmt.Sprintf("malformed official tests for problem %q", id))
	}
	return tests, nil
}

func isLarge(tc harness.TestCase) bool {
	v, _ := tc[LargeTestKey].(bool)
	return v
}

// NextChunk returns the official tests judged together starting at start,
// and the index the following chunk starts at. A large test is always
// judged alone; otherwise the chunk runs up to the next large test.
func NextChunk(tests []harness.TestCase, start int) ([]harness.TestCase, int) {
	if start < 0 {
		start = 0
	}
	if start >= len(tests) {
		return nil, len(tests)
	}
	end := start + 1
	if !isLarge(tests[start]) {
		for end < len(tests) && !isLarge(tests[end]) {
			end++
		}
	}
	return tests[start:end], end
}
