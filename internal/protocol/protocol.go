// Package protocol frames per-test-case results inside program output that
// may also contain arbitrary user prints.
//
// For every test case a harness prints an empty line, one sentinel line
// carrying the displayed return value, and one separator line:
//
//	<user output>
//	:::RESULT:::[1, 2]
//	:::END:::
package protocol

import (
	"strings"
)

const (
	ResultPrefix = ":::RESULT:::"
	Separator    = ":::END:::"

	// Oracle framing.
	VerdictPrefix     = ":::VERDICT:::"
	ExpectedPrefix    = ":::EXPECTED:::"
	OracleErrorPrefix = ":::ORACLE-ERROR:::"

	// NoOutput stands in for a test case whose chunk never appeared.
	NoOutput = "No output"
)

// Chunk is the parsed output of one test case.
type Chunk struct {
	Output string
	Logs   string
}

func lines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}

// Split cuts stdout at separator lines. A blank remainder after the last
// separator is discarded; a non-blank one (a case cut short) is kept.
func Split(stdout string) []string {
	var chunks []string
	var cur []string
	for _, line := range lines(stdout) {
		if strings.TrimSpace(line) == Separator {
			chunks = append(chunks, strings.Join(cur, "\n"))
			cur = cur[:0]
			continue
		}
		cur = append(cur, line)
	}
	if rest := strings.Join(cur, "\n"); strings.TrimSpace(rest) != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}

// Completed counts the test cases that reached their separator line.
func Completed(stdout string) int {
	n := 0
	for _, line := range lines(stdout) {
		if strings.TrimSpace(line) == Separator {
			n++
		}
	}
	return n
}

// ParseChunk takes the first sentinel line as the output and every other
// non-blank line as logs. Without a sentinel the trimmed chunk is the output.
func ParseChunk(chunk string) Chunk {
	var (
		out   string
		found bool
		logs  []string
	)
	for _, line := range lines(chunk) {
		if !found && strings.HasPrefix(line, ResultPrefix) {
			out = strings.TrimSpace(strings.TrimPrefix(line, ResultPrefix))
			found = true
			continue
		}
		if strings.TrimSpace(line) != "" {
			logs = append(logs, line)
		}
	}
	if !found {
		return Chunk{Output: strings.TrimSpace(chunk)}
	}
	return Chunk{Output: out, Logs: strings.Join(logs, "\n")}
}

// Parse returns exactly n chunks aligned by test-case index.
func Parse(stdout string, n int) []Chunk {
	raw := Split(stdout)
	out := make([]Chunk, n)
	for i := range out {
		if i < len(raw) {
			out[i] = ParseChunk(raw[i])
		} else {
			out[i] = Chunk{Output: NoOutput}
		}
	}
	return out
}
