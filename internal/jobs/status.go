package jobs

import (
	"github.com/itstheanurag/codejudge/internal/judge"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusRunning   Status = "running"
	StatusJudging   Status = "judging"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

var rank = map[Status]int{
	StatusPending:   0,
	StatusPreparing: 1,
	StatusRunning:   2,
	StatusJudging:   3,
	StatusCompleted: 4,
	StatusError:     4,
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

func (s Status) valid() bool {
	_, ok := rank[s]
	return ok
}

// canAdvance reports whether a job in from may move to to.
func canAdvance(from, to Status) bool {
	if from.Terminal() || !to.valid() {
		return false
	}
	return rank[to] > rank[from]
}

func statusOf(stage judge.Stage) Status {
	switch stage {
	case judge.StagePreparing:
		return StatusPreparing
	case judge.StageRunning:
		return StatusRunning
	case judge.StageJudging:
		return StatusJudging
	}
	return ""
}

// Payload is what a poll returns. Terminal payloads never change.
type Payload struct {
	Ready  bool   `json:"ready"`
	Status Status `json:"status"`

	*judge.Report

	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Detail string `json:"detail,omitempty"`
}
