package jobs

import (
	"testing"
	"time"

	"github.com/itstheanurag/codejudge/internal/judge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanAdvance(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPreparing, true},
		{StatusPending, StatusJudging, true},
		{StatusRunning, StatusJudging, true},
		{StatusRunning, StatusError, true},
		{StatusJudging, StatusCompleted, true},
		{StatusRunning, StatusPreparing, false},
		{StatusRunning, StatusRunning, false},
		{StatusCompleted, StatusError, false},
		{StatusError, StatusCompleted, false},
		{StatusPending, Status("queued"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canAdvance(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusPreparing, statusOf(judge.StagePreparing))
	assert.Equal(t, StatusRunning, statusOf(judge.StageRunning))
	assert.Equal(t, StatusJudging, statusOf(judge.StageJudging))
	assert.Equal(t, Status(""), statusOf(judge.Stage("other")))
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry(time.Minute)
	id := r.Create()
	require.NotEmpty(t, id)
	assert.NotEqual(t, id, r.Create())

	p, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, Payload{Status: StatusPending}, p)

	require.NoError(t, r.Advance(id, StatusPreparing))
	require.NoError(t, r.Advance(id, StatusRunning))
	assert.Error(t, r.Advance(id, StatusPreparing))
	assert.Error(t, r.Advance(id, StatusCompleted))
	assert.Error(t, r.Advance("missing", StatusRunning))

	p, _ = r.Get(id)
	assert.False(t, p.Ready)
	assert.Equal(t, StatusRunning, p.Status)

	_, err := r.Finish(id, Payload{Status: StatusRunning})
	assert.Error(t, err)

	final, err := r.Finish(id, Payload{Status: StatusCompleted, Report: &judge.Report{Accepted: true}})
	require.NoError(t, err)
	assert.True(t, final.Ready)

	_, err = r.Finish(id, Payload{Status: StatusError, Error: "late"})
	assert.Error(t, err)
	assert.Error(t, r.Advance(id, StatusJudging))

	first, _ := r.Get(id)
	second, _ := r.Get(id)
	assert.Equal(t, first, second)
	assert.True(t, first.Report.Accepted)
}

func TestRegistrySweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(30 * time.Minute)
	r.now = func() time.Time { return now }

	done := r.Create()
	_, err := r.Finish(done, Payload{Status: StatusError, Error: "boom"})
	require.NoError(t, err)
	running := r.Create()
	require.NoError(t, r.Advance(running, StatusRunning))

	now = now.Add(29 * time.Minute)
	assert.Equal(t, 0, r.Sweep())

	now = now.Add(time.Minute)
	assert.Equal(t, 1, r.Sweep())

	_, ok := r.Get(done)
	assert.False(t, ok)
	_, ok = r.Get(running)
	assert.True(t, ok, "unfinished jobs are never evicted")

	now = now.Add(24 * time.Hour)
	assert.Equal(t, 0, r.Sweep())
	assert.Equal(t, 1, r.Len())
}
