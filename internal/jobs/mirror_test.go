package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/itstheanurag/codejudge/internal/harness"
	"github.com/itstheanurag/codejudge/internal/judge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMirror(t *testing.T) (*RedisMirror, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := DialRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisMirror(client), mr
}

func TestRedisMirrorRoundTrip(t *testing.T) {
	m, mr := newTestMirror(t)
	ctx := context.Background()

	in := &Payload{
		Ready:  true,
		Status: StatusCompleted,
		Report: &judge.Report{
			Accepted: true,
			Results: []judge.CaseResult{{
				TestCase:      harness.TestCase{"a": float64(2), "b": float64(3)},
				Output:        "5",
				IsCorrect:     true,
				CorrectAnswer: "5",
			}},
		},
	}
	require.NoError(t, m.Save(ctx, "job-1", in, 30*time.Minute))
	assert.True(t, mr.Exists("judge:job:job-1"))
	assert.Equal(t, 30*time.Minute, mr.TTL("judge:job:job-1"))

	out, err := m.Load(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, in, out)

	mr.FastForward(31 * time.Minute)
	out, err = m.Load(ctx, "job-1")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestRedisMirrorErrors(t *testing.T) {
	m, mr := newTestMirror(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("judge:job:bad", "{"))
	_, err := m.Load(ctx, "bad")
	assert.Error(t, err)

	mr.Close()
	_, err = m.Load(ctx, "any")
	assert.Error(t, err)
}

func TestDialRedisFails(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err := DialRedis(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
