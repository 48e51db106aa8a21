package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/itstheanurag/codejudge/internal/metrics"
	"github.com/rs/zerolog"
)

type job struct {
	status     Status
	createdAt  time.Time
	finishedAt time.Time
	payload    *Payload
}

// Registry tracks every job in memory. Each job has a single writer, the
// goroutine driving it; readers get snapshots.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*job
	ttl  time.Duration
	now  func() time.Time
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		jobs: make(map[string]*job),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Create registers a pending job and returns its id.
func (r *Registry) Create() string {
	id := uuid.NewString()

	r.mu.Lock()
	r.jobs[id] = &job{status: StatusPending, createdAt: r.now()}
	size := len(r.jobs)
	r.mu.Unlock()

	metrics.RegistrySize.Set(float64(size))
	return id
}

// Advance moves a job forward. Backward moves and moves out of a terminal
// state are rejected.
func (r *Registry) Advance(id string, to Status) error {
	if to.Terminal() {
		return fmt.Errorf("use Finish to move job %s to %s", id, to)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	if !canAdvance(j.status, to) {
		return fmt.Errorf("job %s cannot move from %s to %s", id, j.status, to)
	}
	j.status = to
	return nil
}

// Finish stores the terminal payload. It can succeed once per job.
func (r *Registry) Finish(id string, p Payload) (*Payload, error) {
	if !p.Status.Terminal() {
		return nil, fmt.Errorf("status %s is not terminal", p.Status)
	}
	p.Ready = true

	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s not found", id)
	}
	if j.status.Terminal() {
		return nil, fmt.Errorf("job %s already finished", id)
	}
	j.status = p.Status
	j.finishedAt = r.now()
	j.payload = &p
	return j.payload, nil
}

// Get returns the job's current view.
func (r *Registry) Get(id string) (Payload, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return Payload{}, false
	}
	if j.payload != nil {
		return *j.payload, true
	}
	return Payload{Ready: false, Status: j.status}, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// Sweep evicts terminal jobs that finished more than the TTL ago.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	evicted := 0
	for id, j := range r.jobs {
		if j.status.Terminal() && !j.finishedAt.After(cutoff) {
			delete(r.jobs, id)
			evicted++
		}
	}
	size := len(r.jobs)
	r.mu.Unlock()

	metrics.RegistrySize.Set(float64(size))
	return evicted
}

// RunSweeper sweeps every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration, logger *zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				logger.Debug().Int("evicted", n).Int("remaining", r.Len()).Msg("swept finished jobs")
			}
		case <-ctx.Done():
			return
		}
	}
}
