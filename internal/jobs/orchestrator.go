// Package jobs runs judging asynchronously: each submission becomes a job
// driven by its own goroutine and polled by id.
package jobs

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/itstheanurag/codejudge/internal/harness"
	"github.com/itstheanurag/codejudge/internal/judge"
	"github.com/itstheanurag/codejudge/internal/judgeerr"
	"github.com/itstheanurag/codejudge/internal/metrics"
	"github.com/rs/zerolog"
)

// Judge runs one submission to completion.
type Judge interface {
	Judge(ctx context.Context, sub judge.Submission, progress func(judge.Stage)) (*judge.Report, error)
}

type Orchestrator struct {
	ctx      context.Context
	registry *Registry
	judge    Judge
	mirror   Mirror
	ttl      time.Duration
	logger   *zerolog.Logger
	wg       sync.WaitGroup
}

// NewOrchestrator ties job lifetimes to ctx. mirror may be nil.
func NewOrchestrator(ctx context.Context, registry *Registry, j Judge, mirror Mirror, logger *zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		ctx:      ctx,
		registry: registry,
		judge:    j,
		mirror:   mirror,
		ttl:      registry.ttl,
		logger:   logger,
	}
}

// Submit validates sub, starts its job and returns the job id at once.
func (o *Orchestrator) Submit(sub judge.Submission) (string, error) {
	if err := sub.Validate(); err != nil {
		return "", err
	}
	if _, err := harness.For(sub.Language); err != nil {
		return "", err
	}

	id := o.registry.Create()
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.run(id, sub)
	}()
	return id, nil
}

// Poll returns the job's state, falling back to the mirror for ids no
// longer held in memory.
func (o *Orchestrator) Poll(ctx context.Context, id string) (*Payload, error) {
	if p, ok := o.registry.Get(id); ok {
		return &p, nil
	}
	if o.mirror != nil {
		p, err := o.mirror.Load(ctx, id)
		if err != nil {
			o.logger.Warn().Err(err).Str("job_id", id).Msg("mirror lookup failed")
		} else if p != nil {
			return p, nil
		}
	}
	return nil, judgeerr.Newf(judgeerr.KindNotFound, "job %s not found", id)
}

// Wait blocks until every started job has finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) run(id string, sub judge.Submission) {
	log := o.logger.With().Str("job_id", id).Str("language", sub.Language).Logger()
	metrics.ActiveJobs.Inc()
	defer metrics.ActiveJobs.Dec()

	start := time.Now()
	log.Info().Str("problem", sub.ProblemID).Msg("job started")

	report, err := o.execute(id, sub, &log)
	payload := terminal(report, err)

	final, ferr := o.registry.Finish(id, payload)
	if ferr != nil {
		log.Error().Err(ferr).Msg("failed to finish job")
		return
	}

	label := string(final.Status)
	if final.Report != nil && final.Report.Timeout {
		label = "timeout"
	}
	metrics.JobsFinished.WithLabelValues(label).Inc()
	log.Info().Str("status", label).Dur("elapsed", time.Since(start)).Msg("job finished")

	if o.mirror != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := o.mirror.Save(ctx, id, final, o.ttl); err != nil {
			log.Warn().Err(err).Msg("failed to mirror job result")
		}
	}
}

func (o *Orchestrator) execute(id string, sub judge.Submission, log *zerolog.Logger) (report *judge.Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("job panicked")
			report, err = nil, judgeerr.Newf(judgeerr.KindInternal, "internal error: %v", r)
		}
	}()

	return o.judge.Judge(o.ctx, sub, func(stage judge.Stage) {
		if err := o.registry.Advance(id, statusOf(stage)); err != nil {
			log.Warn().Err(err).Msg("ignored status change")
		}
	})
}

func terminal(report *judge.Report, err error) Payload {
	if err == nil {
		return Payload{Status: StatusCompleted, Report: report}
	}
	p := Payload{
		Status: StatusError,
		Error:  err.Error(),
		Kind:   judgeerr.KindOf(err).String(),
	}
	if e, ok := judgeerr.As(err); ok {
		p.Detail = e.Detail
		if e.Kind == judgeerr.KindCompile || e.Kind == judgeerr.KindRuntime {
			p.Error = fmt.Sprintf("%s: %s", e.Message, firstLine(e.Detail))
		}
	}
	return p
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
