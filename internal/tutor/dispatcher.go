package tutor

import (
	"context"
	"fmt"
	"sync"

	"github.com/abhisek/skillpath/internal/engine"
	"github.com/abhisek/skillpath/internal/llm"
	"github.com/abhisek/skillpath/internal/logging"
)

// Sink receives collaborator results. *engine.Engine implements it.
type Sink interface {
	RecordCompetencyFeedback(ctx context.Context, instanceID string, module int, feedback string) (*engine.Result, error)
	SetRemediationPlan(ctx context.Context, instanceID, plan string) (*engine.Result, error)
}

// Dispatcher runs engine follow-up requests on a bounded worker pool and
// feeds the results back through the Sink. The engine never waits for it:
// when the queue is full the request is dropped and the affected state
// stays pending until the caller asks again.
type Dispatcher struct {
	svc  *Service
	sink Sink
	cfg  Config
	log  *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	closed  bool
	pending chan engine.Request
	wg      sync.WaitGroup
}

// NewDispatcher starts cfg.Workers workers. ctx bounds every job; Close
// drains the queue before returning.
func NewDispatcher(ctx context.Context, svc *Service, sink Sink, cfg Config, log *logging.Logger) *Dispatcher {
	if log == nil {
		log = logging.Nop()
	}
	workers := max(cfg.Workers, 1)
	ctx, cancel := context.WithCancel(ctx)
	d := &Dispatcher{
		svc:     svc,
		sink:    sink,
		cfg:     cfg,
		log:     log.Named("tutor"),
		ctx:     ctx,
		cancel:  cancel,
		pending: make(chan engine.Request, max(cfg.QueueSize, 0)),
	}
	d.wg.Add(workers)
	for range workers {
		go d.processLoop()
	}
	return d
}

// Dispatch enqueues requests without blocking and returns how many were
// accepted.
func (d *Dispatcher) Dispatch(reqs ...engine.Request) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return 0
	}

	accepted := 0
	for _, r := range reqs {
		select {
		case d.pending <- r:
			accepted++
		default:
			d.log.Warn("tutor queue full, dropping request", "kind", r.Kind, "instance", r.InstanceID)
		}
	}
	return accepted
}

// Run handles one request synchronously. It is what the workers call and
// what the CLI uses when it wants to wait for the result.
func (d *Dispatcher) Run(ctx context.Context, r engine.Request) (*engine.Result, error) {
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}
	ctx = llm.WithSubject(ctx, llm.Subject{LearnerID: r.LearnerID, CourseID: r.InstanceID})

	switch r.Kind {
	case engine.RequestCompetencyFeedback:
		fb, err := d.svc.CompetencyFeedback(ctx, FeedbackInput{
			CourseTitle: r.CourseTitle,
			ModuleTitle: r.ModuleTitle,
			Objectives:  r.Objectives,
			Score:       r.Score,
			Total:       r.Total,
		})
		if err != nil {
			return nil, err
		}
		return d.sink.RecordCompetencyFeedback(ctx, r.InstanceID, r.Module, fb)

	case engine.RequestRemediationPlan:
		plan, err := d.svc.RemediationPlan(ctx, PlanInput{
			CourseTitle:  r.CourseTitle,
			History:      r.ExamHistory,
			LastFeedback: r.ExamFeedback,
		})
		if err != nil {
			return nil, err
		}
		return d.sink.SetRemediationPlan(ctx, r.InstanceID, plan)
	}
	return nil, fmt.Errorf("unknown tutor request kind %q", r.Kind)
}

func (d *Dispatcher) processLoop() {
	defer d.wg.Done()
	for r := range d.pending {
		if _, err := d.Run(d.ctx, r); err != nil {
			d.log.Warn("tutor request failed", "kind", r.Kind, "instance", r.InstanceID, "error", err)
			continue
		}
		d.log.Debug("tutor request done", "kind", r.Kind, "instance", r.InstanceID)
	}
}

// Close stops accepting requests and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.pending)
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
}
