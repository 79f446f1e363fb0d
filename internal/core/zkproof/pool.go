package zkproof

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/privlend/v1/pkg/interfaces/infrastructure/log"
)

// ErrQueueFull is returned by Submit when the job queue is at capacity.
var ErrQueueFull = errors.New("proof job queue full")

// JobStatus tracks an async proof job through its lifecycle.
type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job is a snapshot of an async proof job. Result is set once Status is done,
// Error once it is failed.
type Job struct {
	ID          string       `json:"id"`
	Kind        CircuitKind  `json:"kind"`
	Status      JobStatus    `json:"status"`
	SubmittedAt time.Time    `json:"submitted_at"`
	FinishedAt  time.Time    `json:"finished_at,omitempty"`
	Result      *ProofResult `json:"result,omitempty"`
	Error       string       `json:"error,omitempty"`
}

type job struct {
	Job
	payload any
}

// PoolOptions configures the async proof pool.
type PoolOptions struct {
	// Workers is the number of concurrent proving goroutines. Proving is CPU
	// bound, so this should stay at or below GOMAXPROCS.
	Workers int
	// QueueSize bounds the number of pending jobs before Submit rejects.
	QueueSize int
	// JobTimeout bounds a single proof generation. Zero means no timeout.
	JobTimeout time.Duration
	// Retention is how long finished jobs remain queryable.
	Retention time.Duration
	// OnComplete, if set, receives a snapshot of every job that reaches a
	// terminal status. Called from the worker goroutine; keep it cheap.
	OnComplete func(Job)
}

// Pool runs proof generation asynchronously: Submit returns a job ID
// immediately and workers drain the queue, so a slow multi-second proof never
// blocks the request path.
type Pool struct {
	prover *Prover
	logger log.Logger
	opts   PoolOptions

	queue  chan *job
	stopCh chan struct{}
	wg     sync.WaitGroup

	mu   sync.RWMutex
	jobs map[string]*job

	processed atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64

	started bool
	startMu sync.Mutex
}

// NewPool builds a pool over the given prover. Zero options get sensible
// defaults (2 workers, queue of 64, 5 minute retention).
func NewPool(prover *Prover, logger log.Logger, opts PoolOptions) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Retention <= 0 {
		opts.Retention = 5 * time.Minute
	}
	return &Pool{
		prover: prover,
		logger: logger,
		opts:   opts,
		queue:  make(chan *job, opts.QueueSize),
		stopCh: make(chan struct{}),
		jobs:   make(map[string]*job),
	}
}

// Start launches the workers and the retention sweeper. Idempotent.
func (p *Pool) Start() {
	p.startMu.Lock()
	defer p.startMu.Unlock()
	if p.started {
		return
	}
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.wg.Add(1)
	go p.sweeper()
	p.started = true
	p.logger.Infof("proof pool started: workers=%d queue=%d", p.opts.Workers, p.opts.QueueSize)
}

// Stop drains nothing: queued jobs are abandoned, running jobs finish.
func (p *Pool) Stop() {
	p.startMu.Lock()
	defer p.startMu.Unlock()
	if !p.started {
		return
	}
	close(p.stopCh)
	p.wg.Wait()
	p.started = false
	p.logger.Infof("proof pool stopped")
}

// Submit enqueues a proof job. The payload must be the request type matching
// kind (CollateralProofRequest, LTVProofRequest or LiquidationProofRequest);
// a mismatch surfaces as a failed job, not a panic.
func (p *Pool) Submit(kind CircuitKind, payload any) (string, error) {
	j := &job{
		Job: Job{
			ID:          uuid.NewString(),
			Kind:        kind,
			Status:      JobQueued,
			SubmittedAt: time.Now().UTC(),
		},
		payload: payload,
	}
	p.mu.Lock()
	p.jobs[j.ID] = j
	p.mu.Unlock()

	select {
	case p.queue <- j:
		return j.ID, nil
	default:
		p.mu.Lock()
		delete(p.jobs, j.ID)
		p.mu.Unlock()
		return "", ErrQueueFull
	}
}

// Lookup returns a snapshot of the job with the given ID.
func (p *Pool) Lookup(id string) (Job, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	j, ok := p.jobs[id]
	if !ok {
		return Job{}, false
	}
	return j.Job, true
}

// Stats reports lifetime counters and the current queue depth.
func (p *Pool) Stats() map[string]any {
	return map[string]any{
		"workers":   p.opts.Workers,
		"queued":    len(p.queue),
		"processed": p.processed.Load(),
		"succeeded": p.succeeded.Load(),
		"failed":    p.failed.Load(),
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			return
		case j := <-p.queue:
			p.process(id, j)
		}
	}
}

func (p *Pool) process(workerID int, j *job) {
	p.setStatus(j, JobRunning)

	ctx := context.Background()
	if p.opts.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.JobTimeout)
		defer cancel()
	}

	result, err := p.run(ctx, j)
	p.processed.Add(1)

	p.mu.Lock()
	j.FinishedAt = time.Now().UTC()
	if err != nil {
		j.Status = JobFailed
		j.Error = err.Error()
	} else {
		j.Status = JobDone
		j.Result = result
	}
	snapshot := j.Job
	p.mu.Unlock()

	if p.opts.OnComplete != nil {
		p.opts.OnComplete(snapshot)
	}

	if err != nil {
		p.failed.Add(1)
		p.logger.Warnf("proof job failed: worker=%d job=%s kind=%s err=%v", workerID, j.ID, j.Kind, err)
		return
	}
	p.succeeded.Add(1)
	p.logger.Debugf("proof job done: worker=%d job=%s kind=%s", workerID, j.ID, j.Kind)
}

func (p *Pool) run(ctx context.Context, j *job) (*ProofResult, error) {
	switch req := j.payload.(type) {
	case CollateralProofRequest:
		return p.prover.GenerateCollateralProof(ctx, req)
	case LTVProofRequest:
		return p.prover.GenerateLTVProof(ctx, req)
	case LiquidationProofRequest:
		return p.prover.GenerateLiquidationProof(ctx, req)
	default:
		return nil, WrapInputError("payload", fmt.Errorf("type %T does not match circuit %q", j.payload, j.Kind))
	}
}

func (p *Pool) setStatus(j *job, s JobStatus) {
	p.mu.Lock()
	j.Status = s
	p.mu.Unlock()
}

// sweeper evicts finished jobs past the retention window so the job map does
// not grow without bound.
func (p *Pool) sweeper() {
	defer p.wg.Done()
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-p.opts.Retention)
			p.mu.Lock()
			for id, j := range p.jobs {
				if (j.Status == JobDone || j.Status == JobFailed) && j.FinishedAt.Before(cutoff) {
					delete(p.jobs, id)
				}
			}
			p.mu.Unlock()
		}
	}
}
