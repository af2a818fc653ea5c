package services

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	model "redmine-planner.com/redmine-planner/pkg/models"
)

var (
	ErrAlreadyInFlight = errors.New("a submission for this task is already in flight")
	ErrPoolClosed      = errors.New("worker pool is shut down")
)

// Submission is one time entry to create in Redmine on behalf of a task.
type Submission struct {
	TaskID   string
	TaskName string
	Entry    model.TimeEntryRequest
}

type SubmissionResult struct {
	Submission
	TimeEntryID int
	Err         error
}

type job struct {
	ctx     context.Context
	gateway Gateway
	index   int
	sub     Submission
	results chan<- indexedResult
}

type indexedResult struct {
	index  int
	result SubmissionResult
}

// PoolService bounds the number of concurrent time entry submissions.
type PoolService struct {
	queue    chan job
	wg       sync.WaitGroup
	enqueued sync.Map

	mu     sync.RWMutex
	closed bool
}

func NewPoolService(workers, queueSize int) *PoolService {
	p := &PoolService{
		queue: make(chan job, queueSize),
	}

	for i := 1; i <= workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return p
}

// Submit runs every submission on the pool and returns the results in input order.
// A task that already has a submission in flight is rejected with ErrAlreadyInFlight.
// Once queued, a submission is always waited for, so an entry Redmine created
// is reported even if ctx is done by then.
func (p *PoolService) Submit(ctx context.Context, gateway Gateway, subs []Submission) []SubmissionResult {
	results := make([]SubmissionResult, len(subs))
	collected := make(chan indexedResult, len(subs))

	pending := 0
	for i, sub := range subs {
		if err := p.enqueue(ctx, job{ctx: ctx, gateway: gateway, index: i, sub: sub, results: collected}); err != nil {
			results[i] = SubmissionResult{Submission: sub, Err: err}
			continue
		}
		pending++
	}

	for ; pending > 0; pending-- {
		r := <-collected
		results[r.index] = r.result
	}
	return results
}

func (p *PoolService) enqueue(ctx context.Context, j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}
	if !p.trackEnqueued(j.sub.TaskID) {
		return ErrAlreadyInFlight
	}

	select {
	case p.queue <- j:
		return nil
	case <-ctx.Done():
		p.untrackEnqueued(j.sub.TaskID)
		return ctx.Err()
	}
}

func (p *PoolService) worker(workerID int) {
	defer p.wg.Done()

	log.Debugf("worker %d started", workerID)

	for j := range p.queue {
		p.handle(workerID, j)
	}

	log.Debugf("worker %d stopped", workerID)
}

func (p *PoolService) handle(workerID int, j job) {
	defer p.untrackEnqueued(j.sub.TaskID)

	result := SubmissionResult{Submission: j.sub}
	if err := j.ctx.Err(); err != nil {
		result.Err = err
	} else {
		result.TimeEntryID, result.Err = j.gateway.CreateTimeEntry(j.ctx, j.sub.Entry)
	}

	fields := log.Fields{"worker": workerID, "task_id": j.sub.TaskID}
	if result.Err != nil {
		log.WithFields(fields).WithError(result.Err).Warn("time entry submission failed")
	} else {
		log.WithFields(fields).WithField("time_entry_id", result.TimeEntryID).Info("time entry submitted")
	}

	j.results <- indexedResult{index: j.index, result: result}
}

func (p *PoolService) trackEnqueued(taskID string) bool {
	_, loaded := p.enqueued.LoadOrStore(taskID, struct{}{})
	return !loaded
}

func (p *PoolService) untrackEnqueued(taskID string) {
	p.enqueued.Delete(taskID)
}

func (p *PoolService) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("worker pool shut down cleanly")
	case <-ctx.Done():
		log.Warn("worker pool shutdown timed out")
	}
}
