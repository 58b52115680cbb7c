package async

import (
	"context"
	"errors"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/legajo/docsync/internal/sync"
)

// Job is one queued sync request.
type Job struct {
	Root        string
	SubmittedAt time.Time
}

// Status describes the runner's view of the most recent sync.
type Status struct {
	Running    bool         `json:"running"`
	Root       string       `json:"root,omitempty"`
	StartedAt  *time.Time   `json:"started_at,omitempty"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	LastResult *sync.Result `json:"last_result,omitempty"`
	LastError  string       `json:"last_error,omitempty"`
}

// ErrBusy is returned when a sync is already queued or running. Sync runs
// are serialized: two concurrent walks over the same tree would race on
// version tags and document creation.
var ErrBusy = errors.New("sync already in progress")

// Runner executes sync jobs one at a time on a background goroutine.
type Runner struct {
	engine *sync.Engine
	logger *slog.Logger

	jobs chan Job
	wg   gosync.WaitGroup

	mu     gosync.Mutex
	status Status
}

func NewRunner(engine *sync.Engine, logger *slog.Logger) *Runner {
	r := &Runner{
		engine: engine,
		logger: logger.With(slog.String("component", "async")),
		jobs:   make(chan Job, 1),
	}
	return r
}

// Start launches the worker. The worker exits when ctx is canceled and
// the queue drains.
func (r *Runner) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case job := <-r.jobs:
				r.run(ctx, job)
			}
		}
	}()
}

// Enqueue submits a sync job. A job already queued or running rejects the
// new one with ErrBusy.
func (r *Runner) Enqueue(job Job) error {
	r.mu.Lock()
	if r.status.Running {
		r.mu.Unlock()
		return ErrBusy
	}
	r.mu.Unlock()

	select {
	case r.jobs <- job:
		return nil
	default:
		return ErrBusy
	}
}

func (r *Runner) run(ctx context.Context, job Job) {
	started := time.Now()
	r.mu.Lock()
	r.status = Status{Running: true, Root: job.Root, StartedAt: &started}
	r.mu.Unlock()

	result, err := r.engine.Run(ctx, job.Root)

	finished := time.Now()
	r.mu.Lock()
	r.status.Running = false
	r.status.FinishedAt = &finished
	r.status.LastResult = result
	if err != nil {
		r.status.LastError = err.Error()
	} else {
		r.status.LastError = ""
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Error("queued sync failed", slog.String("root", job.Root), slog.String("error", err.Error()))
	}
}

// Status returns a snapshot of the runner state.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Shutdown waits for the worker to stop. Cancel the context passed to
// Start first.
func (r *Runner) Shutdown() {
	r.wg.Wait()
}
