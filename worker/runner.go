package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/hypermaq/stationdb"
)

// Handler executes one task from the queue. The cycle id is unique per
// dispatch and is meant to tag everything the handler produces (logs,
// measurements) so a retry can be told apart from the original attempt.
type Handler func(ctx context.Context, cycleID string, task *stationdb.Task) error

var (
	tasksDispatched = metrics.NewCounter("station_worker_tasks_dispatched_total")
	tasksSucceeded  = metrics.NewCounter("station_worker_tasks_succeeded_total")
	tasksFailed     = metrics.NewCounter("station_worker_tasks_failed_total")
)

// Runner polls the task queue and dispatches tasks to registered handlers.
// Task outcomes are written back to the queue (so failures are retried until
// retired) and to the database log.
type Runner struct {
	db       *stationdb.Database
	pool     *Pool
	handlers map[string]Handler
	interval time.Duration
	onlyHigh bool
	inflight *xsync.MapOf[int, struct{}]
}

func NewRunner(db *stationdb.Database, interval time.Duration, workers int) *Runner {
	return &Runner{
		db:       db,
		pool:     NewPool(workers),
		handlers: make(map[string]Handler),
		interval: interval,
		inflight: xsync.NewMapOf[int, struct{}](),
	}
}

// Handle registers a handler for a task action. Not safe to call once Run has
// started.
func (r *Runner) Handle(action string, h Handler) {
	r.handlers[action] = h
}

// OnlyHighPriority restricts the runner to the high-priority band, used while
// the station is in manual mode.
func (r *Runner) OnlyHighPriority(only bool) {
	r.onlyHigh = only
}

// Run polls the queue until the context is cancelled, then stops the pool.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.dispatchNext(ctx)
		select {
		case <-ctx.Done():
			r.pool.Stop()
			return
		case <-ticker.C:
		}
	}
}

// dispatchNext hands the head of the queue to the pool. The queue head stays
// undone while its handler runs, so it is tracked as in-flight and not
// re-dispatched until the outcome is recorded.
func (r *Runner) dispatchNext(ctx context.Context) {
	task, err := r.db.NextTask(r.onlyHigh)
	if err != nil {
		log.Printf("worker: failed to poll queue: %v", err)
		return
	}
	if task == nil {
		return
	}
	if _, running := r.inflight.Load(task.ID); running {
		return
	}

	r.inflight.Store(task.ID, struct{}{})
	job := func() {
		defer r.inflight.Delete(task.ID)
		r.execute(ctx, task)
	}
	if err := r.pool.Submit(job); err != nil {
		r.inflight.Delete(task.ID)
		log.Printf("worker: could not dispatch task %d: %v", task.ID, err)
	}
}

func (r *Runner) execute(ctx context.Context, task *stationdb.Task) {
	tasksDispatched.Inc()
	cycleID := uuid.New().String()

	handler, ok := r.handlers[task.Action]
	if !ok {
		r.finish(task, fmt.Errorf("no handler registered for action %q", task.Action))
		return
	}
	r.finish(task, handler(ctx, cycleID, task))
}

// finish records the task outcome in the queue and the database log.
func (r *Runner) finish(task *stationdb.Task, taskErr error) {
	if err := r.db.SetTaskHandled(task.ID, taskErr != nil); err != nil {
		log.Printf("worker: failed to record outcome of task %d: %v", task.ID, err)
		return
	}

	if taskErr != nil {
		tasksFailed.Inc()
		message := fmt.Sprintf("task %d (%s) failed: %v", task.ID, task.Action, taskErr)
		if err := r.db.AddLog(message, "worker", stationdb.LevelWarning); err != nil {
			log.Printf("worker: failed to log task failure: %v", err)
		}
		return
	}

	tasksSucceeded.Inc()
	message := fmt.Sprintf("task %d (%s) handled", task.ID, task.Action)
	if err := r.db.AddLog(message, "worker", stationdb.LevelDebug); err != nil {
		log.Printf("worker: failed to log task outcome: %v", err)
	}
}
