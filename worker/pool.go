package worker

import (
	"context"
	"errors"
	"log"
	"runtime/debug"
	"sync"
)

const poolQueueSize = 100

// Pool runs submitted jobs on a fixed set of goroutines. Panicking jobs are
// recovered and logged so one bad task handler cannot take the worker down.
type Pool struct {
	jobs   chan func()
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// ErrPoolFull is returned by Submit when the job queue is saturated.
var ErrPoolFull = errors.New("worker pool queue is full")

func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:   make(chan func(), poolQueueSize),
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			run(job)
		}
	}
}

func run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("worker recovered panic: %v\n%s", r, debug.Stack())
		}
	}()
	job()
}

// Submit enqueues a job without waiting for it to run.
func (p *Pool) Submit(job func()) error {
	if job == nil {
		return nil
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrPoolFull
	}
}

// Stop discards queued jobs and waits for the jobs in flight to finish.
func (p *Pool) Stop() {
drain:
	for {
		select {
		case <-p.jobs:
		default:
			break drain
		}
	}
	p.cancel()
	p.wg.Wait()
}

// StopWait lets every queued job run to completion before returning.
func (p *Pool) StopWait() {
	close(p.jobs)
	p.wg.Wait()
}
