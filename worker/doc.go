package worker

// Package worker drains the station task queue: a Runner polls for the next
// pending task, hands it to a bounded goroutine pool and writes the outcome
// back, so failed tasks are retried until the queue retires them.
