package stationdb

import (
	"database/sql"
	"errors"
	"fmt"
)

// Task priorities. High-priority tasks (manually queued commands) are always
// drained before normal scheduled work.
const (
	PriorityHigh   = 1
	PriorityNormal = 2
)

// maxTaskFails is the number of failures after which a task is retired: it
// stays in the table for inspection but is no longer returned by NextTask or
// counted by PendingTasks.
const maxTaskFails = 3

// Task is one row of the queue table.
type Task struct {
	ID       int    `db:"id"`
	Priority int    `db:"priority"`
	Action   string `db:"action"`
	Options  string `db:"options"`
	Fails    int    `db:"fails"`
}

const nextTaskQuery = `
SELECT id, priority, action, options, fails
FROM queue
WHERE done = 0 AND priority = $1 AND fails < $2
ORDER BY id
LIMIT 1`

// AddTask appends a task to the queue with a zero fail count.
func (d *Database) AddTask(action string, priority int, options string) error {
	if priority != PriorityHigh && priority != PriorityNormal {
		return fmt.Errorf("invalid task priority %d (valid: %d, %d)", priority, PriorityHigh, PriorityNormal)
	}
	if action == "" {
		return errors.New("task action must not be empty")
	}
	_, err := d.db.Exec(
		"INSERT INTO queue (priority, action, options) VALUES ($1, $2, $3)",
		priority, action, options)
	if err != nil {
		return fmt.Errorf("failed to queue task %s: %w", action, err)
	}
	return nil
}

// NextTask returns the next unhandled task, or nil when the queue is drained.
// The high-priority band is checked first; unless onlyHighPriority is set,
// normal-priority tasks follow. Within a band tasks come back in insertion
// order.
func (d *Database) NextTask(onlyHighPriority bool) (*Task, error) {
	priorities := []int{PriorityHigh}
	if !onlyHighPriority {
		priorities = append(priorities, PriorityNormal)
	}

	for _, priority := range priorities {
		var task Task
		err := d.db.Get(&task, nextTaskQuery, priority, maxTaskFails)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get next task: %w", err)
		}
		return &task, nil
	}
	return nil, nil
}

// SetTaskHandled records the outcome of a task. A success marks it done; a
// failure increments its fail counter so it is retried until retired.
func (d *Database) SetTaskHandled(id int, failed bool) error {
	if id < 0 {
		return fmt.Errorf("invalid task id %d", id)
	}

	var result sql.Result
	var err error
	if failed {
		result, err = d.db.Exec("UPDATE queue SET fails = fails + 1 WHERE id = $1", id)
	} else {
		result, err = d.db.Exec("UPDATE queue SET done = 1 WHERE id = $1", id)
	}
	if err != nil {
		return fmt.Errorf("failed to mark task %d handled: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark task %d handled: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("no task with id %d", id)
	}
	return nil
}

// PendingTasks counts the tasks that NextTask can still return.
func (d *Database) PendingTasks(onlyHighPriority bool) (int, error) {
	query := "SELECT COUNT(*) FROM queue WHERE done = 0 AND fails < $1"
	args := []interface{}{maxTaskFails}
	if onlyHighPriority {
		query += " AND priority = $2"
		args = append(args, PriorityHigh)
	}

	var count int
	if err := d.db.Get(&count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count pending tasks: %w", err)
	}
	return count, nil
}
