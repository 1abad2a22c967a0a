package game

import "time"

// Timer is a pending scheduled task.
type Timer interface {
	// Stop prevents the task from running if it has not started yet.
	Stop() bool
}

// Scheduler runs f after d on the same dispatch loop that runs every other
// Registry operation. Callbacks must never run concurrently with one another.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}
