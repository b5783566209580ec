// internal/job/job.go
package job

import (
	"context"
	"strings"
)

// Status is the lifecycle state a backend reports for a job.
type Status string

// Stable values (backends report these exact names).
const (
	StatusInitializing Status = "INITIALIZING"
	StatusQueued       Status = "QUEUED"
	StatusValidating   Status = "VALIDATING"
	StatusRunning      Status = "RUNNING"
	StatusCancelled    Status = "CANCELLED"
	StatusDone         Status = "DONE"
	StatusError        Status = "ERROR"
)

var messages = map[Status]string{
	StatusInitializing: "job is being initialized",
	StatusQueued:       "job is queued",
	StatusValidating:   "job is being validated",
	StatusRunning:      "job is actively running",
	StatusCancelled:    "job has been cancelled",
	StatusDone:         "job has successfully run",
	StatusError:        "job incurred error",
}

// Terminal reports whether the status ends the job's lifecycle.
func (s Status) Terminal() bool {
	switch s {
	case StatusDone, StatusCancelled, StatusError:
		return true
	}
	return false
}

// Message returns the human-readable form of the status. Statuses this
// package does not know about fall back to their raw name so backends can
// grow new states without breaking monitors.
func (s Status) Message() string {
	if msg, ok := messages[s]; ok {
		return msg
	}
	return string(s)
}

// ParseStatus normalizes a status name from the wire. Unknown names pass
// through uppercased and are treated as non-terminal.
func ParseStatus(name string) Status {
	return Status(strings.ToUpper(strings.TrimSpace(name)))
}

// Job is the minimal handle the monitor needs: a way to ask the backend
// where the job currently is.
type Job interface {
	Status(ctx context.Context) (Status, error)
}

// Queueable is implemented by job handles whose backend exposes the job's
// place in line. known is false when the backend cannot say.
type Queueable interface {
	Job
	QueuePosition(ctx context.Context) (pos int, known bool, err error)
}
