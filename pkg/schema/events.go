// pkg/schema/events.go
package schema

// JobStatusChanged is published by a backend whenever a job moves through
// its lifecycle. QueuePosition is only set while the job is queued; nil
// means the backend cannot say where the job sits in line.
type JobStatusChanged struct {
	JobID         string `json:"job_id"`
	Status        string `json:"status"`
	QueuePosition *int   `json:"queue_position,omitempty"`
	HappenedAt    int64  `json:"happened_at"`
}
