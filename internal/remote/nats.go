// internal/remote/nats.go
package remote

import (
	"context"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/tendant/simple-jobmon/internal/bus"
	"github.com/tendant/simple-jobmon/internal/job"
	"github.com/tendant/simple-jobmon/pkg/schema"
)

// EventJob is a job handle fed by JobStatusChanged events on a NATS
// subject. Status reads never block on the backend: before the first event
// arrives the job reports INITIALIZING with an unknown queue position.
// It implements job.Queueable.
type EventJob struct {
	id  string
	sub *nats.Subscription

	mu     sync.Mutex
	status job.Status
	pos    *int
}

// WatchNATS subscribes to <subjectPrefix>.<jobID> and returns a handle
// tracking that job's latest reported state. Close when done monitoring.
func WatchNATS(c *bus.Client, subjectPrefix, jobID string) (*EventJob, error) {
	e := &EventJob{id: jobID, status: job.StatusInitializing}
	sub, err := c.SubscribeStatus(subjectPrefix+"."+jobID, e.apply)
	if err != nil {
		return nil, err
	}
	e.sub = sub
	return e, nil
}

func (e *EventJob) apply(evt schema.JobStatusChanged) {
	if evt.JobID != "" && evt.JobID != e.id {
		return
	}
	e.mu.Lock()
	e.status = job.ParseStatus(evt.Status)
	e.pos = evt.QueuePosition
	e.mu.Unlock()
}

func (e *EventJob) Status(ctx context.Context) (job.Status, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status, nil
}

func (e *EventJob) QueuePosition(ctx context.Context) (int, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pos == nil {
		return 0, false, nil
	}
	return *e.pos, true, nil
}

func (e *EventJob) Close() error {
	if e.sub == nil {
		return nil
	}
	return e.sub.Unsubscribe()
}
