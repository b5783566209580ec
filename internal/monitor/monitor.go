// internal/monitor/monitor.go
package monitor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/tendant/simple-jobmon/internal/job"
)

const (
	// defaultInterval is the starting poll interval when the caller does
	// not fix one. It shrinks toward minInterval as the job nears the
	// front of the queue.
	defaultInterval = 5 * time.Second
	minInterval     = 2 * time.Second

	statusLabel = "Job Status"
)

// Config controls one monitoring session.
type Config struct {
	// Interval between status queries. Zero lets the monitor adapt the
	// interval to the job's queue position.
	Interval time.Duration

	// Quiet suppresses all writes to Output.
	Quiet bool

	// Output receives the progress line. Defaults to os.Stdout.
	Output io.Writer

	// LineDiscipline is emitted at the start of each progress line so the
	// previous one is overwritten in place. Defaults to "\r".
	LineDiscipline string
}

// Watch blocks until j reports a terminal status, rewriting a single
// progress line on cfg.Output as the status changes. Errors from the job
// handle or the output sink end the session and are returned wrapped;
// cancelling ctx aborts the session with ctx.Err().
func Watch(ctx context.Context, j job.Job, cfg Config) error {
	return watch(ctx, j, cfg, sleep)
}

func watch(ctx context.Context, j job.Job, cfg Config, wait func(context.Context, time.Duration) error) error {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	line := cfg.LineDiscipline
	if line == "" {
		line = "\r"
	}

	interval := cfg.Interval
	fixed := interval > 0
	if !fixed {
		interval = defaultInterval
	}

	status, err := j.Status(ctx)
	if err != nil {
		return fmt.Errorf("query status: %w", err)
	}
	msg := status.Message()
	prev := msg
	msgLen := len(msg)

	if !cfg.Quiet {
		if _, err := fmt.Fprintf(out, "%s%s: %s", line, statusLabel, msg); err != nil {
			return fmt.Errorf("write status line: %w", err)
		}
	}

	for !status.Terminal() {
		if err := wait(ctx, interval); err != nil {
			return err
		}

		status, err = j.Status(ctx)
		if err != nil {
			return fmt.Errorf("query status: %w", err)
		}
		msg = status.Message()

		if q, ok := j.(job.Queueable); ok && status == job.StatusQueued {
			pos, known, err := q.QueuePosition(ctx)
			if err != nil {
				return fmt.Errorf("query queue position: %w", err)
			}
			if !known {
				// Backend lost track of the position; poll fast
				// until it reappears, even on a fixed interval.
				msg += " (unknown)"
				interval = minInterval
			} else {
				msg += fmt.Sprintf(" (%d)", pos)
				if !fixed {
					interval = maxDuration(time.Duration(pos)*time.Second, minInterval)
				}
			}
		} else if !fixed {
			interval = minInterval
		}

		// Pad so a shorter message fully overwrites the longer one it
		// replaces on the same line.
		if len(msg) < msgLen {
			msg += strings.Repeat(" ", msgLen-len(msg))
		} else {
			msgLen = len(msg)
		}

		if msg != prev && !cfg.Quiet {
			if _, err := fmt.Fprintf(out, "%s%s: %s", line, statusLabel, msg); err != nil {
				return fmt.Errorf("write status line: %w", err)
			}
			prev = msg
		}
	}

	if !cfg.Quiet {
		if _, err := fmt.Fprintln(out); err != nil {
			return fmt.Errorf("write final newline: %w", err)
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
