// cmd/statussim publishes a scripted sequence of job status events to NATS,
// for exercising the monitor without a real compute backend.
//
// Usage:
//   ./statussim -script "QUEUED:3,QUEUED:1,RUNNING,DONE"
//   ./statussim -job 8a1f... -delay 2 -script "QUEUED:?,RUNNING,ERROR"
//
// Each step is a status name, optionally followed by :<n> for a queue
// position or :? for an unknown one.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/tendant/simple-jobmon/internal/bus"
	"github.com/tendant/simple-jobmon/internal/job"
	"github.com/tendant/simple-jobmon/pkg/schema"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	jobID := flag.String("job", "", "job id to publish for (default: a fresh uuid)")
	script := flag.String("script", "QUEUED:3,QUEUED:1,RUNNING,DONE", "comma-separated status sequence")
	delay := flag.Int("delay", 1, "seconds between events")
	natsURL := flag.String("nats", getenv("NATS_URL", "nats://127.0.0.1:4222"), "NATS server URL")
	prefix := flag.String("subject-prefix", getenv("STATUS_SUBJECT_PREFIX", "jobs.status"), "status subject prefix")
	flag.Parse()

	if *jobID == "" {
		*jobID = uuid.NewString()
	}

	events, err := parseScript(*script)
	if err != nil {
		fatal(logger, "parse script", err)
	}

	nc, err := bus.Connect(*natsURL)
	if err != nil {
		fatal(logger, "connect to NATS", err, "nats_url", *natsURL)
	}
	defer nc.Close()

	subject := *prefix + "." + *jobID
	logger.Info("publishing status script", "job_id", *jobID, "subject", subject, "steps", len(events))

	for i, evt := range events {
		if i > 0 {
			time.Sleep(time.Duration(*delay) * time.Second)
		}
		evt.JobID = *jobID
		evt.HappenedAt = time.Now().Unix()
		if err := nc.PublishStatus(subject, evt); err != nil {
			fatal(logger, "publish status event", err, "status", evt.Status)
		}
		logger.Info("published", "status", evt.Status, "queue_position", positionAttr(evt.QueuePosition))
	}
}

func parseScript(script string) ([]schema.JobStatusChanged, error) {
	steps := strings.Split(script, ",")
	events := make([]schema.JobStatusChanged, 0, len(steps))

	for _, step := range steps {
		step = strings.TrimSpace(step)
		if step == "" {
			continue
		}

		name, posPart, hasPos := strings.Cut(step, ":")
		evt := schema.JobStatusChanged{Status: string(job.ParseStatus(name))}

		if hasPos && posPart != "?" {
			pos, err := strconv.Atoi(posPart)
			if err != nil || pos < 0 {
				return nil, fmt.Errorf("invalid queue position %q in step %q", posPart, step)
			}
			evt.QueuePosition = &pos
		}

		events = append(events, evt)
	}

	if len(events) == 0 {
		return nil, fmt.Errorf("script %q contains no steps", script)
	}
	return events, nil
}

func positionAttr(pos *int) string {
	if pos == nil {
		return "none"
	}
	return strconv.Itoa(*pos)
}

func fatal(logger *slog.Logger, msg string, err error, attrs ...any) {
	attrs = append(attrs, "err", err)
	logger.Error(msg, attrs...)
	os.Exit(1)
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
