// cmd/jobmon/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/tendant/simple-jobmon/internal/bus"
	"github.com/tendant/simple-jobmon/internal/job"
	"github.com/tendant/simple-jobmon/internal/monitor"
	"github.com/tendant/simple-jobmon/internal/remote"
)

type config struct {
	Source        string
	BackendURL    string
	NATSURL       string
	SubjectPrefix string
	Interval      time.Duration
	Quiet         bool
}

func main() {
	_ = godotenv.Load()

	// Progress lines own stdout; logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	jobID := flag.String("job", "", "job id to monitor (required)")
	source := flag.String("source", "", "status source: http or nats (default from JOB_SOURCE)")
	interval := flag.Int("interval", 0, "poll interval in seconds (0 = adapt to queue position)")
	quiet := flag.Bool("quiet", false, "suppress progress output")
	newline := flag.Bool("newline", false, "print each update on its own line instead of rewriting in place")
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fatal(logger, "load config", err)
	}
	if *source != "" {
		cfg.Source = *source
	}
	if *interval > 0 {
		cfg.Interval = time.Duration(*interval) * time.Second
	}
	if *quiet {
		cfg.Quiet = true
	}

	if *jobID == "" {
		fatal(logger, "missing job id", errors.New("-job is required"))
	}
	if _, err := uuid.Parse(*jobID); err != nil {
		fatal(logger, "invalid job id", err, "job_id", *jobID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var handle job.Job
	switch cfg.Source {
	case "nats":
		nc, err := bus.Connect(cfg.NATSURL)
		if err != nil {
			fatal(logger, "connect to NATS", err, "nats_url", cfg.NATSURL)
		}
		defer nc.Close()

		watcher, err := remote.WatchNATS(nc, cfg.SubjectPrefix, *jobID)
		if err != nil {
			fatal(logger, "subscribe to status events", err, "subject_prefix", cfg.SubjectPrefix)
		}
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Warn("unsubscribe failed", "err", err)
			}
		}()
		handle = watcher
	case "http":
		handle = remote.NewHTTPJob(nil, cfg.BackendURL, *jobID, logger)
	default:
		fatal(logger, "unknown source", fmt.Errorf("source %q (want http or nats)", cfg.Source))
	}

	logger.Info("monitoring job",
		"job_id", *jobID,
		"source", cfg.Source,
		"interval", cfg.Interval,
		"quiet", cfg.Quiet,
	)

	mcfg := monitor.Config{
		Interval: cfg.Interval,
		Quiet:    cfg.Quiet,
		Output:   os.Stdout,
	}
	if *newline {
		mcfg.LineDiscipline = "\n"
	}

	if err := monitor.Watch(ctx, handle, mcfg); err != nil {
		fatal(logger, "monitor job", err, "job_id", *jobID)
	}

	final, err := handle.Status(ctx)
	if err != nil {
		fatal(logger, "read final status", err, "job_id", *jobID)
	}
	logger.Info("job finished", "job_id", *jobID, "status", string(final))
	if final != job.StatusDone {
		os.Exit(1)
	}
}

func fatal(logger *slog.Logger, msg string, err error, attrs ...any) {
	attrs = append(attrs, "err", err)
	logger.Error(msg, attrs...)
	os.Exit(1)
}

func loadConfig() (config, error) {
	cfg := config{
		Source:        getenv("JOB_SOURCE", "http"),
		BackendURL:    getenv("BACKEND_URL", "http://127.0.0.1:8080"),
		NATSURL:       getenv("NATS_URL", "nats://127.0.0.1:4222"),
		SubjectPrefix: getenv("STATUS_SUBJECT_PREFIX", "jobs.status"),
	}

	if cfg.Source != "http" && cfg.Source != "nats" {
		return config{}, fmt.Errorf("invalid JOB_SOURCE %q (want http or nats)", cfg.Source)
	}

	if v := getenv("POLL_INTERVAL_SECONDS", ""); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return config{}, fmt.Errorf("invalid POLL_INTERVAL_SECONDS: %w", err)
		}
		if secs <= 0 {
			return config{}, fmt.Errorf("POLL_INTERVAL_SECONDS must be greater than zero (got %d)", secs)
		}
		cfg.Interval = time.Duration(secs) * time.Second
	}

	cfg.Quiet = getenv("QUIET", "") == "true"

	return cfg, nil
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
