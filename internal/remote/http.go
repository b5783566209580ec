// internal/remote/http.go
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tendant/simple-jobmon/internal/job"
)

type statusResponse struct {
	Status        string `json:"status"`
	QueuePosition *int   `json:"queue_position"`
}

// HTTPJob reads a job's status from a backend's REST surface
// (GET <base>/jobs/<id>). It implements job.Queueable.
type HTTPJob struct {
	client *http.Client
	base   string
	id     string
	logger *slog.Logger

	mu   sync.Mutex
	last *statusResponse
}

// NewHTTPJob binds a job id to a backend base URL. A nil client gets a
// default with a 15s timeout; a nil logger falls back to slog.Default.
func NewHTTPJob(client *http.Client, baseURL, jobID string, logger *slog.Logger) *HTTPJob {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPJob{
		client: client,
		base:   strings.TrimRight(baseURL, "/"),
		id:     jobID,
		logger: logger,
	}
}

func (h *HTTPJob) Status(ctx context.Context) (job.Status, error) {
	resp, err := h.fetch(ctx)
	if err != nil {
		return "", err
	}
	return job.ParseStatus(resp.Status), nil
}

// QueuePosition serves the position reported alongside the most recent
// status fetch, so the usual status-then-position call pair costs one
// round trip. It fetches on its own only if no status was read yet.
func (h *HTTPJob) QueuePosition(ctx context.Context) (int, bool, error) {
	h.mu.Lock()
	last := h.last
	h.mu.Unlock()

	if last == nil {
		var err error
		last, err = h.fetch(ctx)
		if err != nil {
			return 0, false, err
		}
	}
	if last.QueuePosition == nil {
		return 0, false, nil
	}
	return *last.QueuePosition, true, nil
}

func (h *HTTPJob) fetch(ctx context.Context) (*statusResponse, error) {
	url := fmt.Sprintf("%s/jobs/%s", h.base, h.id)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch job status: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			h.logger.Warn("close status response body", "job_id", h.id, "err", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("backend returned %s for job %s: %s", resp.Status, h.id, strings.TrimSpace(string(body)))
	}

	var payload statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}

	h.logger.Debug("fetched job status",
		"job_id", h.id,
		"status", payload.Status,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	h.mu.Lock()
	h.last = &payload
	h.mu.Unlock()
	return &payload, nil
}
