package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/launchpad-ai/launchpad-backend/internal/logging"
)

// Client triggers a background build over HTTP on a remote dispatcher. The
// workflow treats hand-off as best effort, so Trigger reports a bare
// boolean and never propagates an error.
type Client struct {
	url    string
	client *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type triggerResponse struct {
	Success bool `json:"success"`
}

func (c *Client) Trigger(ctx context.Context, job Job) bool {
	log := logging.FromContext(ctx).WithField("user_id", job.UserID)
	if c.url == "" {
		log.Debug("dispatch url not configured, hand-off skipped")
		return false
	}

	payload, err := json.Marshal(job)
	if err != nil {
		log.WithError(err).Error("failed to marshal dispatch job")
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		log.WithError(err).Error("failed to build dispatch request")
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.WithError(err).Warn("dispatch request failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.WithField("status", resp.StatusCode).Warn("dispatcher rejected job")
		return false
	}

	var parsed triggerResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.WithError(err).Warn("unreadable dispatcher response")
		return false
	}
	return parsed.Success
}

// QueueDispatcher hands builds off by writing straight to the queue. Used
// when the workers share the deployment and no remote dispatcher exists.
type QueueDispatcher struct {
	queue Enqueuer
}

func NewQueueDispatcher(queue Enqueuer) *QueueDispatcher {
	return &QueueDispatcher{queue: queue}
}

func (d *QueueDispatcher) Trigger(ctx context.Context, job Job) bool {
	if err := d.queue.Enqueue(ctx, job); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("queue hand-off failed")
		return false
	}
	return true
}
