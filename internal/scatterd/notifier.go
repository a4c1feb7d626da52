package scatterd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lgpang/smash/internal/engine"
	"github.com/lgpang/smash/internal/metrics"
	"github.com/lgpang/smash/pkg/logger"
)

// CallbackSecretHeader carries the configured callback secret.
const CallbackSecretHeader = "X-Scatterd-Callback-Secret"

// NotificationPayload is the JSON body posted to the callback URL when a
// batch finishes.
type NotificationPayload struct {
	RunID      string                  `json:"run_id"`
	Status     engine.RunStatus        `json:"status"`
	Projectile string                  `json:"projectile"`
	Target     string                  `json:"target"`
	SqrtS      float64                 `json:"sqrt_s"`
	Performed  int64                   `json:"performed"`
	Failed     int64                   `json:"failed"`
	Error      string                  `json:"error,omitempty"`
	Stats      *metrics.CollisionStats `json:"stats,omitempty"`
	Timestamp  int64                   `json:"timestamp"`
}

// Notifier posts batch completions to a callback URL.
type Notifier struct {
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

func NewNotifier() *Notifier {
	return &Notifier{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxRetries: 3,
		baseDelay:  1 * time.Second,
	}
}

// Notify posts rec to callbackURL in the background. A "{run_id}" in the URL
// is replaced by the run ID.
func (n *Notifier) Notify(callbackURL, callbackSecret string, rec *RunRecord) {
	if callbackURL == "" {
		return
	}
	if rec == nil || rec.Run == nil {
		logger.Warn("cannot notify: invalid run record", "callback_url", callbackURL)
		return
	}

	finalURL := strings.ReplaceAll(callbackURL, "{run_id}", rec.Run.ID)
	payload := NotificationPayload{
		RunID:      rec.Run.ID,
		Status:     rec.Run.Status,
		Projectile: rec.Request.Projectile,
		Target:     rec.Request.Target,
		SqrtS:      rec.Request.SqrtS,
		Performed:  rec.Run.Performed,
		Failed:     rec.Run.Failed,
		Error:      rec.Run.Error,
		Stats:      rec.Stats,
		Timestamp:  time.Now().UTC().UnixMilli(),
	}

	go func() {
		if err := n.send(finalURL, callbackSecret, payload); err != nil {
			logger.Error("failed to send notification after retries",
				"callback_url", finalURL,
				"run_id", payload.RunID,
				"max_retries", n.maxRetries,
				"last_error", err)
		}
	}()
}

// send posts payload, retrying with exponential backoff until a 2xx reply.
func (n *Notifier) send(callbackURL, callbackSecret string, payload NotificationPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if attempt > 0 {
			delay := n.baseDelay * time.Duration(1<<uint(attempt-1))
			logger.Debug("retrying notification",
				"callback_url", callbackURL,
				"run_id", payload.RunID,
				"attempt", attempt,
				"delay", delay)
			time.Sleep(delay)
		}

		req, err := http.NewRequest(http.MethodPost, callbackURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "scatterd/1.0")
		if callbackSecret != "" {
			req.Header.Set(CallbackSecretHeader, callbackSecret)
		}

		resp, err := n.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			logger.Warn("notification attempt failed",
				"callback_url", callbackURL,
				"run_id", payload.RunID,
				"attempt", attempt+1,
				"error", err)
			continue
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("notification sent",
				"run_id", payload.RunID,
				"status", payload.Status,
				"status_code", resp.StatusCode)
			return nil
		}
		lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		logger.Warn("notification returned non-2xx status",
			"callback_url", callbackURL,
			"run_id", payload.RunID,
			"status_code", resp.StatusCode,
			"attempt", attempt+1)
	}
	return lastErr
}
