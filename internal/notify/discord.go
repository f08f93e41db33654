// Package notify delivers best-effort operational notifications.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Notifier announces account events to a chat channel. Delivery is
// best-effort: failures are logged, never surfaced to the request.
type Notifier interface {
	SignupAnnounce(username string)
}

// Discord posts messages to a Discord webhook URL.
type Discord struct {
	webhookURL string
	http       *http.Client
	log        *zap.Logger
}

var _ Notifier = (*Discord)(nil)

// NewDiscord constructs a Discord notifier. An empty webhookURL disables delivery.
func NewDiscord(webhookURL string, log *zap.Logger) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		http:       &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// SignupAnnounce posts a new-user message. Runs in its own goroutine so the
// signup response never waits on Discord.
func (d *Discord) SignupAnnounce(username string) {
	if d.webhookURL == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := d.post(ctx, fmt.Sprintf("🎉 New user signed up: **%s**", username)); err != nil {
			d.log.Warn("discord notify failed", zap.Error(err))
		}
	}()
}

func (d *Discord) post(ctx context.Context, content string) error {
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
