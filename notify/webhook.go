package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	agenthttp "github.com/randalmurphal/agentflow/http"
)

// Webhook delivery is best effort with a short retry budget; a flaky
// sink should not stall the workflow that is notifying it.
const (
	webhookTimeout   = 10 * time.Second
	webhookRetries   = 2
	webhookRetryWait = 250 * time.Millisecond
)

// =============================================================================
// WebhookNotifier
// =============================================================================

// WebhookNotifier posts events as JSON to a generic HTTP webhook,
// retrying transient failures.
type WebhookNotifier struct {
	URL     string
	Headers map[string]string

	client *agenthttp.Client
}

// NewWebhookNotifier creates a webhook notifier.
func NewWebhookNotifier(url string, headers map[string]string) *WebhookNotifier {
	n := &WebhookNotifier{
		URL:     url,
		Headers: headers,
	}
	n.client = agenthttp.NewClient(agenthttp.ClientConfig{
		Client:      &http.Client{Timeout: webhookTimeout},
		BaseURL:     url,
		BackendName: "webhook",
		MaxRetries:  webhookRetries,
		RetryWait:   webhookRetryWait,
		BeforeRequest: func(req *http.Request) {
			for k, v := range headers {
				req.Header.Set(k, v)
			}
		},
	})
	return n
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	resp, err := n.client.Request(ctx, http.MethodPost, "", event)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
