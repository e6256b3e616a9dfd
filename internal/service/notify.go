package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"
)

// Notifier is a fire-and-forget event sink. Implementations must never
// block the caller or surface delivery errors.
type Notifier interface {
	Notify(event string, fields map[string]string)
}

// NopNotifier drops everything. Used when MAIN_WEBHOOK is unset and in
// tests.
type NopNotifier struct{}

func (NopNotifier) Notify(string, map[string]string) {}

// WebhookNotifier posts human-readable events to a Discord-style
// webhook. Delivery happens on its own goroutine with a bounded
// timeout; failures are logged and swallowed.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *WebhookNotifier) Notify(event string, fields map[string]string) {
	go n.deliver(event, fields)
}

func (n *WebhookNotifier) deliver(event string, fields map[string]string) {
	content := fmt.Sprintf("📝 **%s**\n", event)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		content += fmt.Sprintf("**%s:** `%s`\n", k, fields[k])
	}
	content += fmt.Sprintf("**Time:** <t:%d:F>", time.Now().Unix())

	// Discord rejects oversized content.
	if len(content) > 1500 {
		content = content[:1500] + "..."
	}

	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return
	}

	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("webhook delivery failed: %v", err)
		return
	}
	resp.Body.Close()
}
