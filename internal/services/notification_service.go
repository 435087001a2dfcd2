package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/doorcraft/backend/internal/messaging"
	"github.com/doorcraft/backend/internal/metrics"
	"github.com/doorcraft/backend/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

// OrderNotification is the message sent after an order commits
type OrderNotification struct {
	OrderNumber string          `json:"orderNumber"`
	DealerID    string          `json:"dealerId"`
	DealerName  string          `json:"dealerName"`
	Destination string          `json:"destination"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	LineCount   int             `json:"lineCount"`
	PlacedAt    time.Time       `json:"placedAt"`
}

func NewOrderNotification(order *models.Order, dealer *models.DealerAccount) OrderNotification {
	return OrderNotification{
		OrderNumber: order.OrderNumber,
		DealerID:    order.DealerID,
		DealerName:  dealer.Name,
		Destination: order.Shipping.Address,
		TotalAmount: order.TotalAmount,
		LineCount:   len(order.LineItems),
		PlacedAt:    order.CreatedAt,
	}
}

// NotificationChannel delivers one notification to one sink
type NotificationChannel interface {
	Name() string
	Send(ctx context.Context, n OrderNotification) error
}

// NotificationDispatcher fans a notification out to every channel
// concurrently, each with its own timeout. Failures are logged and counted, never returned.
type NotificationDispatcher struct {
	channels []NotificationChannel
	timeout  time.Duration
	metrics  *metrics.PlacementMetrics
	wg       sync.WaitGroup
}

func NewNotificationDispatcher(timeout time.Duration, m *metrics.PlacementMetrics, channels ...NotificationChannel) *NotificationDispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NotificationDispatcher{
		channels: channels,
		timeout:  timeout,
		metrics:  m,
	}
}

// Dispatch starts delivery and returns immediately. It reports false when
// no channel is configured and the notification is skipped.
func (d *NotificationDispatcher) Dispatch(n OrderNotification) bool {
	if len(d.channels) == 0 {
		log.Printf("[NOTIFY] No notification channel configured, skipping %s", n.OrderNumber)
		return false
	}

	for _, ch := range d.channels {
		d.wg.Add(1)
		go d.deliver(ch, n)
	}
	return true
}

// deliver sends n to one channel under its own timeout and records the
// outcome.
func (d *NotificationDispatcher) deliver(ch NotificationChannel, n OrderNotification) {
	defer d.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := ch.Send(ctx, n)
	d.metrics.ObserveNotification(ch.Name(), err)
	if err != nil {
		log.Printf("[NOTIFY] %s delivery failed for order %s: %v", ch.Name(), n.OrderNumber, err)
		return
	}
	log.Printf("[NOTIFY] %s delivered order %s", ch.Name(), n.OrderNumber)
}

// Wait blocks until in-flight deliveries finish
func (d *NotificationDispatcher) Wait() {
	d.wg.Wait()
}

// RedisQueueChannel pushes notifications onto a list consumed by the
// email and IM workers.
type RedisQueueChannel struct {
	redis *redis.Client
	queue string
}

func NewRedisQueueChannel(client *redis.Client, queue string) *RedisQueueChannel {
	return &RedisQueueChannel{redis: client, queue: queue}
}

func (c *RedisQueueChannel) Name() string { return "redis" }

func (c *RedisQueueChannel) Send(ctx context.Context, n OrderNotification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return c.redis.RPush(ctx, c.queue, data).Err()
}

// WebhookChannel posts a text message to an IM robot webhook
type WebhookChannel struct {
	url    string
	client *http.Client
}

func NewWebhookChannel(url string, client *http.Client) *WebhookChannel {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookChannel{url: url, client: client}
}

func (c *WebhookChannel) Name() string { return "webhook" }

func (c *WebhookChannel) Send(ctx context.Context, n OrderNotification) error {
	payload := map[string]any{
		"msgtype": "text",
		"text": map[string]string{
			"content": fmt.Sprintf("New order %s from %s: %d line(s), total %s, ship to %s",
				n.OrderNumber, n.DealerName, n.LineCount, n.TotalAmount.StringFixed(2), n.Destination),
		},
		"order": n,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// KafkaChannel publishes an orders.placed event keyed by order number
type KafkaChannel struct {
	writer messaging.MessageWriter
}

func NewKafkaChannel(writer messaging.MessageWriter) *KafkaChannel {
	return &KafkaChannel{writer: writer}
}

func (c *KafkaChannel) Name() string { return "kafka" }

func (c *KafkaChannel) Send(ctx context.Context, n OrderNotification) error {
	return messaging.PublishJSON(ctx, c.writer, n.OrderNumber, n)
}
