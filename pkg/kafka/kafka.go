// Package kafka wraps the segmentio client with per-topic writers so the
// rest of the code publishes by topic name only.
package kafka

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type Client struct {
	Brokers []string

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

func NewClient(brokersCSV string) *Client {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return &Client{Brokers: brokers, writers: make(map[string]*kafka.Writer)}
}

func (c *Client) Enabled() bool {
	return len(c.Brokers) > 0
}

func (c *Client) writer(topic string) *kafka.Writer {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.writers[topic]
	if !ok {
		w = &kafka.Writer{
			Addr:         kafka.TCP(c.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		}
		c.writers[topic] = w
	}
	return w
}

func (c *Client) Publish(ctx context.Context, topic, key string, payload []byte) error {
	return c.writer(topic).WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var first error
	for _, w := range c.writers {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	c.writers = make(map[string]*kafka.Writer)
	return first
}
