// Package queue decouples export submission from generation with a NATS
// core subject. The submit handler publishes a job message and responds
// immediately; a background worker consumes messages and runs the pipeline.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/graasp/graasp-service-exporter/job"
)

// Publisher publishes export job messages.
type Publisher interface {
	Publish(ctx context.Context, msg job.Message) error
}

// Bus is a NATS-backed Publisher and consumer for the export topic.
type Bus struct {
	nc      *nats.Conn
	subject string
	logger  *slog.Logger
}

// Connect dials NATS and returns a Bus on the given subject.
func Connect(url, subject string, logger *slog.Logger) (*Bus, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name("graasp-exporter"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("queue: connect %s: %w", url, err)
	}
	return &Bus{nc: nc, subject: subject, logger: logger}, nil
}

// Publish sends a job message on the export subject.
func (b *Bus) Publish(ctx context.Context, msg job.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("queue: marshal: %w", err)
	}
	if err := b.nc.Publish(b.subject, data); err != nil {
		return fmt.Errorf("queue: publish: %w", err)
	}
	return nil
}

// Subscribe dispatches each job message to handler until ctx is cancelled.
// Malformed messages are logged and dropped; handler panics are recovered so
// one bad job cannot take the worker down.
func (b *Bus) Subscribe(ctx context.Context, handler func(context.Context, job.Message)) error {
	sub, err := b.nc.Subscribe(b.subject, func(m *nats.Msg) {
		var msg job.Message
		if err := json.Unmarshal(m.Data, &msg); err != nil {
			b.logger.Error("queue: malformed job message", "error", err)
			return
		}
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("queue: job handler panic", "file_id", msg.FileID, "panic", r)
			}
		}()
		handler(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("queue: subscribe %s: %w", b.subject, err)
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			b.logger.Warn("queue: drain", "error", err)
		}
	}()
	return nil
}

// Close drains and closes the connection.
func (b *Bus) Close() {
	if b.nc != nil {
		b.nc.Close()
	}
}
