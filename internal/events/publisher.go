// Package events publishes session and lobby lifecycle events to an AMQP
// topic exchange. Delivery is best effort: failures are logged and retried
// by the background queue, never surfaced to the request that produced them.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/AriosJentu/PickerApp-sub000/pkg/config"
	"github.com/AriosJentu/PickerApp-sub000/pkg/jobs"
)

type envelope struct {
	RoutingKey string
	Body       []byte
}

// Publisher delivers JSON event payloads through a topic exchange. Publishing
// is decoupled from the request path by an in-memory worker queue.
type Publisher struct {
	exchange string
	conn     *amqp.Connection
	channel  *amqp.Channel
	queue    *jobs.Queue
	logger   *zap.Logger

	// amqp channels are not safe for concurrent publish
	mu sync.Mutex
}

// NewPublisher dials the broker and declares the exchange. The returned
// publisher does not deliver anything until Start is called.
func NewPublisher(cfg config.EventsConfig, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := channel.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, err
	}

	p := &Publisher{
		exchange: cfg.Exchange,
		conn:     conn,
		channel:  channel,
		logger:   logger,
	}
	p.queue = jobs.NewQueue("events", p.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		Logger:     logger,
	})
	return p, nil
}

// Start launches the delivery workers. Safe on a nil publisher.
func (p *Publisher) Start(ctx context.Context) {
	if p == nil {
		return
	}
	p.queue.Start(ctx)
}

// Close stops the workers and tears down the broker connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.queue.Stop()
	_ = p.channel.Close()
	_ = p.conn.Close()
}

// Publish serialises the payload and hands it to the delivery queue. The
// payload is marshalled up front so a bad value is reported immediately
// instead of failing inside a worker.
func (p *Publisher) Publish(ctx context.Context, key string, payload any) {
	if p == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn("event payload not serialisable", zap.String("key", key), zap.Error(err))
		return
	}

	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    key,
		Payload: envelope{RoutingKey: key, Body: body},
	}
	if err := p.queue.Enqueue(job); err != nil {
		p.logger.Warn("event dropped", zap.String("key", key), zap.Error(err))
	}
}

func (p *Publisher) deliver(ctx context.Context, job jobs.Job) error {
	env, ok := job.Payload.(envelope)
	if !ok {
		p.logger.Error("unexpected event payload type", zap.String("job_id", job.ID))
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.channel.PublishWithContext(ctx,
		p.exchange,
		env.RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    job.ID,
			Timestamp:    time.Now().UTC(),
			Body:         env.Body,
		},
	)
}
