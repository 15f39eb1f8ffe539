package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/config"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/logging"
	"github.com/therealutkarshpriyadarshi/vidshare/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

const (
	EventsQueueName = "vidshare.events"
	ExchangeName    = "vidshare"
)

// Handler processes one event. A returned error schedules a retry.
type Handler func(ctx context.Context, event *models.Event) error

// Queue provides message queue operations
type Queue struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	mu         sync.Mutex
	maxRetries int
}

// New creates a new queue client and declares the event topology
func New(cfg config.QueueConfig) (*Queue, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Vhost)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q := &Queue{conn: conn, channel: channel, maxRetries: cfg.MaxRetries}
	if q.maxRetries <= 0 {
		q.maxRetries = DefaultMaxRetries
	}

	if err := q.declare(); err != nil {
		q.Close()
		return nil, err
	}
	if err := q.SetupDeadLetterQueue(); err != nil {
		q.Close()
		return nil, err
	}

	return q, nil
}

func (q *Queue) declare() error {
	err := q.channel.ExchangeDeclare(
		ExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = q.channel.QueueDeclare(
		EventsQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	err = q.channel.QueueBind(
		EventsQueueName,
		EventsQueueName,
		ExchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	return nil
}

// Close closes the queue connection
func (q *Queue) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

func (q *Queue) publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.channel.PublishWithContext(ctx, exchange, key, false, false, msg)
}

// Publish publishes an event to the events queue
func (q *Queue) Publish(ctx context.Context, event *models.Event) (err error) {
	defer func() { metrics.RecordEventPublished(string(event.Type), err) }()

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = q.publish(ctx, ExchangeName, EventsQueueName, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    event.ID,
		Type:         string(event.Type),
		Body:         body,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Consume starts consuming events until ctx is done. The returned channel
// is closed when the consumer stops.
func (q *Queue) Consume(ctx context.Context, prefetch int, handler Handler) (<-chan struct{}, error) {
	// Set QoS to limit concurrent processing
	if err := q.channel.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := q.channel.Consume(
		EventsQueueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				handleDelivery(ctx, msg, handler, q)
			}
		}
	}()

	return done, nil
}

// retrier reschedules failed events
type retrier interface {
	PublishToRetryQueue(ctx context.Context, event *models.Event, retryCount int) error
}

// handleDelivery runs handler on one message. Failed events are republished
// to the retry queue and the original is acked. If republishing fails the
// message is requeued.
func handleDelivery(ctx context.Context, msg amqp.Delivery, handler Handler, r retrier) {
	logger := logging.FromContext(ctx)

	var event models.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		logger.WarnWithErr("dropping undecodable event", err)
		metrics.RecordEventProcessed("undecodable", err)
		_ = msg.Nack(false, false)
		return
	}

	eventLogger := logger.WithFields(map[string]interface{}{
		"event_id":   event.ID,
		"event_type": string(event.Type),
	})

	err := handler(eventLogger.WithContext(ctx), &event)
	metrics.RecordEventProcessed(string(event.Type), err)
	if err == nil {
		_ = msg.Ack(false)
		return
	}

	retries := retryCount(msg.Headers)
	eventLogger.WithField("retry_count", retries).WarnWithErr("event handler failed", err)

	if err := r.PublishToRetryQueue(ctx, &event, retries); err != nil {
		eventLogger.ErrorWithErr("failed to schedule retry", err)
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}

// retryCount reads the x-retry-count header
func retryCount(headers amqp.Table) int {
	switch v := headers[retryHeader].(type) {
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 0
	}
}

// GetQueueDepth returns the number of messages in the events queue
func (q *Queue) GetQueueDepth() (int, error) {
	info, err := q.channel.QueueInspect(EventsQueueName)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect queue: %w", err)
	}

	return info.Messages, nil
}
