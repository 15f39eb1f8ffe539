package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/therealutkarshpriyadarshi/vidshare/internal/metrics"
	"github.com/therealutkarshpriyadarshi/vidshare/pkg/models"
)

const (
	DeadLetterQueueName    = "vidshare.events.dlq"
	DeadLetterExchangeName = "vidshare.dlq"
	RetryQueueName         = "vidshare.events.retry"
	DefaultMaxRetries      = 5

	retryHeader = "x-retry-count"
)

// SetupDeadLetterQueue sets up the dead letter queue infrastructure
func (q *Queue) SetupDeadLetterQueue() error {
	err := q.channel.ExchangeDeclare(
		DeadLetterExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare DLQ exchange: %w", err)
	}

	_, err = q.channel.QueueDeclare(
		DeadLetterQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}

	err = q.channel.QueueBind(
		DeadLetterQueueName,
		DeadLetterQueueName,
		DeadLetterExchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	// Expired retries flow back into the events queue
	retryArgs := amqp.Table{
		"x-dead-letter-exchange":    ExchangeName,
		"x-dead-letter-routing-key": EventsQueueName,
	}

	_, err = q.channel.QueueDeclare(
		RetryQueueName,
		true,
		false,
		false,
		false,
		retryArgs,
	)
	if err != nil {
		return fmt.Errorf("failed to declare retry queue: %w", err)
	}

	log.Info().Msg("Dead letter queue infrastructure set up successfully")
	return nil
}

// PublishToRetryQueue schedules a failed event for another attempt, or moves
// it to the dead letter queue once retries are exhausted
func (q *Queue) PublishToRetryQueue(ctx context.Context, event *models.Event, retryCount int) error {
	if retryCount >= q.maxRetries {
		return q.PublishToDeadLetterQueue(ctx, event, "max retries exceeded")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	delay := calculateBackoffDelay(retryCount)

	err = q.publish(ctx, "", RetryQueueName, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    event.ID,
		Type:         string(event.Type),
		Body:         body,
		Timestamp:    time.Now(),
		Headers:      amqp.Table{retryHeader: int32(retryCount + 1)},
		Expiration:   fmt.Sprintf("%d", delay.Milliseconds()),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to retry queue: %w", err)
	}

	log.Info().
		Str("event_id", event.ID).
		Int("retry", retryCount+1).
		Dur("delay", delay).
		Msg("Event queued for retry")
	return nil
}

// PublishToDeadLetterQueue publishes a failed event to the dead letter queue
func (q *Queue) PublishToDeadLetterQueue(ctx context.Context, event *models.Event, reason string) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = q.publish(ctx, DeadLetterExchangeName, DeadLetterQueueName, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    event.ID,
		Type:         string(event.Type),
		Body:         body,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			"x-failure-reason": reason,
			"x-failed-at":      time.Now().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish to DLQ: %w", err)
	}

	metrics.RecordEventDeadLettered(string(event.Type))
	log.Warn().Str("event_id", event.ID).Str("reason", reason).Msg("Event moved to dead letter queue")
	return nil
}

// calculateBackoffDelay calculates exponential backoff delay
func calculateBackoffDelay(retryCount int) time.Duration {
	// Exponential backoff: 5s, 10s, 20s, 40s, ...
	baseDelay := 5 * time.Second
	if retryCount > 16 {
		retryCount = 16
	}
	delay := baseDelay * (1 << retryCount)

	// Cap at 10 minutes
	if delay > 10*time.Minute {
		delay = 10 * time.Minute
	}

	return delay
}

// GetDLQDepth returns the number of messages in the dead letter queue
func (q *Queue) GetDLQDepth() (int, error) {
	info, err := q.channel.QueueInspect(DeadLetterQueueName)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect DLQ: %w", err)
	}

	return info.Messages, nil
}
