package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// AMQPSink publishes notification events to a RabbitMQ exchange so that a
// separate delivery worker can fan them out. It implements Sink; publish
// failures are logged and swallowed because notifications are best-effort.
type AMQPSink struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewAMQPSink(url, exchangeName, queueName string) (*AMQPSink, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	sink := &AMQPSink{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := sink.setup(); err != nil {
		sink.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return sink, nil
}

func (s *AMQPSink) setup() error {
	err := s.channel.ExchangeDeclare(
		s.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = s.channel.QueueDeclare(
		s.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = s.channel.QueueBind(
		s.queueName,    // queue name
		s.queueName,    // routing key (same as queue name for direct exchange)
		s.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// Notify implements Sink by publishing the event as a persistent message.
func (s *AMQPSink) Notify(ctx context.Context, ev Event) {
	body, err := ev.ToJSON()
	if err != nil {
		slog.ErrorContext(ctx, "Failed to marshal notification event",
			"kind", ev.Kind, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = s.channel.PublishWithContext(
		ctx,
		s.exchangeName, // exchange
		s.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish notification event",
			"kind", ev.Kind, "exchange", s.exchangeName, "error", err)
		return
	}

	slog.DebugContext(ctx, "Published notification event",
		"kind", ev.Kind,
		"severity", ev.Severity,
		"exchange", s.exchangeName,
		"queue", s.queueName)
}

// Consume delivers queued notification events to handler until ctx is
// canceled. Events that fail to decode are rejected without requeue; handler
// errors requeue the delivery.
func (s *AMQPSink) Consume(ctx context.Context, handler func(Event) error) error {
	msgs, err := s.channel.Consume(
		s.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming notification events", "queue", s.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping notification consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			ev, err := EventFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal notification event", "error", err)
				delivery.Nack(false, false) // reject and don't requeue
				continue
			}

			if err := handler(ev); err != nil {
				slog.ErrorContext(ctx, "Failed to handle notification event",
					"error", err, "kind", ev.Kind)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
		}
	}
}

func (s *AMQPSink) Close() error {
	if s.channel != nil {
		s.channel.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
