package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultExchange is the topic exchange activity events are published to.
const DefaultExchange = "autismart.activities"

// publishChannel is the subset of *amqp.Channel the publisher uses.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes every recorded activity as JSON to a durable
// topic exchange. Routing keys are "activity.<type>".
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  publishChannel
	exchange string
	logger   *zap.Logger
}

// DialPublisher connects to the broker at url and declares the exchange.
func DialPublisher(url, exchange string, logger *zap.Logger) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	p := newPublisher(ch, exchange, logger)
	p.conn = conn
	logger.Info("activity publisher ready", zap.String("exchange", exchange))
	return p, nil
}

func newPublisher(ch publishChannel, exchange string, logger *zap.Logger) *AMQPPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AMQPPublisher{channel: ch, exchange: exchange, logger: logger}
}

// RoutingKey returns the routing key for records of type t.
func RoutingKey(t Type) string {
	return "activity." + string(t)
}

func (p *AMQPPublisher) Record(ctx context.Context, rec Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	ts := rec.RecordedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,           // exchange
		RoutingKey(rec.Type), // routing key
		false,                // mandatory
		false,                // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    ts,
			Body:         body,
			Headers: amqp.Table{
				"activity_type": string(rec.Type),
				"child_id":      rec.ChildID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("publish activity: %w", err)
	}

	p.logger.Debug("published activity",
		zap.String("type", string(rec.Type)),
		zap.String("name", rec.Name),
	)
	return nil
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			return fmt.Errorf("close channel: %w", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("close connection: %w", err)
		}
	}
	return nil
}
