// Package events publishes booking lifecycle events to a message broker.
// Publishing is best effort: callers log failures and carry on.
package events

import (
	"context"
	"fmt"

	"bookingdesk/pkg/config"
	"bookingdesk/pkg/kafka"
	kafka_config "bookingdesk/pkg/kafka/config"
	kafka_middleware "bookingdesk/pkg/kafka/middleware"
	"bookingdesk/pkg/logger"
	"bookingdesk/pkg/model"
)

const (
	schemaVersion = "1"
	source        = "bookings"
)

type Publisher interface {
	Publish(ctx context.Context, event model.BookingEvent) error
	Close() error
}

// New returns the publisher selected by cfg.EventBroker.
func New(cfg *config.Config) (Publisher, error) {
	switch cfg.EventBroker {
	case config.EventBrokerKafka:
		kafkaCfg, err := kafka_config.Load()
		if err != nil {
			return nil, err
		}
		kafkaCfg.LogConfiguration(cfg.Log.Info)
		return NewKafkaPublisher(kafkaCfg, cfg.EventTopic, cfg.Log)
	case config.EventBrokerRabbitMQ:
		return NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventTopic)
	case config.EventBrokerNone, "":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown event broker %q", cfg.EventBroker)
	}
}

type Noop struct{}

func (Noop) Publish(context.Context, model.BookingEvent) error { return nil }
func (Noop) Close() error { return nil }

type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(cfg *kafka_config.Config, topic string, log *logger.Logger) (*KafkaPublisher, error) {
	producer, err := kafka.NewProducer(cfg, topic, log)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(log))
	return &KafkaPublisher{producer: producer}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event model.BookingEvent) error {
	msg, err := BuildMessage(event)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// BuildMessage keys the message by booking id so one booking's events land
// on one partition in order.
func BuildMessage(event model.BookingEvent) (kafka.Message, error) {
	return kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventID(event.ID).
		WithEventType(event.Type).
		WithSchemaVersion(schemaVersion).
		WithSource(source).
		WithTimestamp(event.OccurredAt).
		Build()
}
