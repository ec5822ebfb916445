package config

import "time"

const (
	EventBrokerNone     = "none"
	EventBrokerKafka    = "kafka"
	EventBrokerRabbitMQ = "rabbitmq"

	DefaultServiceDurationMin = 60

	DefaultMongoOperationTimeout = 10 * time.Second
)
