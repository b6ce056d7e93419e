package rabbitmq

import (
	"fmt"
	"time"

	"github.com/mini-maxit/taucheck/internal/logger"
	"github.com/mini-maxit/taucheck/internal/rabbitmq/channel"
	"github.com/mini-maxit/taucheck/pkg/constants"
	amqp "github.com/rabbitmq/amqp091-go"
)

// NewRabbitMqConnection dials url, retrying a few times before giving up.
func NewRabbitMqConnection(url string) (*amqp.Connection, error) {
	logger := logger.NewNamedLogger("rabbitmq")

	var lastErr error
	for attempt := 1; attempt <= constants.RabbitMQReconnectTries; attempt++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			logger.Infof("Connected to RabbitMQ after %d attempt(s)", attempt)
			return conn, nil
		}
		lastErr = err
		logger.Warnf("Failed to connect to RabbitMQ (attempt %d/%d): %s",
			attempt, constants.RabbitMQReconnectTries, err)
		if attempt < constants.RabbitMQReconnectTries {
			time.Sleep(constants.RabbitMQReconnectDelay * time.Second)
		}
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", lastErr)
}

func NewRabbitMQChannel(conn *amqp.Connection) (channel.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	return channel.NewAmqpChannel(ch), nil
}
