package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Connection guarda a conexão e o canal usados pelos publishers
type Connection struct {
	Connection *amqp.Connection
	Channel    *amqp.Channel
}

func Connect(url string) (*Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	logrus.Info("rabbitmq: connected")

	return &Connection{Connection: conn, Channel: ch}, nil
}

func (c *Connection) Close() error {
	if c.Channel != nil {
		if err := c.Channel.Close(); err != nil {
			logrus.WithError(err).Error("rabbitmq: failed to close channel")
		}
	}
	if c.Connection != nil {
		if err := c.Connection.Close(); err != nil {
			logrus.WithError(err).Error("rabbitmq: failed to close connection")
			return err
		}
	}
	return nil
}
