package rabbitmq

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/usecases/governing"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultAlertQueue = "governance_alerts"

// Channel é o subconjunto de *amqp.Channel que o publisher usa
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AlertPublisher envia os alertas de governança para uma fila durável
type AlertPublisher struct {
	channel Channel
	queue   string
}

// NewAlertPublisher declara a fila uma única vez, na criação
func NewAlertPublisher(channel Channel, queue string) (*AlertPublisher, error) {
	if queue == "" {
		queue = defaultAlertQueue
	}

	_, err := channel.QueueDeclare(
		queue, // nome
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return &AlertPublisher{channel: channel, queue: queue}, nil
}

func (p *AlertPublisher) Publish(ctx context.Context, alert governing.AlertEvent) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		"",      // exchange padrão
		p.queue, // routing key = fila
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    alert.ID,
			Type:         string(alert.Severity),
			Timestamp:    alert.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish alert %s: %w", alert.ID, err)
	}

	logrus.WithFields(logrus.Fields{
		"queue":    p.queue,
		"alert_id": alert.ID,
		"severity": alert.Severity,
	}).Debug("rabbitmq: alert published")

	return nil
}

var _ governing.AlertSink = (*AlertPublisher)(nil)
