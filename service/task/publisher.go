package task

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher publishes mail tasks to a durable queue.
type AMQPPublisher struct {
	ch    *amqp.Channel
	queue string
}

func NewAMQPPublisher(ch *amqp.Channel, queue string) (*AMQPPublisher, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &AMQPPublisher{ch: ch, queue: queue}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, body []byte) error {
	return p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
