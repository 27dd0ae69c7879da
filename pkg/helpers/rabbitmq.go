package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPublisherClosed is returned by PublishJSON on a nil or closed publisher.
var ErrPublisherClosed = errors.New("publisher not available")

// DeclareQueue declares the durable job queue. The API and the worker both call
// it so whichever starts first creates the queue with the same arguments.
func DeclareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	return err
}

// RabbitPublisher publishes persistent JSON messages to one queue over the default exchange.
type RabbitPublisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	Queue   string
	Timeout time.Duration
}

// NewRabbitPublisher dials url and declares queue.
// An empty url disables publishing and returns nil.
func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	if url == "" {
		return nil, nil
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := DeclareQueue(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &RabbitPublisher{conn: conn, ch: ch, Queue: queue, Timeout: 5 * time.Second}, nil
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// PublishJSON encodes body and publishes it with a fresh message id.
func (p *RabbitPublisher) PublishJSON(ctx context.Context, body any) error {
	if p == nil {
		return ErrPublisherClosed
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil || p.ch.IsClosed() {
		return ErrPublisherClosed
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	return p.ch.PublishWithContext(ctx, "", p.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         b,
	})
}
