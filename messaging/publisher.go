package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"cafe-pos/services"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type OrderLineEvent struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderPlacedEvent is the JSON body published for every accepted order.
type OrderPlacedEvent struct {
	EventID      string           `json:"event_id"`
	OrderID      string           `json:"order_id"`
	CustomerName string           `json:"customer_name"`
	TableID      string           `json:"table_id"`
	TableNumber  string           `json:"table_number"`
	PlacedAt     time.Time        `json:"placed_at"`
	Lines        []OrderLineEvent `json:"lines"`
	Total        decimal.Decimal  `json:"total"`
}

func NewOrderPlacedEvent(r services.Receipt) OrderPlacedEvent {
	ev := OrderPlacedEvent{
		EventID:      uuid.NewString(),
		OrderID:      r.OrderID,
		CustomerName: r.CustomerName,
		TableID:      r.TableID,
		TableNumber:  r.TableLabel,
		PlacedAt:     r.IssuedAt,
		Total:        r.Total,
	}
	for _, l := range r.Lines {
		ev.Lines = append(ev.Lines, OrderLineEvent{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	return ev
}

// Publisher sends order events to a durable queue. It implements services.OrderNotifier.
type Publisher struct {
	conn      *amqp.Connection
	queueName string

	mu sync.Mutex
	ch channel
}

// NewPublisher connects to RabbitMQ and declares the queue.
func NewPublisher(rabbitmqURL, queueName string) (*Publisher, error) {
	conn, err := amqp.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	log.Printf("Publishing order events to queue %s", queueName)
	return &Publisher{conn: conn, queueName: queueName, ch: ch}, nil
}

func newPublisherWithChannel(ch channel, queueName string) *Publisher {
	return &Publisher{ch: ch, queueName: queueName}
}

func (p *Publisher) OrderPlaced(ctx context.Context, r services.Receipt) error {
	return p.Publish(ctx, NewOrderPlacedEvent(r))
}

func (p *Publisher) Publish(ctx context.Context, ev OrderPlacedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key (queue name)
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    ev.EventID,
			Timestamp:    time.Now(),
			Type:         "order.placed",
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish order %s: %w", ev.OrderID, err)
	}

	log.Printf("Published order %s to %s", ev.OrderID, p.queueName)
	return nil
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
