package rabbitmq

import (
	"encoding/json"
	"sync"
	"time"

	"backoffice/internal/models"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// OrderEventsQueue receives one message per placed order.
const OrderEventsQueue = "order_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // serializes publishes on the shared channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the order events queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to RabbitMQ")
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to open channel")
	}

	if err := declareQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	log.WithField("queue", OrderEventsQueue).Info("RabbitMQ client connected")
	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareQueue(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		OrderEventsQueue, // name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	)
	return errors.Wrapf(err, "failed to declare %s", OrderEventsQueue)
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "failed to close channel"))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "failed to close connection"))
		}
	}
	if len(errs) > 0 {
		return errors.Errorf("errors closing RabbitMQ client: %v", errs)
	}
	return nil
}

// PublishOrderPlaced publishes event as a persistent JSON message on the order events queue.
func (c *Client) PublishOrderPlaced(event models.OrderPlacedEvent) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal order event")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		"",               // default exchange
		OrderEventsQueue, // routing key
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         "order.placed",
			MessageId:    event.OrderID,
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return errors.Wrap(err, "failed to publish order event")
	}

	log.WithField("order_id", event.OrderID).Debug("Sent order placed event")
	return nil
}

// DecodeOrderPlaced parses a message body produced by PublishOrderPlaced.
func DecodeOrderPlaced(body []byte) (models.OrderPlacedEvent, error) {
	var event models.OrderPlacedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return event, errors.Wrap(err, "malformed order event")
	}
	if event.OrderID == "" {
		return event, errors.New("order event without orderId")
	}
	return event, nil
}

// ConsumeOrderEvents starts a goroutine delivering order events to handler until the
// channel is closed. Messages are acked when handler succeeds and requeued when it fails;
// undecodable messages are dropped.
func (c *Client) ConsumeOrderEvents(handler func(models.OrderPlacedEvent) error) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		OrderEventsQueue, // queue
		"",               // consumer tag
		false,            // auto-ack
		false,            // exclusive
		false,            // no-local
		false,            // no-wait
		nil,              // args
	)
	if err != nil {
		return errors.Wrap(err, "failed to register consumer")
	}

	log.WithField("queue", OrderEventsQueue).Info("Waiting for order events")
	go func() {
		for msg := range msgs {
			handleDelivery(msg, handler)
		}
		log.Info("Order event consumer stopped")
	}()
	return nil
}

// acknowledger is the part of amqp.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(msg amqp.Delivery, handler func(models.OrderPlacedEvent) error) {
	settle(msg.DeliveryTag, msg.Body, msg, handler)
}

func settle(tag uint64, body []byte, ack acknowledger, handler func(models.OrderPlacedEvent) error) {
	entry := log.WithField("delivery_tag", tag)

	event, err := DecodeOrderPlaced(body)
	if err != nil {
		entry.WithError(err).Error("Dropping order event")
		if nackErr := ack.Nack(false, false); nackErr != nil {
			entry.WithError(nackErr).Error("Error nacking message")
		}
		return
	}

	if err := handler(event); err != nil {
		entry.WithError(err).WithField("order_id", event.OrderID).Warn("Error processing order event, requeueing")
		if nackErr := ack.Nack(false, true); nackErr != nil {
			entry.WithError(nackErr).Error("Error nacking message")
		}
		return
	}
	if ackErr := ack.Ack(false); ackErr != nil {
		entry.WithError(ackErr).Error("Error acking message")
	}
}
