package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"
)

// Publisher sends listing events to the broker.
type Publisher interface {
    Publish(ctx context.Context, ev ListingEvent) error
}

// NopPublisher drops every event.  It is used when EVENTS_ENABLED=false.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, ListingEvent) error { return nil }

// AMQPPublisher publishes events to RabbitMQ.  A connection is dialed per
// event; lifecycle changes are rare enough that pooling is not worth the
// reconnect handling.
type AMQPPublisher struct {
    url   string
    queue string
    log   zerolog.Logger
}

// NewAMQPPublisher returns a publisher targeting ListingEventsQueue.
func NewAMQPPublisher(url string, log zerolog.Logger) *AMQPPublisher {
    return &AMQPPublisher{url: url, queue: ListingEventsQueue, log: log}
}

// Publish declares the queue (idempotent, durable) and sends the event as a
// persistent JSON message.  Errors are logged and returned so the caller
// can choose to ignore them.
func (p *AMQPPublisher) Publish(ctx context.Context, ev ListingEvent) error {
    msg, err := encodeEvent(ev)
    if err != nil {
        p.log.Error().Err(err).Msg("rabbitmq: marshal event failed")
        return err
    }
    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.log.Error().Err(err).Msg("rabbitmq: dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.Error().Err(err).Msg("rabbitmq: channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        p.log.Error().Err(err).Msg("rabbitmq: queue declare failed")
        return err
    }
    if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
        p.log.Error().Err(err).Str("type", ev.Type).Msg("rabbitmq: publish failed")
        return err
    }
    return nil
}

func encodeEvent(ev ListingEvent) (amqp.Publishing, error) {
    if ev.OccurredAt.IsZero() {
        ev.OccurredAt = time.Now().UTC()
    }
    body, err := json.Marshal(ev)
    if err != nil {
        return amqp.Publishing{}, err
    }
    return amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Type:         ev.Type,
        Timestamp:    ev.OccurredAt,
        Body:         body,
    }, nil
}
