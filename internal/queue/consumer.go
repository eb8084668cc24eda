package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"
)

// InterestMarker flags every interest on a listing as notified and reports
// how many rows changed.
type InterestMarker interface {
    MarkNotified(ctx context.Context, donationID uint64) (int64, error)
}

// notificationFile is the file name appended to inside the log directory.
const notificationFile = "notifications.log"

// Consumer listens to ListingEventsQueue.  Purchase events mark the
// listing's interests as notified; every event is appended to
// <logDir>/notifications.log as a single line.
type Consumer struct {
    url    string
    queue  string
    logDir string
    marker InterestMarker
    log    zerolog.Logger

    mu sync.Mutex // serializes writes to the notification log
}

// NewConsumer wires a consumer.  marker must not be nil.
func NewConsumer(url, logDir string, marker InterestMarker, log zerolog.Logger) *Consumer {
    if marker == nil {
        panic("queue: nil InterestMarker")
    }
    if logDir == "" {
        logDir = "logs"
    }
    return &Consumer{url: url, queue: ListingEventsQueue, logDir: logDir, marker: marker, log: log}
}

// Run connects to RabbitMQ and consumes until ctx is cancelled.  Dial
// failures back off exponentially up to 30s; a closed delivery channel
// triggers a reconnect.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if err := ctx.Err(); err != nil {
            return err
        }
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("listing-consumer: failed to dial broker")
            if !sleepCtx(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.log.Warn().Err(err).Msg("listing-consumer: consume loop ended; reconnecting")
        if !sleepCtx(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.Warn().Err(err).Msg("listing-consumer: set QoS failed")
    }
    if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.handleMessage(ctx, d.Body); err != nil {
                c.log.Error().Err(err).Msg("listing-consumer: handle message failed")
                _ = d.Nack(false, false) // dropped, not requeued
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (c *Consumer) handleMessage(ctx context.Context, body []byte) error {
    var ev ListingEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }

    var notified int64
    switch ev.Type {
    case EventListingPurchased:
        n, err := c.marker.MarkNotified(ctx, ev.DonationID)
        if err != nil {
            return fmt.Errorf("mark interests notified: %w", err)
        }
        notified = n
    case EventListingDonated:
    default:
        return fmt.Errorf("unknown event type %q", ev.Type)
    }

    line := fmt.Sprintf("[%s] %s | donation_id=%d | name=%q | owner=%s | actor=%s | interests_notified=%d\n",
        ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.DonationID, ev.Name, ev.OwnerEmail, ev.ActorEmail, notified)
    return c.appendLine(line)
}

func (c *Consumer) appendLine(line string) error {
    c.mu.Lock()
    defer c.mu.Unlock()

    if err := os.MkdirAll(c.logDir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", c.logDir, err)
    }
    f, err := os.OpenFile(filepath.Join(c.logDir, notificationFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
