package queue

import (
    "context"
    "encoding/json"
    "errors"
    "os"
    "path/filepath"
    "strings"
    "testing"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"
    "github.com/stretchr/testify/require"
)

type fakeMarker struct {
    calls []uint64
    n     int64
    err   error
}

func (f *fakeMarker) MarkNotified(_ context.Context, id uint64) (int64, error) {
    f.calls = append(f.calls, id)
    return f.n, f.err
}

func body(t *testing.T, ev ListingEvent) []byte {
    t.Helper()
    b, err := json.Marshal(ev)
    require.NoError(t, err)
    return b
}

func TestEncodeEvent(t *testing.T) {
    at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
    msg, err := encodeEvent(ListingEvent{Type: EventListingPurchased, DonationID: 7, OccurredAt: at})
    require.NoError(t, err)
    require.Equal(t, "application/json", msg.ContentType)
    require.Equal(t, amqp.Persistent, msg.DeliveryMode)
    require.Equal(t, EventListingPurchased, msg.Type)
    require.Equal(t, at, msg.Timestamp)

    var back ListingEvent
    require.NoError(t, json.Unmarshal(msg.Body, &back))
    require.Equal(t, uint64(7), back.DonationID)
}

func TestEncodeEvent_DefaultsTimestamp(t *testing.T) {
    msg, err := encodeEvent(ListingEvent{Type: EventListingDonated})
    require.NoError(t, err)
    require.False(t, msg.Timestamp.IsZero())
}

func TestHandleMessage_PurchaseMarksInterests(t *testing.T) {
    dir := t.TempDir()
    m := &fakeMarker{n: 2}
    c := NewConsumer("amqp://unused", dir, m, zerolog.Nop())

    ev := ListingEvent{Type: EventListingPurchased, DonationID: 42, Name: "Red shirt",
        OwnerEmail: "a@x.com", ActorEmail: "b@x.com", OccurredAt: time.Now()}
    require.NoError(t, c.handleMessage(context.Background(), body(t, ev)))
    require.Equal(t, []uint64{42}, m.calls)

    data, err := os.ReadFile(filepath.Join(dir, notificationFile))
    require.NoError(t, err)
    line := string(data)
    require.Contains(t, line, "listing.purchased")
    require.Contains(t, line, "donation_id=42")
    require.Contains(t, line, "interests_notified=2")
    require.True(t, strings.HasSuffix(line, "\n"))
}

func TestHandleMessage_DonatedOnlyLogs(t *testing.T) {
    dir := t.TempDir()
    m := &fakeMarker{}
    c := NewConsumer("amqp://unused", dir, m, zerolog.Nop())

    ev := ListingEvent{Type: EventListingDonated, DonationID: 3, OccurredAt: time.Now()}
    require.NoError(t, c.handleMessage(context.Background(), body(t, ev)))
    require.Empty(t, m.calls)

    data, err := os.ReadFile(filepath.Join(dir, notificationFile))
    require.NoError(t, err)
    require.Contains(t, string(data), "listing.donated")
}

func TestHandleMessage_Errors(t *testing.T) {
    c := NewConsumer("amqp://unused", t.TempDir(), &fakeMarker{err: errors.New("db down")}, zerolog.Nop())

    require.Error(t, c.handleMessage(context.Background(), []byte("{not json")))
    require.ErrorContains(t, c.handleMessage(context.Background(), body(t, ListingEvent{Type: "other"})), "unknown event type")
    require.ErrorContains(t, c.handleMessage(context.Background(),
        body(t, ListingEvent{Type: EventListingPurchased, DonationID: 1})), "db down")
}

func TestRun_StopsOnCancel(t *testing.T) {
    c := NewConsumer("amqp://127.0.0.1:1/", t.TempDir(), &fakeMarker{}, zerolog.Nop())
    ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
    defer cancel()
    err := c.Run(ctx)
    require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNopPublisher(t *testing.T) {
    require.NoError(t, NopPublisher{}.Publish(context.Background(), ListingEvent{}))
}

func TestNewConsumer_PanicsOnNilMarker(t *testing.T) {
    require.Panics(t, func() { NewConsumer("", "", nil, zerolog.Nop()) })
}
