package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaSinkDeliver(t *testing.T) {
	w := &fakeWriter{}
	sink := &KafkaSink{writer: w, topic: "room-booking.notifications.v1"}
	ev := NewEvent("evt-9", sampleNotification("booking-7"))

	require.NoError(t, sink.Deliver(context.Background(), ev))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "booking-7", string(msg.Key))
	assert.Equal(t, "evt-9", headerValue(msg.Headers, "event_id"))
	assert.Equal(t, "booking_confirmed", headerValue(msg.Headers, "event_type"))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, ev.BookingID, decoded.BookingID)
	assert.Equal(t, ev.BookingDate, decoded.BookingDate)
	assert.True(t, ev.OccurredAt.Equal(decoded.OccurredAt))

	require.NoError(t, sink.Close())
	assert.True(t, w.closed)
}

func TestKafkaSinkWrapsWriteError(t *testing.T) {
	sink := &KafkaSink{writer: &fakeWriter{err: errors.New("leader not available")}, topic: "t"}
	err := sink.Deliver(context.Background(), NewEvent("e", sampleNotification("b")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish to t")
}

func TestReadyCheckWithoutBrokers(t *testing.T) {
	assert.Error(t, ReadyCheck(nil)(context.Background()))
}

func headerValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
