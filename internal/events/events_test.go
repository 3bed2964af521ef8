package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisherRoutesByTopic(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, Topics{Messages: "chat.message.created", Lawyers: "lawyer.registered"}, 0)
	ctx := context.Background()

	require.NoError(t, p.MessageCreated(ctx, MessageCreated{ChatID: 12, MessageID: 3, SenderID: 1, RecipientID: 2, Message: "hi", NewThread: true}))
	require.NoError(t, p.LawyerRegistered(ctx, LawyerRegistered{LawyerID: 2, Email: "law@example.com"}))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "chat.message.created", w.msgs[0].Topic)
	assert.Equal(t, "12", string(w.msgs[0].Key))
	var got MessageCreated
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "hi", got.Message)
	assert.True(t, got.NewThread)

	assert.Equal(t, "lawyer.registered", w.msgs[1].Topic)
	assert.Equal(t, "2", string(w.msgs[1].Key))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherWrapsWriteErrors(t *testing.T) {
	boom := errors.New("broker down")
	p := newKafkaPublisher(&fakeWriter{err: boom}, Topics{Messages: "m"}, 0)

	err := p.MessageCreated(context.Background(), MessageCreated{ChatID: 1})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "publish m event")
}

// stalledWriter never hears back from the broker.
type stalledWriter struct{ fakeWriter }

func (w *stalledWriter) WriteMessages(ctx context.Context, _ ...kafka.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestKafkaPublisherGivesUpOnStalledBroker(t *testing.T) {
	p := newKafkaPublisher(&stalledWriter{}, Topics{Messages: "m"}, 50*time.Millisecond)

	start := time.Now()
	err := p.MessageCreated(context.Background(), MessageCreated{ChatID: 1})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestKafkaPublisherOutlivesCanceledRequest(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, Topics{Messages: "m"}, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.MessageCreated(ctx, MessageCreated{ChatID: 1}))
	assert.Len(t, w.msgs, 1)
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	_ = r.MessageCreated(context.Background(), MessageCreated{ChatID: 1})
	_ = r.LawyerRegistered(context.Background(), LawyerRegistered{LawyerID: 5})
	assert.Len(t, r.MessageEvents(), 1)
	assert.Equal(t, uint(5), r.LawyerEvents()[0].LawyerID)
}
