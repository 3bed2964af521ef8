// Package events announces marketplace activity to downstream consumers.
// Delivery is best effort: callers log failures and carry on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type MessageCreated struct {
	ChatID      uint      `json:"chat_id"`
	MessageID   uint      `json:"message_id"`
	SenderID    uint      `json:"sender_id"`
	RecipientID uint      `json:"recipient_id"`
	Message     string    `json:"message"`
	NewThread   bool      `json:"new_thread"`
	CreatedAt   time.Time `json:"created_at"`
}

type LawyerRegistered struct {
	LawyerID   uint      `json:"lawyer_id"`
	FirebaseID string    `json:"firebase_id"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
}

type Publisher interface {
	MessageCreated(ctx context.Context, e MessageCreated) error
	LawyerRegistered(ctx context.Context, e LawyerRegistered) error
}

type Topics struct {
	Messages string
	Lawyers  string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DefaultPublishTimeout caps how long a request waits on the broker.
const DefaultPublishTimeout = 2 * time.Second

type KafkaPublisher struct {
	writer  messageWriter
	topics  Topics
	timeout time.Duration
}

func NewKafkaPublisher(brokers []string, topics Topics, timeout time.Duration) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           timeout,
		MaxAttempts:            3,
	}, topics, timeout)
}

func newKafkaPublisher(w messageWriter, topics Topics, timeout time.Duration) *KafkaPublisher {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &KafkaPublisher{writer: w, topics: topics, timeout: timeout}
}

// MessageCreated is keyed by chat so a thread's events stay ordered within
// one partition.
func (p *KafkaPublisher) MessageCreated(ctx context.Context, e MessageCreated) error {
	return p.publish(ctx, p.topics.Messages, strconv.FormatUint(uint64(e.ChatID), 10), e)
}

func (p *KafkaPublisher) LawyerRegistered(ctx context.Context, e LawyerRegistered) error {
	return p.publish(ctx, p.topics.Lawyers, strconv.FormatUint(uint64(e.LawyerID), 10), e)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, key string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}
	// The change is already committed, so a client hanging up does not cancel
	// the event, but a stalled broker only holds the request for p.timeout.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafka.Message{Topic: topic, Key: []byte(key), Value: b}); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Noop drops every event.
type Noop struct{}

func (Noop) MessageCreated(context.Context, MessageCreated) error { return nil }
func (Noop) LawyerRegistered(context.Context, LawyerRegistered) error { return nil }

// Recorder keeps events in memory, for tests and local runs.
type Recorder struct {
	mu       sync.Mutex
	Messages []MessageCreated
	Lawyers  []LawyerRegistered
}

func (r *Recorder) MessageCreated(_ context.Context, e MessageCreated) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, e)
	return nil
}

func (r *Recorder) LawyerRegistered(_ context.Context, e LawyerRegistered) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Lawyers = append(r.Lawyers, e)
	return nil
}

func (r *Recorder) MessageEvents() []MessageCreated {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]MessageCreated{}, r.Messages...)
}

func (r *Recorder) LawyerEvents() []LawyerRegistered {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]LawyerRegistered{}, r.Lawyers...)
}
