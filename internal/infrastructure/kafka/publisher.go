package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-mobile-verification/internal/domain"
	"github.com/go-mobile-verification/internal/pkg/id"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer is the subset of *kafka.Writer used by Publisher.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// OutboundSMS is the envelope consumed by the downstream SMS gateway.
type OutboundSMS struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher hands verification messages to an SMS gateway through a Kafka
// topic. Messages are keyed by phone number so sends to one number stay ordered.
type Publisher struct {
	writer Writer
	now    func() time.Time
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return NewPublisherWithWriter(&kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	})
}

func NewPublisherWithWriter(w Writer) *Publisher {
	return &Publisher{writer: w, now: time.Now}
}

func (p *Publisher) Send(ctx context.Context, phone domain.PhoneNumber, message string) error {
	env := OutboundSMS{
		ID:        id.New(),
		Phone:     phone.String(),
		Message:   message,
		CreatedAt: p.now().UTC(),
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode outbound sms: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(env.Phone),
		Value: value,
		Time:  env.CreatedAt,
	}); err != nil {
		return fmt.Errorf("publish outbound sms: %w", err)
	}
	return nil
}

// Close flushes pending messages and releases the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
