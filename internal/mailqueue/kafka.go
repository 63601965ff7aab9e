package mailqueue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"seatsnag/pkg/kafka"
	"seatsnag/pkg/model"
)

const (
	EventTypeMailRequested = "mail.requested"
	schemaVersion          = "1"
	source                 = "seatsnag"
)

type publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaEnqueuer publishes each mail as a JSON event keyed by its first
// recipient.
type KafkaEnqueuer struct {
	producer publisher
	topic    string
	now      func() time.Time
}

func NewKafkaEnqueuer(producer publisher, topic string) *KafkaEnqueuer {
	return &KafkaEnqueuer{producer: producer, topic: topic, now: time.Now}
}

func (e *KafkaEnqueuer) Enqueue(ctx context.Context, m model.Mail) error {
	if len(m.To) == 0 {
		return fmt.Errorf("%w: no recipients", ErrInvalidMail)
	}
	m.CreatedAt = e.now().UTC()

	msg, err := kafka.NewMessage().
		WithKey(strings.ToLower(m.To[0])).
		WithValue(m).
		WithEventType(EventTypeMailRequested).
		WithSchemaVersion(schemaVersion).
		WithSource(source).
		Build()
	if err != nil {
		return err
	}
	msg.Topic = e.topic

	if err := e.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish mail: %w", err)
	}
	return nil
}
