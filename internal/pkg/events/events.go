package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Domain event types
const (
	StudentCreated      = "student.created"
	AttendanceMarked    = "attendance.marked"
	NotificationCreated = "notification.created"
	PasswordReset       = "user.password_reset"
)

// Event is a domain event published after a successful write
type Event struct {
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurredAt"`
}

// New creates an event keyed by an entity ID
func New(eventType string, id int64, payload interface{}) Event {
	return Event{
		Type:       eventType,
		Key:        strconv.FormatInt(id, 10),
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher publishes domain events
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// KafkaConfig configures the Kafka publisher
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	ClientID     string
	WriteTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a single Kafka topic
type KafkaPublisher struct {
	writer messageWriter
	logger zerolog.Logger
}

// NewKafkaPublisher creates a publisher backed by a kafka.Writer
func NewKafkaPublisher(cfg KafkaConfig, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireAll,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
		Transport:              &kafka.Transport{ClientID: cfg.ClientID},
	}

	return &KafkaPublisher{writer: writer, logger: logger}
}

// Publish writes events; the event type travels as a header
func (p *KafkaPublisher) Publish(ctx context.Context, events ...Event) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		msg, err := encode(ev)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to publish %d events: %w", len(msgs), err)
	}

	p.logger.Debug().Int("count", len(msgs)).Str("type", events[0].Type).Msg("Events published")
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encode(ev Event) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode %s event: %w", ev.Type, err)
	}

	return kafka.Message{
		Key:     []byte(ev.Key),
		Value:   value,
		Time:    ev.OccurredAt,
		Headers: []kafka.Header{{Key: "event-type", Value: []byte(ev.Type)}},
	}, nil
}

// NoopPublisher discards events
type NoopPublisher struct{}

// Publish discards events
func (NoopPublisher) Publish(context.Context, ...Event) error { return nil }

// Close is a no-op
func (NoopPublisher) Close() error { return nil }

// Emit publishes events and logs failures instead of returning them
func Emit(ctx context.Context, p Publisher, logger zerolog.Logger, evs ...Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, evs...); err != nil {
		logger.Warn().Err(err).Msg("Failed to publish domain events")
	}
}
