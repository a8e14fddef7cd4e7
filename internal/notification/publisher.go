package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/pkg/kafka"
	"github.com/vavepl/marketplace-backend/pkg/logger"
	"github.com/vavepl/marketplace-backend/pkg/retry"
	"go.uber.org/zap"
)

// Message types carried on the notification topic. Downstream push/SMS
// workers fan the messages out to devices; this service only publishes.
const (
	TypeEventCanceled        = "event.canceled"
	TypeEventClosed          = "event.closed"
	TypeBookingStatusChanged = "booking.status_changed"
	TypeRefundIssued         = "refund.issued"
)

// Envelope is the wire format published to the notification topic
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Publisher emits fire-and-forget notification commands. Delivery failures
// are logged, never propagated; business operations do not depend on them.
type Publisher interface {
	EventCanceled(ctx context.Context, event *domain.Event)
	EventClosed(ctx context.Context, event *domain.Event)
	BookingStatusChanged(ctx context.Context, booking *domain.UserEvent)
	RefundIssued(ctx context.Context, companyID string, amount int)
	Close() error
}

// KafkaPublisher implements Publisher on a Kafka topic
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaPublisher creates a new KafkaPublisher
func NewKafkaPublisher(producer *kafka.Producer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = "marketplace-notifications"
	}
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
	}
}

func (p *KafkaPublisher) EventCanceled(ctx context.Context, event *domain.Event) {
	p.publish(ctx, TypeEventCanceled, event.ID, map[string]interface{}{
		"event_id":   event.ID,
		"company_id": event.CompanyID,
		"comment":    event.CancelComment,
	})
}

func (p *KafkaPublisher) EventClosed(ctx context.Context, event *domain.Event) {
	p.publish(ctx, TypeEventClosed, event.ID, map[string]interface{}{
		"event_id":   event.ID,
		"company_id": event.CompanyID,
	})
}

func (p *KafkaPublisher) BookingStatusChanged(ctx context.Context, booking *domain.UserEvent) {
	p.publish(ctx, TypeBookingStatusChanged, booking.EventID, map[string]interface{}{
		"booking_id": booking.ID,
		"event_id":   booking.EventID,
		"user_id":    booking.UserID,
		"status":     string(booking.Status),
	})
}

func (p *KafkaPublisher) RefundIssued(ctx context.Context, companyID string, amount int) {
	p.publish(ctx, TypeRefundIssued, companyID, map[string]interface{}{
		"company_id": companyID,
		"amount":     amount,
	})
}

func (p *KafkaPublisher) Close() error {
	p.producer.Close()
	return nil
}

// publishRetry bounds the delivery attempts per notification. Short and
// aggressive; a broker outage falls through to the warn log instead of
// stalling the request path.
var publishRetry = &retry.Config{
	MaxRetries:      2,
	InitialInterval: 100 * time.Millisecond,
	MaxInterval:     500 * time.Millisecond,
	Multiplier:      2.0,
	JitterFactor:    0.1,
}

func (p *KafkaPublisher) publish(ctx context.Context, msgType, key string, payload interface{}) {
	envelope := Envelope{
		ID:         uuid.New().String(),
		Type:       msgType,
		OccurredAt: time.Now(),
		Payload:    payload,
	}

	result := retry.Do(ctx, publishRetry, func(ctx context.Context) error {
		return p.producer.ProduceJSON(ctx, p.topic, key, envelope)
	})
	if result.Err != nil {
		logger.Get().Warn("failed to publish notification",
			zap.String("type", msgType),
			zap.String("key", key),
			zap.Int("attempts", result.Attempts),
			zap.Error(result.LastError),
		)
	}
}

// NoOpPublisher is a Publisher that does nothing, used when Kafka is
// unavailable and in tests
type NoOpPublisher struct{}

// NewNoOpPublisher creates a new NoOpPublisher
func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

func (p *NoOpPublisher) EventCanceled(ctx context.Context, event *domain.Event)           {}
func (p *NoOpPublisher) EventClosed(ctx context.Context, event *domain.Event)             {}
func (p *NoOpPublisher) BookingStatusChanged(ctx context.Context, booking *domain.UserEvent) {}
func (p *NoOpPublisher) RefundIssued(ctx context.Context, companyID string, amount int)   {}
func (p *NoOpPublisher) Close() error                                                     { return nil }
