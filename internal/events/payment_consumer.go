package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/hostelhub/service-booking/internal/kafka"
)

// AdvancePaymentRecorder records a completed advance payment on a booking;
// satisfied by *application.BookingService.
type AdvancePaymentRecorder interface {
	RecordAdvancePayment(ctx context.Context, bookingID uuid.UUID) error
}

// PaymentEventConsumer listens to payment events and records advance payments
// on their bookings, confirming them when the rest of the preconditions hold.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  AdvancePaymentRecorder
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service AdvancePaymentRecorder,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case PaymentAdvanceCompleted:
		return c.handleAdvanceCompleted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handleAdvanceCompleted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt AdvancePaymentCompletedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse AdvancePaymentCompletedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing advance payment completed event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
	)

	if err := c.service.RecordAdvancePayment(ctx, evt.BookingID); err != nil {
		c.logger.Error("failed to record advance payment",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("advance payment recorded",
		zap.String("booking_id", evt.BookingID.String()),
	)
	return nil
}
