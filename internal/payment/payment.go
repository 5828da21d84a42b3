// Package payment consumes the payment service's advance-payment status. The
// booking core never owns payment state; it only asks whether the advance
// payment for a booking has completed.
package payment

import (
	"context"

	"github.com/google/uuid"
)

// StatusChecker reports whether the advance payment for a booking completed.
type StatusChecker interface {
	IsComplete(ctx context.Context, bookingID uuid.UUID) (bool, error)
}
