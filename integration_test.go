//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelhub/service-booking/internal/domain"
	"github.com/hostelhub/service-booking/internal/events"
	"github.com/hostelhub/service-booking/internal/repository"
)

// TestConcurrentTransition_LoserGetsInvalidState verifies that when two
// transitions race on the same booking, the stale write fails as an
// illegal-state error instead of corrupting the row.
func TestConcurrentTransition_LoserGetsInvalidState(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	bookingID := uuid.New()
	ownerID := uuid.New()
	hostelID, _ := seedHostelWithBeds(t, infra.DB, ownerID, 1)
	seedApprovedBooking(t, infra.DB, bookingID, uuid.New(), hostelID)

	repo := repository.NewGormBookingRepository(infra.DB)
	ctx := context.Background()

	first, err := repo.FindByID(ctx, bookingID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, bookingID)
	require.NoError(t, err)

	require.NoError(t, first.Cancel("closing early"))
	first.IncrementVersion()
	require.NoError(t, repo.Update(ctx, first))

	// The second actor read the same version and acts on stale state.
	require.NoError(t, second.Cancel("duplicate request"))
	second.IncrementVersion()
	err = repo.Update(ctx, second)

	var stateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, "cancelled", stateErr.Current)
}

// TestAdvancePaymentCompleted_ConfirmsBooking verifies that when an
// AdvancePaymentCompletedEvent is published to payment.events, the booking
// service picks it up, allocates a bed, and transitions the approved booking
// to "confirmed".
func TestAdvancePaymentCompleted_ConfirmsBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	// Seed a hostel with free beds and a booking awaiting payment.
	bookingID := uuid.New()
	studentID := uuid.New()
	ownerID := uuid.New()
	hostelID, roomID := seedHostelWithBeds(t, infra.DB, ownerID, 2)
	seedApprovedBooking(t, infra.DB, bookingID, studentID, hostelID)

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	// Publish AdvancePaymentCompletedEvent.
	evt := events.AdvancePaymentCompletedEvent{
		PaymentID:  uuid.New(),
		BookingID:  bookingID,
		Amount:     500000,
		Currency:   "INR",
		OccurredAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, events.TopicPaymentEvents,
		"service-payment", events.PaymentAdvanceCompleted, evt)

	// Assert: booking transitions to "confirmed" with a bed allocated.
	model := waitForBookingStatus(t, infra.DB, bookingID, "confirmed", 20*time.Second)
	assert.True(t, model.AdvancePaid, "advance_paid should be recorded")
	require.NotNil(t, model.AllocatedBedID, "a bed should be allocated")
	require.NotNil(t, model.AllocatedRoomID)
	assert.Equal(t, roomID, *model.AllocatedRoomID)

	// Assert: the allocated bed is marked occupied by this booking.
	var bed repository.BedModel
	require.NoError(t, infra.DB.Where("id = ?", *model.AllocatedBedID).First(&bed).Error)
	assert.True(t, bed.Occupied)
	require.NotNil(t, bed.OccupantBookingID)
	assert.Equal(t, bookingID, *bed.OccupantBookingID)

	// Assert: the room's occupied count was incremented.
	var room repository.RoomModel
	require.NoError(t, infra.DB.Where("id = ?", roomID).First(&room).Error)
	assert.Equal(t, 1, room.OccupiedCount)

	// Assert: BookingConfirmedEvent on booking.events.
	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingConfirmed, 15*time.Second)

	var confirmed events.BookingConfirmedEvent
	require.NoError(t, ce.ParseData(&confirmed))
	assert.Equal(t, bookingID, confirmed.BookingID)
	assert.Equal(t, hostelID, confirmed.HostelID)
	assert.Equal(t, *model.AllocatedBedID, confirmed.BedID)
}
