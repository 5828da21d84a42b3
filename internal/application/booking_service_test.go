package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hostelhub/service-booking/internal/allocation"
	"github.com/hostelhub/service-booking/internal/auth"
	"github.com/hostelhub/service-booking/internal/domain"
	bookingDomain "github.com/hostelhub/service-booking/internal/domain/booking"
	"github.com/hostelhub/service-booking/internal/domain/inventory"
	"github.com/hostelhub/service-booking/internal/kafka"
)

// --- Fakes ---

type stubBookingRepo struct {
	mu            sync.Mutex
	bookings      map[uuid.UUID]*bookingDomain.Booking
	saveErr       error
	saveConflicts int
	updateErr     error
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *stubBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return bk, nil
}

func (r *stubBookingRepo) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, bk := range r.bookings {
		if bk.BookingNumber() == number {
			return bk, nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", number)
}

func (r *stubBookingRepo) FindByStudentID(ctx context.Context, studentID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.StudentID() == studentID {
			out = append(out, bk)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubBookingRepo) FindByHostelID(ctx context.Context, hostelID uuid.UUID, status bookingDomain.Status, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.HostelID() != hostelID {
			continue
		}
		if status != "" && bk.Status() != status {
			continue
		}
		out = append(out, bk)
	}
	return out, int64(len(out)), nil
}

func (r *stubBookingRepo) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		out = append(out, bk)
	}
	return out, int64(len(out)), nil
}

func (r *stubBookingRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func (r *stubBookingRepo) Save(ctx context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if r.saveConflicts > 0 {
		r.saveConflicts--
		return domain.NewConflictError("booking number already exists")
	}
	r.bookings[b.ID()] = b
	return nil
}

func (r *stubBookingRepo) Update(ctx context.Context, b *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	r.bookings[b.ID()] = b
	return nil
}

type stubInventoryRepo struct {
	mu          sync.Mutex
	hostels     map[uuid.UUID]*inventory.Hostel
	rooms       []*stubRoom
	releaseHook func(bedID uuid.UUID)
}

type stubRoom struct {
	id       uuid.UUID
	hostelID uuid.UUID
	number   int
	roomType inventory.RoomType
	beds     []*stubBed
}

type stubBed struct {
	id       uuid.UUID
	roomID   uuid.UUID
	number   int
	occupied bool
	occupant *uuid.UUID
}

func newStubInventoryRepo() *stubInventoryRepo {
	return &stubInventoryRepo{hostels: make(map[uuid.UUID]*inventory.Hostel)}
}

func (f *stubInventoryRepo) addHostel(ownerID uuid.UUID) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	now := time.Now().UTC()
	f.hostels[id] = inventory.ReconstructHostel(id, ownerID, "Test Hostel", "Pune", "", 1, now, now)
	return id
}

func (f *stubInventoryRepo) addRoom(hostelID uuid.UUID, number int, roomType inventory.RoomType, bedCount int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &stubRoom{id: uuid.New(), hostelID: hostelID, number: number, roomType: roomType}
	for i := 1; i <= bedCount; i++ {
		r.beds = append(r.beds, &stubBed{id: uuid.New(), roomID: r.id, number: i})
	}
	f.rooms = append(f.rooms, r)
}

func (f *stubInventoryRepo) freeBedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.rooms {
		for _, b := range r.beds {
			if !b.occupied {
				n++
			}
		}
	}
	return n
}

func (f *stubInventoryRepo) bedOccupant(bedID uuid.UUID) *uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rooms {
		for _, b := range r.beds {
			if b.id == bedID {
				return b.occupant
			}
		}
	}
	return nil
}

func (f *stubInventoryRepo) SaveHostel(ctx context.Context, h *inventory.Hostel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hostels[h.ID()] = h
	return nil
}

func (f *stubInventoryRepo) FindHostelByID(ctx context.Context, id uuid.UUID) (*inventory.Hostel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.hostels[id]
	if !ok {
		return nil, domain.NewNotFoundError("Hostel", id.String())
	}
	return h, nil
}

func (f *stubInventoryRepo) ListHostelsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*inventory.Hostel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*inventory.Hostel
	for _, h := range f.hostels {
		if h.IsOwnedBy(ownerID) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *stubInventoryRepo) SaveRoom(ctx context.Context, r *inventory.Room) error { return nil }

func (f *stubInventoryRepo) ListRoomsWithBeds(ctx context.Context, hostelID uuid.UUID) ([]*inventory.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rooms []*inventory.Room
	for _, r := range f.rooms {
		if r.hostelID != hostelID {
			continue
		}
		var beds []*inventory.Bed
		occupied := 0
		for _, b := range r.beds {
			beds = append(beds, inventory.ReconstructBed(b.id, b.roomID, b.number, b.occupied, b.occupant, time.Now()))
			if b.occupied {
				occupied++
			}
		}
		rooms = append(rooms, inventory.ReconstructRoom(r.id, r.hostelID, r.number, r.roomType, beds, occupied, time.Now(), time.Now()))
	}
	return rooms, nil
}

func (f *stubInventoryRepo) FindBedByID(ctx context.Context, id uuid.UUID) (*inventory.Bed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rooms {
		for _, b := range r.beds {
			if b.id == id {
				return inventory.ReconstructBed(b.id, b.roomID, b.number, b.occupied, b.occupant, time.Now()), nil
			}
		}
	}
	return nil, domain.NewNotFoundError("Bed", id.String())
}

func (f *stubInventoryRepo) OccupyBed(ctx context.Context, bedID, bookingID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rooms {
		for _, b := range r.beds {
			if b.id == bedID {
				if b.occupied {
					return false, nil
				}
				b.occupied = true
				b.occupant = &bookingID
				return true, nil
			}
		}
	}
	return false, domain.NewNotFoundError("Bed", bedID.String())
}

func (f *stubInventoryRepo) ReleaseBed(ctx context.Context, bedID uuid.UUID) (bool, error) {
	f.mu.Lock()
	for _, r := range f.rooms {
		for _, b := range r.beds {
			if b.id == bedID {
				if !b.occupied {
					f.mu.Unlock()
					return false, nil
				}
				b.occupied = false
				b.occupant = nil
				hook := f.releaseHook
				f.mu.Unlock()
				if hook != nil {
					hook(bedID)
				}
				return true, nil
			}
		}
	}
	f.mu.Unlock()
	return false, domain.NewNotFoundError("Bed", bedID.String())
}

type stubPaymentChecker struct {
	complete bool
	err      error
}

func (s *stubPaymentChecker) IsComplete(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	return s.complete, s.err
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
}

func (p *capturingPublisher) PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) typesSeen() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

// --- Fixture ---

type serviceFixture struct {
	svc       *BookingService
	bookings  *stubBookingRepo
	inventory *stubInventoryRepo
	payments  *stubPaymentChecker
	publisher *capturingPublisher
	ownerID   uuid.UUID
	studentID uuid.UUID
	hostelID  uuid.UUID
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	bookings := newStubBookingRepo()
	inv := newStubInventoryRepo()
	payments := &stubPaymentChecker{complete: true}
	publisher := &capturingPublisher{}

	ownerID := uuid.New()
	hostelID := inv.addHostel(ownerID)

	engine := allocation.NewEngine(inv, allocation.NewPreferredTypePolicy(), zap.NewNop())
	svc := NewBookingService(bookings, inv, engine, payments, publisher, nil, zap.NewNop())

	return &serviceFixture{
		svc:       svc,
		bookings:  bookings,
		inventory: inv,
		payments:  payments,
		publisher: publisher,
		ownerID:   ownerID,
		studentID: uuid.New(),
		hostelID:  hostelID,
	}
}

func (f *serviceFixture) submitRequest() SubmitBookingRequest {
	checkIn := time.Now().UTC().Add(7 * 24 * time.Hour)
	return SubmitBookingRequest{
		HostelID:  f.hostelID,
		RoomType:  string(inventory.RoomTypeDouble),
		CheckIn:   checkIn,
		CheckOut:  checkIn.Add(90 * 24 * time.Hour),
		Occupants: 1,
	}
}

func (f *serviceFixture) submitAndApprove(t *testing.T) *BookingDTO {
	t.Helper()
	ctx := context.Background()
	dto, err := f.svc.Submit(ctx, f.studentID, f.submitRequest())
	require.NoError(t, err)
	dto, err = f.svc.Approve(ctx, dto.ID, f.ownerID)
	require.NoError(t, err)
	return dto
}

// --- Tests ---

func TestSubmit(t *testing.T) {
	f := newServiceFixture(t)

	dto, err := f.svc.Submit(context.Background(), f.studentID, f.submitRequest())
	require.NoError(t, err)
	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, f.studentID, dto.StudentID)
	assert.Nil(t, dto.AllocatedBedID)
	assert.Contains(t, f.publisher.typesSeen(), "hostelhub.booking.submitted")
}

func TestSubmit_UnknownHostel(t *testing.T) {
	f := newServiceFixture(t)

	req := f.submitRequest()
	req.HostelID = uuid.New()
	_, err := f.svc.Submit(context.Background(), f.studentID, req)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestSubmit_RetriesBookingNumberCollision(t *testing.T) {
	f := newServiceFixture(t)
	f.bookings.saveConflicts = 2

	dto, err := f.svc.Submit(context.Background(), f.studentID, f.submitRequest())
	require.NoError(t, err)
	assert.Equal(t, "pending", dto.Status)

	// Persistent collisions eventually give up.
	f.bookings.saveConflicts = 5
	_, err = f.svc.Submit(context.Background(), f.studentID, f.submitRequest())
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestApprove_OnlyHostelOwner(t *testing.T) {
	f := newServiceFixture(t)
	dto, err := f.svc.Submit(context.Background(), f.studentID, f.submitRequest())
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), dto.ID, uuid.New())
	var authErr *domain.AuthorizationError
	require.ErrorAs(t, err, &authErr)

	approved, err := f.svc.Approve(context.Background(), dto.ID, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	assert.NotNil(t, approved.ApprovedAt)
}

func TestReject_RequiresReason(t *testing.T) {
	f := newServiceFixture(t)
	dto, err := f.svc.Submit(context.Background(), f.studentID, f.submitRequest())
	require.NoError(t, err)

	_, err = f.svc.Reject(context.Background(), dto.ID, f.ownerID, "")
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)

	rejected, err := f.svc.Reject(context.Background(), dto.ID, f.ownerID, "no vacancy this term")
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	assert.Equal(t, "no vacancy this term", rejected.RejectReason)
}

func TestConfirm_HappyPath(t *testing.T) {
	f := newServiceFixture(t)
	f.inventory.addRoom(f.hostelID, 1, inventory.RoomTypeDouble, 2)
	dto := f.submitAndApprove(t)

	confirmed, err := f.svc.Confirm(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Status)
	require.NotNil(t, confirmed.AllocatedBedID)
	require.NotNil(t, confirmed.AllocatedRoomID)
	assert.True(t, confirmed.AdvancePaid)

	// Exactly one bed is now held by this booking.
	assert.Equal(t, 1, f.inventory.freeBedCount())
	occupant := f.inventory.bedOccupant(*confirmed.AllocatedBedID)
	require.NotNil(t, occupant)
	assert.Equal(t, dto.ID, *occupant)

	types := f.publisher.typesSeen()
	assert.Contains(t, types, "hostelhub.allocation.bed_allocated")
	assert.Contains(t, types, "hostelhub.booking.confirmed")
}

func TestConfirm_PaymentIncomplete(t *testing.T) {
	f := newServiceFixture(t)
	f.inventory.addRoom(f.hostelID, 1, inventory.RoomTypeDouble, 2)
	f.payments.complete = false
	dto := f.submitAndApprove(t)

	_, err := f.svc.Confirm(context.Background(), dto.ID)
	var preErr *domain.PreconditionError
	require.ErrorAs(t, err, &preErr)

	// The booking stays approved and no bed was touched.
	current, err := f.svc.GetBooking(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", current.Status)
	assert.Equal(t, 2, f.inventory.freeBedCount())
}

func TestConfirm_NoCapacity(t *testing.T) {
	f := newServiceFixture(t)
	dto := f.submitAndApprove(t)

	_, err := f.svc.Confirm(context.Background(), dto.ID)
	var noCapacity *domain.NoCapacityError
	require.ErrorAs(t, err, &noCapacity)

	current, err := f.svc.GetBooking(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", current.Status)
}

func TestConfirm_NotApproved(t *testing.T) {
	f := newServiceFixture(t)
	f.inventory.addRoom(f.hostelID, 1, inventory.RoomTypeDouble, 2)
	dto, err := f.svc.Submit(context.Background(), f.studentID, f.submitRequest())
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), dto.ID)
	var stateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
}

func TestAllocateManually(t *testing.T) {
	f := newServiceFixture(t)
	f.inventory.addRoom(f.hostelID, 1, inventory.RoomTypeDouble, 2)
	dto := f.submitAndApprove(t)

	first, err := f.svc.AllocateManually(context.Background(), dto.ID, f.ownerID)
	require.NoError(t, err)
	require.NotNil(t, first.AllocatedBedID)
	assert.Equal(t, "approved", first.Status)
	assert.Equal(t, 1, f.inventory.freeBedCount())

	// Second call keeps the existing bed instead of taking another.
	second, err := f.svc.AllocateManually(context.Background(), dto.ID, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, *first.AllocatedBedID, *second.AllocatedBedID)
	assert.Equal(t, 1, f.inventory.freeBedCount())
}

func TestAllocateManually_RequiresPayment(t *testing.T) {
	f := newServiceFixture(t)
	f.inventory.addRoom(f.hostelID, 1, inventory.RoomTypeDouble, 2)
	f.payments.complete = false
	dto := f.submitAndApprove(t)

	_, err := f.svc.AllocateManually(context.Background(), dto.ID, f.ownerID)
	var preErr *domain.PreconditionError
	require.ErrorAs(t, err, &preErr)
	assert.Equal(t, 2, f.inventory.freeBedCount())
}

func TestAllocateManually_OnlyHostelOwner(t *testing.T) {
	f := newServiceFixture(t)
	f.inventory.addRoom(f.hostelID, 1, inventory.RoomTypeDouble, 2)
	dto := f.submitAndApprove(t)

	_, err := f.svc.AllocateManually(context.Background(), dto.ID, uuid.New())
	var authErr *domain.AuthorizationError
	require.ErrorAs(t, err, &authErr)
}

func TestCancel_ReleasesBed(t *testing.T) {
	f := newServiceFixture(t)
	f.inventory.addRoom(f.hostelID, 1, inventory.RoomTypeDouble, 2)
	dto := f.submitAndApprove(t)

	confirmed, err := f.svc.Confirm(context.Background(), dto.ID)
	require.NoError(t, err)
	require.NotNil(t, confirmed.AllocatedBedID)

	cancelled, err := f.svc.Cancel(context.Background(), dto.ID, f.studentID, auth.RoleStudent, "changed plans")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Nil(t, cancelled.AllocatedBedID)
	assert.Equal(t, 2, f.inventory.freeBedCount())
	assert.Contains(t, f.publisher.typesSeen(), "hostelhub.allocation.bed_released")

	// Terminal: a second cancellation is refused.
	_, err = f.svc.Cancel(context.Background(), dto.ID, f.studentID, auth.RoleStudent, "again")
	var stateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
}

func TestCancel_ByHostelOwner(t *testing.T) {
	f := newServiceFixture(t)
	dto := f.submitAndApprove(t)

	cancelled, err := f.svc.Cancel(context.Background(), dto.ID, f.ownerID, auth.RoleOwner, "renovation")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
}

func TestCancel_ByStranger(t *testing.T) {
	f := newServiceFixture(t)
	dto := f.submitAndApprove(t)

	_, err := f.svc.Cancel(context.Background(), dto.ID, uuid.New(), auth.RoleStudent, "nope")
	var authErr *domain.AuthorizationError
	require.ErrorAs(t, err, &authErr)
}

func TestCancel_ByStaff(t *testing.T) {
	f := newServiceFixture(t)
	dto := f.submitAndApprove(t)

	cancelled, err := f.svc.Cancel(context.Background(), dto.ID, uuid.New(), auth.RoleStaff, "policy breach")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
}

func TestCancel_ConflictRestoreLosesBed(t *testing.T) {
	f := newServiceFixture(t)
	f.inventory.addRoom(f.hostelID, 1, inventory.RoomTypeDouble, 2)
	dto := f.submitAndApprove(t)

	core, logs := observer.New(zap.ErrorLevel)
	engine := allocation.NewEngine(f.inventory, allocation.NewPreferredTypePolicy(), zap.NewNop())
	svc := NewBookingService(f.bookings, f.inventory, engine, f.payments, f.publisher, nil, zap.New(core))

	confirmed, err := svc.Confirm(context.Background(), dto.ID)
	require.NoError(t, err)
	bedID := *confirmed.AllocatedBedID

	// Another booking grabs the bed the moment it is freed, and the status
	// write then loses its race.
	intruder := uuid.New()
	f.inventory.releaseHook = func(id uuid.UUID) {
		_, _ = f.inventory.OccupyBed(context.Background(), id, intruder)
	}
	f.bookings.updateErr = domain.NewInvalidStateError("cancelled", "cancelled")

	_, err = svc.Cancel(context.Background(), dto.ID, f.studentID, auth.RoleStudent, "changed plans")
	var stateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &stateErr)

	// The failed restore must not be silent.
	entries := logs.FilterMessage("bed reoccupied by another booking during cancellation rollback").All()
	require.Len(t, entries, 1)
	occupant := f.inventory.bedOccupant(bedID)
	require.NotNil(t, occupant)
	assert.Equal(t, intruder, *occupant)
}

func TestRecordAdvancePayment_AutoConfirms(t *testing.T) {
	f := newServiceFixture(t)
	f.inventory.addRoom(f.hostelID, 1, inventory.RoomTypeDouble, 2)
	f.payments.complete = false // the push path must not depend on the pull checker
	dto := f.submitAndApprove(t)

	require.NoError(t, f.svc.RecordAdvancePayment(context.Background(), dto.ID))

	current, err := f.svc.GetBooking(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", current.Status)
	assert.True(t, current.AdvancePaid)
	require.NotNil(t, current.AllocatedBedID)
}

func TestRecordAdvancePayment_FullHostel(t *testing.T) {
	f := newServiceFixture(t)
	f.payments.complete = false
	dto := f.submitAndApprove(t)

	// No rooms exist, so auto-confirmation cannot allocate; the payment still
	// counts and the booking stays approved.
	require.NoError(t, f.svc.RecordAdvancePayment(context.Background(), dto.ID))

	current, err := f.svc.GetBooking(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", current.Status)
	assert.True(t, current.AdvancePaid)
}

func TestRecordAdvancePayment_TerminalBookingIgnored(t *testing.T) {
	f := newServiceFixture(t)
	dto, err := f.svc.Submit(context.Background(), f.studentID, f.submitRequest())
	require.NoError(t, err)
	_, err = f.svc.Reject(context.Background(), dto.ID, f.ownerID, "full")
	require.NoError(t, err)

	require.NoError(t, f.svc.RecordAdvancePayment(context.Background(), dto.ID))

	current, err := f.svc.GetBooking(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "rejected", current.Status)
	assert.False(t, current.AdvancePaid)
}

func TestConfirm_ConcurrentOverLastBed(t *testing.T) {
	f := newServiceFixture(t)
	f.inventory.addRoom(f.hostelID, 1, inventory.RoomTypeSingle, 1)

	first := f.submitAndApprove(t)
	second := f.submitAndApprove(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uuid.UUID{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.svc.Confirm(context.Background(), id)
		}(i, id)
	}
	wg.Wait()

	var confirmed, noCapacity int
	for _, err := range errs {
		if err == nil {
			confirmed++
			continue
		}
		var capErr *domain.NoCapacityError
		require.ErrorAs(t, err, &capErr)
		noCapacity++
	}
	assert.Equal(t, 1, confirmed, "exactly one booking wins the last bed")
	assert.Equal(t, 1, noCapacity)
	assert.Equal(t, 0, f.inventory.freeBedCount())
}

func TestGetHostelBookings_OnlyOwner(t *testing.T) {
	f := newServiceFixture(t)
	f.submitAndApprove(t)

	_, err := f.svc.GetHostelBookings(context.Background(), f.hostelID, uuid.New(), "", 1, 20)
	var authErr *domain.AuthorizationError
	require.ErrorAs(t, err, &authErr)

	result, err := f.svc.GetHostelBookings(context.Background(), f.hostelID, f.ownerID, bookingDomain.StatusApproved, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
}

func TestGetBookingStats(t *testing.T) {
	f := newServiceFixture(t)
	f.submitAndApprove(t)
	dto, err := f.svc.Submit(context.Background(), f.studentID, f.submitRequest())
	require.NoError(t, err)
	_, err = f.svc.Reject(context.Background(), dto.ID, f.ownerID, "full")
	require.NoError(t, err)

	stats, err := f.svc.GetBookingStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, int64(1), stats.ByStatus["approved"])
	assert.Equal(t, int64(1), stats.ByStatus["rejected"])
}
