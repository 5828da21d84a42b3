package booking

import (
	"time"

	"github.com/hostelhub/service-booking/internal/domain"
)

// StayDetails is an immutable value object describing the requested stay.
type StayDetails struct {
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Occupants int       `json:"occupants"`
}

// Validate checks the stay against the given current time. The check-in date
// may be today but never in the past, and check-out must be strictly after
// check-in.
func (s StayDetails) Validate(now time.Time) error {
	if s.CheckIn.IsZero() || s.CheckOut.IsZero() {
		return domain.NewValidationError("check-in and check-out dates are required")
	}
	today := now.UTC().Truncate(24 * time.Hour)
	if s.CheckIn.Before(today) {
		return domain.NewValidationError("check-in date is in the past")
	}
	if !s.CheckOut.After(s.CheckIn) {
		return domain.NewValidationError("check-out date must be after check-in date")
	}
	if s.Occupants < 1 {
		return domain.NewValidationError("at least one occupant is required")
	}
	return nil
}

// Nights returns the number of nights covered by the stay.
func (s StayDetails) Nights() int {
	return int(s.CheckOut.Sub(s.CheckIn).Hours() / 24)
}
