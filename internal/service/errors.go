package service

import "errors"

// Outcome errors of the reservation service. Validation failures are
// reported as *validation.Error; anything else is a raw store error.
var (
	// ErrSeatUnavailable: the conditional reserve matched no row. The
	// seat was taken first, belongs to another event or does not exist.
	ErrSeatUnavailable = errors.New("seat unavailable")

	// ErrReservationNotFound: no reserved seat matches the contact details.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrSettingsNotFound: the singleton settings row is missing.
	ErrSettingsNotFound = errors.New("settings not found")
)
