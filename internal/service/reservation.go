// Package service implements the reservation rules on top of the seat
// and settings stores. Single occupancy of a seat is delegated to the
// store's conditional update; this package holds no locks and no
// shared mutable state beyond its collaborators.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/openday-seat-reservation/internal/logging"
	"github.com/iliyamo/openday-seat-reservation/internal/metrics"
	"github.com/iliyamo/openday-seat-reservation/internal/model"
	"github.com/iliyamo/openday-seat-reservation/internal/queue"
	"github.com/iliyamo/openday-seat-reservation/internal/repository"
	"github.com/iliyamo/openday-seat-reservation/internal/validation"
)

// SettingsStore persists the singleton settings row.
type SettingsStore interface {
	Get(ctx context.Context) (*model.Settings, error)
	Update(ctx context.Context, s model.Settings) error
}

// SeatStore persists seats and performs the atomic reserve/release writes.
type SeatStore interface {
	ListAll(ctx context.Context) ([]model.Seat, error)
	ListByEvent(ctx context.Context, eventID uint64) ([]model.Seat, error)
	Reserve(ctx context.Context, seatID uint64, eventID *uint64, res model.Reservation) error
	Release(ctx context.Context, seatID uint64) (bool, error)
	ReleaseMatching(ctx context.Context, seatID uint64, name, surname, phone string) (bool, error)
	FindReserved(ctx context.Context, name, surname, phone string, eventID *uint64) (*model.Seat, error)
}

// EventPublisher delivers reservation events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// ReserveInput is the payload of a reserve request. EventID, when set,
// additionally scopes the conditional write to that event.
type ReserveInput struct {
	SeatID  uint64  `json:"seat_id" validate:"required"`
	EventID *uint64 `json:"-"`
	Name    string  `json:"name" validate:"required"`
	Surname string  `json:"surname" validate:"required"`
	Phone   string  `json:"phone" validate:"required"`
}

// CancelInput is the payload of a cancel-by-details request.
type CancelInput struct {
	Name    string  `json:"name" validate:"required"`
	Surname string  `json:"surname" validate:"required"`
	Phone   string  `json:"phone" validate:"required"`
	EventID *uint64 `json:"event_id"`
}

// publishTimeout bounds a single broker publish.
const publishTimeout = 5 * time.Second

// ReservationService exposes the settings, listing, reserve and cancel
// operations used by the HTTP layer.
type ReservationService struct {
	settings  SettingsStore
	seats     SeatStore
	publisher EventPublisher
	now       func() time.Time
	pending   sync.WaitGroup
}

// Option customises a ReservationService.
type Option func(*ReservationService)

// WithPublisher publishes a ReservationEvent after every state change.
func WithPublisher(p EventPublisher) Option {
	return func(s *ReservationService) { s.publisher = p }
}

// WithClock overrides the clock used for reserved_at.
func WithClock(now func() time.Time) Option {
	return func(s *ReservationService) { s.now = now }
}

// NewReservationService wires the service to its stores. Both stores
// must be non-nil.
func NewReservationService(settings SettingsStore, seats SeatStore, opts ...Option) *ReservationService {
	if settings == nil || seats == nil {
		panic("nil store passed to NewReservationService")
	}
	s := &ReservationService{settings: settings, seats: seats, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the singleton settings row.
func (s *ReservationService) Settings(ctx context.Context) (*model.Settings, error) {
	st, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}
	return st, nil
}

// UpdateSettings overwrites the settings row as given. No bounds are
// enforced on the grid dimensions.
func (s *ReservationService) UpdateSettings(ctx context.Context, in model.Settings) error {
	in.ID = model.SettingsID
	if err := s.settings.Update(ctx, in); err != nil {
		return err
	}
	logging.Info().Int("num_rows", in.NumRows).Int("num_cols", in.NumCols).Msg("settings updated")
	return nil
}

// Events returns the fixed Open Day list.
func (s *ReservationService) Events() []model.Event {
	out := make([]model.Event, len(model.OpenDays))
	copy(out, model.OpenDays)
	return out
}

// ListSeats returns every seat ordered by row then column.
func (s *ReservationService) ListSeats(ctx context.Context) ([]model.Seat, error) {
	return s.seats.ListAll(ctx)
}

// ListSeatsByEvent returns the seats of one event ordered by row then column.
func (s *ReservationService) ListSeatsByEvent(ctx context.Context, eventID uint64) ([]model.Seat, error) {
	return s.seats.ListByEvent(ctx, eventID)
}

// Reserve moves one seat from available to reserved. Inputs are trimmed
// and validated before the store is touched; the write itself is a
// single compare-and-set on status, so of any number of concurrent
// callers for the same seat exactly one succeeds and the others get
// ErrSeatUnavailable.
func (s *ReservationService) Reserve(ctx context.Context, in ReserveInput) error {
	validation.TrimAll(&in.Name, &in.Surname, &in.Phone)
	if err := validation.Struct(in); err != nil {
		metrics.SeatReservations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return err
	}

	res := model.Reservation{
		Name:       in.Name,
		Surname:    in.Surname,
		Phone:      in.Phone,
		ReservedAt: s.now().UTC(),
	}
	if err := s.seats.Reserve(ctx, in.SeatID, in.EventID, res); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			metrics.SeatReservations.WithLabelValues(metrics.OutcomeConflict).Inc()
			logging.Debug().Uint64("seat_id", in.SeatID).Msg("reserve lost: seat unavailable")
			return fmt.Errorf("%w: seat %d", ErrSeatUnavailable, in.SeatID)
		}
		metrics.SeatReservations.WithLabelValues(metrics.OutcomeError).Inc()
		return err
	}

	metrics.SeatReservations.WithLabelValues(metrics.OutcomeSuccess).Inc()
	logging.Info().Uint64("seat_id", in.SeatID).Msg("seat reserved")

	ev := queue.ReservationEvent{Type: queue.TypeSeatReserved, SeatID: in.SeatID}
	if in.EventID != nil {
		ev.EventID = *in.EventID
	}
	s.publish(ev)
	return nil
}

// CancelByID clears the reservation of a seat whatever its status. The
// result reports whether a row actually changed.
func (s *ReservationService) CancelByID(ctx context.Context, seatID uint64) (bool, error) {
	changed, err := s.seats.Release(ctx, seatID)
	if err != nil {
		metrics.SeatCancellations.WithLabelValues(queue.ModeByID, metrics.OutcomeError).Inc()
		return false, err
	}
	if !changed {
		metrics.SeatCancellations.WithLabelValues(queue.ModeByID, metrics.OutcomeNoop).Inc()
		return false, nil
	}
	metrics.SeatCancellations.WithLabelValues(queue.ModeByID, metrics.OutcomeSuccess).Inc()
	logging.Info().Uint64("seat_id", seatID).Msg("reservation cancelled by id")
	s.publish(queue.ReservationEvent{Type: queue.TypeSeatCancelled, SeatID: seatID, Mode: queue.ModeByID})
	return true, nil
}

// CancelByDetails finds the first reserved seat whose contact fields
// match (optionally within one event) and releases it. When several
// seats match, the store's first row wins. The release is conditional on
// the same details, so a seat that changed hands after the lookup is
// reported as ErrReservationNotFound and left untouched.
func (s *ReservationService) CancelByDetails(ctx context.Context, in CancelInput) (*model.Seat, error) {
	validation.TrimAll(&in.Name, &in.Surname, &in.Phone)
	if err := validation.Struct(in); err != nil {
		metrics.SeatCancellations.WithLabelValues(queue.ModeByDetails, metrics.OutcomeInvalid).Inc()
		return nil, err
	}

	seat, err := s.seats.FindReserved(ctx, in.Name, in.Surname, in.Phone, in.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			metrics.SeatCancellations.WithLabelValues(queue.ModeByDetails, metrics.OutcomeNotFound).Inc()
			return nil, ErrReservationNotFound
		}
		metrics.SeatCancellations.WithLabelValues(queue.ModeByDetails, metrics.OutcomeError).Inc()
		return nil, err
	}

	// The seat may have been released and taken by someone else since
	// the lookup; the conditional release leaves it alone in that case.
	changed, err := s.seats.ReleaseMatching(ctx, seat.ID, in.Name, in.Surname, in.Phone)
	if err != nil {
		metrics.SeatCancellations.WithLabelValues(queue.ModeByDetails, metrics.OutcomeError).Inc()
		return nil, err
	}
	if !changed {
		metrics.SeatCancellations.WithLabelValues(queue.ModeByDetails, metrics.OutcomeNotFound).Inc()
		return nil, ErrReservationNotFound
	}
	metrics.SeatCancellations.WithLabelValues(queue.ModeByDetails, metrics.OutcomeSuccess).Inc()
	logging.Info().Uint64("seat_id", seat.ID).Uint64("event_id", seat.EventID).Msg("reservation cancelled by details")

	s.publish(queue.ReservationEvent{
		Type:       queue.TypeSeatCancelled,
		SeatID:     seat.ID,
		EventID:    seat.EventID,
		SeatNumber: seat.SeatNumber,
		Mode:       queue.ModeByDetails,
	})
	return seat, nil
}

// Wait blocks until all in-flight event publishes have finished.
func (s *ReservationService) Wait() {
	s.pending.Wait()
}

// publish sends ev in the background; failures are logged and counted
// but never reach the caller.
func (s *ReservationService) publish(ev queue.ReservationEvent) {
	if s.publisher == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.OccurredAt = s.now().UTC().Format(time.RFC3339)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, ev); err != nil {
			metrics.EventPublishFailures.Inc()
			logging.Warn().Err(err).Str("type", ev.Type).Uint64("seat_id", ev.SeatID).Msg("reservation event not published")
		}
	}()
}
