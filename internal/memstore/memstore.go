// Package memstore is an in-process implementation of the settings and
// seat stores. It backs STORE_DRIVER=memory for local runs without
// MySQL and serves as the store in service and handler tests. Its mutex
// stands in for the row lock a relational store takes during the
// conditional reserve update.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/iliyamo/openday-seat-reservation/internal/model"
	"github.com/iliyamo/openday-seat-reservation/internal/repository"
)

// Store keeps settings and seats in memory.
type Store struct {
	mu       sync.Mutex
	settings *model.Settings
	seats    map[uint64]*model.Seat
	nextID   uint64
}

// New returns an empty store without a settings row.
func New() *Store {
	return &Store{seats: make(map[uint64]*model.Seat), nextID: 1}
}

// NewSeeded returns a store holding the default settings (rows x cols)
// and a full grid of available seats for every Open Day, mirroring the
// seed migrations.
func NewSeeded(rows, cols int) *Store {
	s := New()
	s.PutSettings(model.Settings{NumRows: rows, NumCols: cols})
	for _, ev := range model.OpenDays {
		for r := 1; r <= rows; r++ {
			for c := 1; c <= cols; c++ {
				s.AddSeat(model.Seat{
					EventID:    ev.ID,
					RowNum:     r,
					ColNum:     c,
					SeatNumber: fmt.Sprintf("%c%d", rune('A'+r-1), c),
				})
			}
		}
	}
	return s
}

// PutSettings stores the settings row.
func (s *Store) PutSettings(st model.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.ID = model.SettingsID
	s.settings = &st
}

// AddSeat provisions a seat and returns its id. A zero ID is assigned
// the next free id; an empty status defaults to available.
func (s *Store) AddSeat(seat model.Seat) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seat.ID == 0 {
		seat.ID = s.nextID
	}
	if seat.ID >= s.nextID {
		s.nextID = seat.ID + 1
	}
	if seat.Status == "" {
		seat.Status = model.SeatAvailable
	}
	cp := seat
	s.seats[seat.ID] = &cp
	return seat.ID
}

// Seat returns a copy of the seat with the given id.
func (s *Store) Seat(id uint64) (model.Seat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, ok := s.seats[id]
	if !ok {
		return model.Seat{}, false
	}
	return copySeat(seat), true
}

// Get implements service.SettingsStore.
func (s *Store) Get(ctx context.Context) (*model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return nil, repository.ErrSettingsNotFound
	}
	cp := *s.settings
	return &cp, nil
}

// Update implements service.SettingsStore. Like the SQL UPDATE it does
// nothing when the row is missing.
func (s *Store) Update(ctx context.Context, st model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		return nil
	}
	st.ID = model.SettingsID
	s.settings = &st
	return nil
}

// ListAll implements service.SeatStore.
func (s *Store) ListAll(ctx context.Context) ([]model.Seat, error) {
	return s.list(func(*model.Seat) bool { return true }), nil
}

// ListByEvent implements service.SeatStore.
func (s *Store) ListByEvent(ctx context.Context, eventID uint64) ([]model.Seat, error) {
	return s.list(func(seat *model.Seat) bool { return seat.EventID == eventID }), nil
}

// Reserve implements service.SeatStore with the same compare-and-set
// semantics as the SQL conditional update.
func (s *Store) Reserve(ctx context.Context, seatID uint64, eventID *uint64, res model.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, ok := s.seats[seatID]
	if !ok || seat.Status != model.SeatAvailable || (eventID != nil && seat.EventID != *eventID) {
		return repository.ErrConflict
	}
	name, surname, phone, at := res.Name, res.Surname, res.Phone, res.ReservedAt.UTC()
	seat.Status = model.SeatReserved
	seat.ReservedName, seat.ReservedSurname, seat.ReservedPhone, seat.ReservedAt = &name, &surname, &phone, &at
	return nil
}

// Release implements service.SeatStore. It reports a change only when
// the seat was reserved, matching MySQL's changed-rows count.
func (s *Store) Release(ctx context.Context, seatID uint64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, ok := s.seats[seatID]
	if !ok || seat.Status == model.SeatAvailable {
		return false, nil
	}
	seat.Status = model.SeatAvailable
	seat.ReservedName, seat.ReservedSurname, seat.ReservedPhone, seat.ReservedAt = nil, nil, nil, nil
	return true, nil
}

// ReleaseMatching implements service.SeatStore: the seat is cleared only
// while it is still reserved under the given contact details.
func (s *Store) ReleaseMatching(ctx context.Context, seatID uint64, name, surname, phone string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, ok := s.seats[seatID]
	if !ok || seat.Status != model.SeatReserved ||
		!eqPtr(seat.ReservedName, name) || !eqPtr(seat.ReservedSurname, surname) || !eqPtr(seat.ReservedPhone, phone) {
		return false, nil
	}
	seat.Status = model.SeatAvailable
	seat.ReservedName, seat.ReservedSurname, seat.ReservedPhone, seat.ReservedAt = nil, nil, nil, nil
	return true, nil
}

// FindReserved implements service.SeatStore. The lowest matching id wins.
func (s *Store) FindReserved(ctx context.Context, name, surname, phone string, eventID *uint64) (*model.Seat, error) {
	matches := s.list(func(seat *model.Seat) bool {
		return seat.Status == model.SeatReserved &&
			eqPtr(seat.ReservedName, name) && eqPtr(seat.ReservedSurname, surname) && eqPtr(seat.ReservedPhone, phone) &&
			(eventID == nil || seat.EventID == *eventID)
	})
	if len(matches) == 0 {
		return nil, repository.ErrSeatNotFound
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return &matches[0], nil
}

func (s *Store) list(keep func(*model.Seat) bool) []model.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Seat, 0, len(s.seats))
	for _, seat := range s.seats {
		if keep(seat) {
			out = append(out, copySeat(seat))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RowNum != out[j].RowNum {
			return out[i].RowNum < out[j].RowNum
		}
		if out[i].ColNum != out[j].ColNum {
			return out[i].ColNum < out[j].ColNum
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func copySeat(seat *model.Seat) model.Seat {
	cp := *seat
	if seat.ReservedName != nil {
		v := *seat.ReservedName
		cp.ReservedName = &v
	}
	if seat.ReservedSurname != nil {
		v := *seat.ReservedSurname
		cp.ReservedSurname = &v
	}
	if seat.ReservedPhone != nil {
		v := *seat.ReservedPhone
		cp.ReservedPhone = &v
	}
	if seat.ReservedAt != nil {
		v := *seat.ReservedAt
		cp.ReservedAt = &v
	}
	return cp
}

func eqPtr(p *string, v string) bool {
	return p != nil && *p == v
}
