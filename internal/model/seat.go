package model

import "time"

// Seat statuses stored in seats.status.
const (
    SeatAvailable = "available"
    SeatReserved  = "reserved"
)

// CellBlocked marks a grid coordinate that has no seat row.  It is a
// rendering state only and is never written to the store.
const CellBlocked = "blocked"

// Seat is a single cell of an event's seating grid.  The four
// Reserved* fields are set together with Status=reserved and cleared
// together when the seat becomes available again.
//
// Fields:
//  ID              – primary key identifier.
//  EventID         – Open Day the seat belongs to.
//  RowNum, ColNum  – 1-based grid coordinates, unique per event.
//  SeatNumber      – display label (e.g. "A1").
//  Status          – available | reserved.
//  ReservedName    – visitor name while reserved.
//  ReservedSurname – visitor surname while reserved.
//  ReservedPhone   – visitor phone while reserved.
//  ReservedAt      – server time of the reservation.
type Seat struct {
    ID              uint64     `json:"id"`               // seats.id
    EventID         uint64     `json:"event_id"`         // seats.event_id
    RowNum          int        `json:"row_num"`          // seats.row_num
    ColNum          int        `json:"col_num"`          // seats.col_num
    SeatNumber      string     `json:"seat_number"`      // seats.seat_number
    Status          string     `json:"status"`           // seats.status
    ReservedName    *string    `json:"reserved_name"`    // seats.reserved_name (nullable)
    ReservedSurname *string    `json:"reserved_surname"` // seats.reserved_surname (nullable)
    ReservedPhone   *string    `json:"reserved_phone"`   // seats.reserved_phone (nullable)
    ReservedAt      *time.Time `json:"reserved_at"`      // seats.reserved_at (nullable)
}

// IsConsistent reports whether the reservation fields agree with Status:
// a reserved seat carries all four fields, an available seat none.
func (s Seat) IsConsistent() bool {
    set := s.ReservedName != nil && s.ReservedSurname != nil && s.ReservedPhone != nil && s.ReservedAt != nil
    unset := s.ReservedName == nil && s.ReservedSurname == nil && s.ReservedPhone == nil && s.ReservedAt == nil
    switch s.Status {
    case SeatReserved:
        return set
    case SeatAvailable:
        return unset
    }
    return false
}

// Reservation is the contact tuple bound to a seat while it is reserved.
type Reservation struct {
    Name       string
    Surname    string
    Phone      string
    ReservedAt time.Time
}
