// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types carried in ReservationEvent.Type.
const (
    TypeSeatReserved  = "seat.reserved"
    TypeSeatCancelled = "seat.cancelled"
)

// Cancellation modes carried in ReservationEvent.Mode.
const (
    ModeByID      = "id"
    ModeByDetails = "details"
)

// ReservationEvent is published after a seat changes state. It carries
// enough information for downstream consumers to keep an audit trail
// without querying the primary database. Contact details are never
// included.
type ReservationEvent struct {
    ID         string `json:"id"`
    Type       string `json:"type"`
    SeatID     uint64 `json:"seat_id"`
    EventID    uint64 `json:"event_id,omitempty"`
    SeatNumber string `json:"seat_number,omitempty"`
    Mode       string `json:"mode,omitempty"`
    OccurredAt string `json:"occurred_at"`
}
