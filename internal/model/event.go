package model

// Event is one of the scheduled Open Day sessions.  Each event owns
// its own seat grid.
type Event struct {
    ID    uint64 `json:"id"`    // events.id
    Label string `json:"label"` // events.label
}

// OpenDays is the fixed set of events served by the API.  The events
// table is seeded with the same rows so seats can reference them.
var OpenDays = []Event{
    {ID: 1, Label: "Open Day 1"},
    {ID: 2, Label: "Open Day 2"},
    {ID: 3, Label: "Open Day 3"},
    {ID: 4, Label: "Open Day 4"},
    {ID: 5, Label: "Open Day 5"},
    {ID: 6, Label: "Open Day 6"},
}

// FindEvent returns the Open Day with the given id.
func FindEvent(id uint64) (Event, bool) {
    for _, ev := range OpenDays {
        if ev.ID == id {
            return ev, true
        }
    }
    return Event{}, false
}
