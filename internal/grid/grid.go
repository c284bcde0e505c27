// Package grid turns settings and a seat list into the R×C layout shown
// to visitors, and tracks when a polled seat list actually changed.
package grid

import (
	"bytes"
	"encoding/json"

	"github.com/iliyamo/openday-seat-reservation/internal/model"
)

// Cell is one grid coordinate. State is available, reserved or blocked;
// SeatID and Label are empty for blocked cells.
type Cell struct {
	Row    int     `json:"row"`
	Col    int     `json:"col"`
	State  string  `json:"state"`
	SeatID *uint64 `json:"seat_id,omitempty"`
	Label  string  `json:"label"`
}

// Layout is the rendered grid, row-major.
type Layout struct {
	Rows  int      `json:"rows"`
	Cols  int      `json:"cols"`
	Cells [][]Cell `json:"cells"`
}

// Build lays out rows×cols cells. Each cell takes the status of the seat
// at its coordinate, or blocked when there is none. Seats outside the
// grid are ignored; non-positive dimensions give an empty layout.
func Build(rows, cols int, seats []model.Seat) Layout {
	if rows <= 0 || cols <= 0 {
		return Layout{Rows: 0, Cols: 0, Cells: [][]Cell{}}
	}
	type pos struct{ r, c int }
	byPos := make(map[pos]model.Seat, len(seats))
	for _, s := range seats {
		if _, dup := byPos[pos{s.RowNum, s.ColNum}]; !dup {
			byPos[pos{s.RowNum, s.ColNum}] = s
		}
	}

	cells := make([][]Cell, rows)
	for r := 1; r <= rows; r++ {
		row := make([]Cell, cols)
		for c := 1; c <= cols; c++ {
			cell := Cell{Row: r, Col: c, State: model.CellBlocked, Label: "-"}
			if s, ok := byPos[pos{r, c}]; ok {
				id := s.ID
				cell.State = s.Status
				cell.SeatID = &id
				cell.Label = s.SeatNumber
			}
			row[c-1] = cell
		}
		cells[r-1] = row
	}
	return Layout{Rows: rows, Cols: cols, Cells: cells}
}

// Count returns how many cells are in the given state.
func (l Layout) Count(state string) int {
	n := 0
	for _, row := range l.Cells {
		for _, c := range row {
			if c.State == state {
				n++
			}
		}
	}
	return n
}

// Tracker remembers the last observed seat list. It is the explicit
// client state of a poller: one Tracker per watched event.
type Tracker struct {
	last []byte
	seen bool
}

// Observe serialises seats and compares them with the previous
// snapshot. It returns true on the first call and whenever anything in
// the list differs.
func (t *Tracker) Observe(seats []model.Seat) (bool, error) {
	cur, err := json.Marshal(seats)
	if err != nil {
		return false, err
	}
	if t.seen && bytes.Equal(cur, t.last) {
		return false, nil
	}
	t.last, t.seen = cur, true
	return true, nil
}

// Reset forgets the snapshot so the next Observe reports a change.
func (t *Tracker) Reset() {
	t.last, t.seen = nil, false
}
