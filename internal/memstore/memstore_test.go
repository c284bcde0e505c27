package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/openday-seat-reservation/internal/model"
	"github.com/iliyamo/openday-seat-reservation/internal/repository"
)

func TestListByEvent_OrdersByRowThenCol(t *testing.T) {
	s := New()
	s.AddSeat(model.Seat{ID: 9, EventID: 1, RowNum: 2, ColNum: 1})
	s.AddSeat(model.Seat{ID: 3, EventID: 1, RowNum: 1, ColNum: 2})
	s.AddSeat(model.Seat{ID: 5, EventID: 1, RowNum: 1, ColNum: 1})
	s.AddSeat(model.Seat{ID: 1, EventID: 2, RowNum: 1, ColNum: 1})

	seats, err := s.ListByEvent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, seats, 3)
	assert.Equal(t, []uint64{5, 3, 9}, []uint64{seats[0].ID, seats[1].ID, seats[2].ID})

	empty, err := s.ListByEvent(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestReserve_CompareAndSet(t *testing.T) {
	s := New()
	id := s.AddSeat(model.Seat{EventID: 1, RowNum: 1, ColNum: 1})
	res := model.Reservation{Name: "Ada", Surname: "Lovelace", Phone: "1", ReservedAt: time.Now()}

	ev := uint64(2)
	assert.ErrorIs(t, s.Reserve(context.Background(), id, &ev, res), repository.ErrConflict)
	require.NoError(t, s.Reserve(context.Background(), id, nil, res))
	assert.ErrorIs(t, s.Reserve(context.Background(), id, nil, res), repository.ErrConflict)
	assert.ErrorIs(t, s.Reserve(context.Background(), 999, nil, res), repository.ErrConflict)

	seat, ok := s.Seat(id)
	require.True(t, ok)
	assert.True(t, seat.IsConsistent())
	assert.Equal(t, model.SeatReserved, seat.Status)
}

func TestRelease_ReportsChange(t *testing.T) {
	s := New()
	id := s.AddSeat(model.Seat{EventID: 1, RowNum: 1, ColNum: 1})
	require.NoError(t, s.Reserve(context.Background(), id, nil, model.Reservation{Name: "a", Surname: "b", Phone: "c"}))

	changed, err := s.Release(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.Release(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestReleaseMatching_OnlyForSameDetails(t *testing.T) {
	s := New()
	ctx := context.Background()
	id := s.AddSeat(model.Seat{EventID: 1, RowNum: 1, ColNum: 1})
	require.NoError(t, s.Reserve(ctx, id, nil, model.Reservation{Name: "a", Surname: "b", Phone: "c"}))

	changed, err := s.ReleaseMatching(ctx, id, "a", "b", "other")
	require.NoError(t, err)
	assert.False(t, changed)
	seat, _ := s.Seat(id)
	assert.Equal(t, model.SeatReserved, seat.Status)

	changed, err = s.ReleaseMatching(ctx, id, "a", "b", "c")
	require.NoError(t, err)
	assert.True(t, changed)
	seat, _ = s.Seat(id)
	assert.Equal(t, model.SeatAvailable, seat.Status)
	assert.True(t, seat.IsConsistent())

	changed, err = s.ReleaseMatching(ctx, id, "a", "b", "c")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSettings_MissingRow(t *testing.T) {
	s := New()
	_, err := s.Get(context.Background())
	assert.ErrorIs(t, err, repository.ErrSettingsNotFound)

	s.PutSettings(model.Settings{NumRows: 2, NumCols: 3})
	st, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.SettingsID, st.ID)
	assert.Equal(t, 3, st.NumCols)
}

func TestNewSeeded(t *testing.T) {
	s := NewSeeded(2, 3)
	seats, err := s.ListByEvent(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, seats, 6)
	assert.Equal(t, "A1", seats[0].SeatNumber)
	assert.Equal(t, "B3", seats[5].SeatNumber)
}
