package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/openday-seat-reservation/internal/model"
)

var seatCols = []string{"id", "event_id", "row_num", "col_num", "seat_number", "status",
	"reserved_name", "reserved_surname", "reserved_phone", "reserved_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestSettingsRepo_Get(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT id, num_rows, num_cols, logo_url, color_primary FROM settings WHERE id = \?`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "num_rows", "num_cols", "logo_url", "color_primary"}).
			AddRow(1, 6, 10, "https://cdn/logo.png", nil))

	st, err := NewSettingsRepo(db).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, st.NumRows)
	assert.Equal(t, 10, st.NumCols)
	require.NotNil(t, st.LogoURL)
	assert.Equal(t, "https://cdn/logo.png", *st.LogoURL)
	assert.Nil(t, st.ColorPrimary)
}

func TestSettingsRepo_GetMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM settings`).WillReturnError(sql.ErrNoRows)

	_, err := NewSettingsRepo(db).Get(context.Background())
	assert.ErrorIs(t, err, ErrSettingsNotFound)
}

func TestSettingsRepo_UpdateAsGiven(t *testing.T) {
	db, mock := newMock(t)
	color := "#ff0000"
	mock.ExpectExec(`UPDATE settings SET num_rows = \?, num_cols = \?, logo_url = \?, color_primary = \? WHERE id = \?`).
		WithArgs(-1, 0, nil, color, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewSettingsRepo(db).Update(context.Background(), model.Settings{NumRows: -1, NumCols: 0, ColorPrimary: &color})
	assert.NoError(t, err)
}

func TestSeatRepo_ListByEventOrdered(t *testing.T) {
	db, mock := newMock(t)
	at := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM seats WHERE event_id = \? ORDER BY row_num, col_num`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(seatCols).
			AddRow(61, 2, 1, 1, "A1", "available", nil, nil, nil, nil).
			AddRow(62, 2, 1, 2, "A2", "reserved", "Ada", "Lovelace", "555", at))

	seats, err := NewSeatRepo(db).ListByEvent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.True(t, seats[0].IsConsistent())
	assert.Nil(t, seats[0].ReservedName)
	assert.Equal(t, model.SeatReserved, seats[1].Status)
	assert.Equal(t, "Lovelace", *seats[1].ReservedSurname)
	assert.True(t, at.Equal(*seats[1].ReservedAt))
	assert.True(t, seats[1].IsConsistent())
}

func TestSeatRepo_ListByEventEmpty(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM seats WHERE event_id = \?`).WithArgs(9).WillReturnRows(sqlmock.NewRows(seatCols))

	seats, err := NewSeatRepo(db).ListByEvent(context.Background(), 9)
	require.NoError(t, err)
	assert.NotNil(t, seats)
	assert.Empty(t, seats)
}

func TestSeatRepo_ListAllPropagatesError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM seats ORDER BY row_num, col_num`).WillReturnError(errors.New("connection reset"))

	_, err := NewSeatRepo(db).ListAll(context.Background())
	assert.EqualError(t, err, "connection reset")
}

func TestSeatRepo_ReleaseMatching(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`WHERE id = \? AND status = 'reserved' AND reserved_name = \? AND reserved_surname = \? AND reserved_phone = \?$`).
		WithArgs(12, "Ada", "Lovelace", "555").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`WHERE id = \? AND status = 'reserved'`).
		WithArgs(12, "Ada", "Lovelace", "555").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewSeatRepo(db)
	changed, err := repo.ReleaseMatching(context.Background(), 12, "Ada", "Lovelace", "555")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.ReleaseMatching(context.Background(), 12, "Ada", "Lovelace", "555")
	require.NoError(t, err)
	assert.False(t, changed, "seat no longer held by these details")
}

func TestSeatRepo_ReserveConditionalUpdate(t *testing.T) {
	db, mock := newMock(t)
	res := model.Reservation{Name: "Ada", Surname: "Lovelace", Phone: "555", ReservedAt: time.Now()}

	mock.ExpectExec(`UPDATE seats SET status = 'reserved', .* WHERE id = \? AND status = 'available'$`).
		WithArgs("Ada", "Lovelace", "555", sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`WHERE id = \? AND status = 'available'$`).
		WithArgs("Ada", "Lovelace", "555", sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewSeatRepo(db)
	assert.NoError(t, repo.Reserve(context.Background(), 7, nil, res))
	assert.ErrorIs(t, repo.Reserve(context.Background(), 7, nil, res), ErrConflict)
}

func TestSeatRepo_ReserveScopedToEvent(t *testing.T) {
	db, mock := newMock(t)
	eventID := uint64(3)
	mock.ExpectExec(`WHERE id = \? AND status = 'available' AND event_id = \?`).
		WithArgs("Ada", "Lovelace", "555", sqlmock.AnyArg(), 7, 3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewSeatRepo(db).Reserve(context.Background(), 7, &eventID, model.Reservation{Name: "Ada", Surname: "Lovelace", Phone: "555"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSeatRepo_Release(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`UPDATE seats SET status = 'available', reserved_name = NULL`).WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE seats SET status = 'available'`).WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewSeatRepo(db)
	changed, err := repo.Release(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Release(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSeatRepo_FindReserved(t *testing.T) {
	db, mock := newMock(t)
	at := time.Now().UTC()
	mock.ExpectQuery(`WHERE status = 'reserved' AND reserved_name = \? AND reserved_surname = \? AND reserved_phone = \? LIMIT 1`).
		WithArgs("Ada", "Lovelace", "555").
		WillReturnRows(sqlmock.NewRows(seatCols).AddRow(12, 1, 2, 2, "B2", "reserved", "Ada", "Lovelace", "555", at))
	mock.ExpectQuery(`AND event_id = \? LIMIT 1`).
		WithArgs("Ada", "Lovelace", "555", 4).
		WillReturnError(sql.ErrNoRows)

	repo := NewSeatRepo(db)
	s, err := repo.FindReserved(context.Background(), "Ada", "Lovelace", "555", nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), s.ID)

	eventID := uint64(4)
	_, err = repo.FindReserved(context.Background(), "Ada", "Lovelace", "555", &eventID)
	assert.ErrorIs(t, err, ErrSeatNotFound)
}
