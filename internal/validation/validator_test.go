package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contact struct {
	SeatID  uint64 `json:"seat_id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Surname string `json:"surname" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(contact{SeatID: 1, Name: "Ada", Surname: "Lovelace", Phone: "123"}))
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(contact{Name: "Ada"})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"seat_id", "surname", "phone"}, verr.Fields)
	assert.Equal(t, "missing required fields: seat_id, surname, phone", verr.Error())
}

func TestTrimAll(t *testing.T) {
	a, b := "  Ada ", "\tLovelace\n"
	TrimAll(&a, &b, nil)
	assert.Equal(t, "Ada", a)
	assert.Equal(t, "Lovelace", b)

	err := Struct(contact{SeatID: 1, Name: "   ", Surname: "x", Phone: "y"})
	assert.NoError(t, err, "whitespace is only rejected after trimming")
}
