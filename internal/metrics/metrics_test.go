package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSeatReservations_CountsByOutcome(t *testing.T) {
	before := testutil.ToFloat64(SeatReservations.WithLabelValues(OutcomeConflict))
	SeatReservations.WithLabelValues(OutcomeConflict).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(SeatReservations.WithLabelValues(OutcomeConflict)))
}

func TestSeatCancellations_Labels(t *testing.T) {
	c := SeatCancellations.WithLabelValues("details", OutcomeNotFound)
	before := testutil.ToFloat64(c)
	c.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestRecordAPIRequest(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("GET", "/api/seats/:eventId", "200")
	before := testutil.ToFloat64(c)
	RecordAPIRequest("GET", "/api/seats/:eventId", "200", 15*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
