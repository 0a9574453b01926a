package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "clinic")

	m.BookingsCreated.WithLabelValues("appointment").Inc()
	m.BookingConflicts.WithLabelValues("appointment").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsCreated.WithLabelValues("appointment")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingConflicts.WithLabelValues("appointment")))

	// A second set on a fresh registry does not collide.
	assert.NotPanics(t, func() { NewMetrics(prometheus.NewRegistry(), "clinic") })
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "ok", Status(nil))
	assert.Equal(t, "error", Status(errors.New("x")))
}
