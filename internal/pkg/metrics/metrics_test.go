package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	// 各テストで新しいレジストリを使用
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.BookingsTotal)
	assert.NotNil(t, m.BookingDuration)
	assert.NotNil(t, m.AvailabilityCacheTotal)
}

func TestHTTPRequestsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/search", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/bookings", "201").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/bookings", "409").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "http_requests_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "http_requests_total metric not found")
}

func TestBookingsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	// 予約試行の成否をステータス別にカウント
	m.BookingsTotal.WithLabelValues("success").Inc()
	m.BookingsTotal.WithLabelValues("success").Inc()
	m.BookingsTotal.WithLabelValues("conflict").Inc()
	m.BookingsTotal.WithLabelValues("not_found").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "bookings_total" {
			found = true
			assert.Equal(t, 3, len(f.GetMetric()))
		}
	}
	assert.True(t, found, "bookings_total metric not found")
}

func TestBookingDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.BookingDuration.Observe(0.042)
	m.BookingDuration.Observe(0.250)

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "booking_duration_seconds" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, uint64(2), f.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}
	assert.True(t, found, "booking_duration_seconds metric not found")
}
