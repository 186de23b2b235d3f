package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/passenger"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/seat"
)

func newTestPassenger(t *testing.T) *passenger.Passenger {
	t.Helper()
	p, err := passenger.NewPassenger("Rahim Uddin", "+8801712345678", "")
	require.NoError(t, err)
	p.ID = "passenger-1"
	return p
}

func TestService_CanBookSeat(t *testing.T) {
	svc := NewService()

	tests := []struct {
		name     string
		status   seat.Status
		expected bool
	}{
		{"空席は予約可能", seat.StatusAvailable, true},
		{"予約済みは不可", seat.StatusBooked, false},
		{"販売済みは不可", seat.StatusSold, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := &seat.Seat{Status: tt.status}
			assert.Equal(t, tt.expected, svc.CanBookSeat(se))
		})
	}
}

func TestService_BookSeat(t *testing.T) {
	svc := NewService()

	t.Run("空席を予約してチケットが生成される", func(t *testing.T) {
		se := seat.NewSeat("schedule-1", "12", "3")
		se.ID = "seat-1"
		p := newTestPassenger(t)

		ticket, err := svc.BookSeat(se, p, "Dhaka", "Chittagong", 45.00)

		require.NoError(t, err)
		assert.Equal(t, seat.StatusBooked, se.Status)
		assert.Equal(t, "passenger-1", ticket.PassengerID)
		assert.Equal(t, "seat-1", ticket.SeatID)
		assert.Equal(t, 45.00, ticket.TotalAmount)
		assert.False(t, ticket.IsConfirmed)
	})

	t.Run("予約不可の座席はエラー", func(t *testing.T) {
		se := seat.NewSeat("schedule-1", "12", "3")
		se.ID = "seat-1"
		se.Status = seat.StatusSold
		p := newTestPassenger(t)

		_, err := svc.BookSeat(se, p, "Dhaka", "Chittagong", 45.00)

		require.Error(t, err)
		assert.ErrorIs(t, err, seat.ErrSeatNotAvailable)
	})

	t.Run("チケット生成に失敗すると座席は解放される", func(t *testing.T) {
		se := seat.NewSeat("schedule-1", "12", "3")
		se.ID = "seat-1"
		p := newTestPassenger(t)

		// 運賃0はチケット側の検証で弾かれる
		_, err := svc.BookSeat(se, p, "Dhaka", "Chittagong", 0)

		require.Error(t, err)
		assert.Equal(t, seat.StatusAvailable, se.Status)
	})
}
