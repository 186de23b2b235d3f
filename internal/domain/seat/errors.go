package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound       = errors.New("seat not found")
	ErrSeatNotAvailable   = errors.New("seat is not available")
	ErrSeatNotBooked      = errors.New("seat is not booked")
	ErrSeatAlreadySold    = errors.New("seat is already sold")
	ErrScheduleIDRequired = errors.New("schedule id is required")
	ErrSeatNumberRequired = errors.New("seat number is required")
)
