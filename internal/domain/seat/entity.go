package seat

import (
	"fmt"
	"time"
)

// Status は座席の状態を表す
type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
	StatusSold      Status = "sold"
)

// Seat は座席エンティティを表す
// 1つの座席は1つの運行スケジュールに属し、予約競合の単位となる
type Seat struct {
	ID         string
	ScheduleID string
	SeatNumber string
	Row        string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewSeat は新しい座席を作成する
func NewSeat(scheduleID, seatNumber, row string) *Seat {
	now := time.Now()
	return &Seat{
		ScheduleID: scheduleID,
		SeatNumber: seatNumber,
		Row:        row,
		Status:     StatusAvailable,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsAvailable は座席が予約可能かを返す
func (s *Seat) IsAvailable() bool {
	return s.Status == StatusAvailable
}

// Book は座席を予約済み状態にする
// available 以外からの遷移は現在の状態を添えて失敗する
func (s *Seat) Book() error {
	if s.Status != StatusAvailable {
		return fmt.Errorf("%w: seat %s current status %s", ErrSeatNotAvailable, s.SeatNumber, s.Status)
	}
	s.Status = StatusBooked
	s.UpdatedAt = time.Now()
	return nil
}

// MarkAsSold は座席を販売済み状態にする
func (s *Seat) MarkAsSold() error {
	if s.Status != StatusBooked {
		return fmt.Errorf("%w: seat %s current status %s", ErrSeatNotBooked, s.SeatNumber, s.Status)
	}
	s.Status = StatusSold
	s.UpdatedAt = time.Now()
	return nil
}

// Release は座席を解放する
// sold は終端状態のため解放できない
func (s *Seat) Release() error {
	if s.Status == StatusSold {
		return fmt.Errorf("%w: seat %s", ErrSeatAlreadySold, s.SeatNumber)
	}
	s.Status = StatusAvailable
	s.UpdatedAt = time.Now()
	return nil
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.ScheduleID == "" {
		return ErrScheduleIDRequired
	}
	if s.SeatNumber == "" {
		return ErrSeatNumberRequired
	}
	return nil
}
