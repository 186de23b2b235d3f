package booking

import (
	"fmt"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/passenger"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/ticket"
)

// Service は座席予約のドメインサービス
// I/Oを持たない純粋な業務ルール。渡されたオブジェクトのみを変更する
type Service struct{}

// NewService は新しいServiceを作成する
func NewService() *Service {
	return &Service{}
}

// CanBookSeat は座席が予約可能かを返す
func (s *Service) CanBookSeat(se *seat.Seat) bool {
	return se.IsAvailable()
}

// BookSeat は座席を予約状態に遷移させ、対応するチケットを生成する
// チケットの確定は呼び出し側（トランザクションコーディネーター）の責務
func (s *Service) BookSeat(se *seat.Seat, p *passenger.Passenger, boardingPoint, droppingPoint string, fare float64) (*ticket.Ticket, error) {
	if !s.CanBookSeat(se) {
		return nil, fmt.Errorf("%w: seat %s current status %s", seat.ErrSeatNotAvailable, se.SeatNumber, se.Status)
	}

	if err := se.Book(); err != nil {
		return nil, err
	}

	t, err := ticket.NewTicket(p.ID, se.ID, boardingPoint, droppingPoint, fare)
	if err != nil {
		// チケットを作れない場合は座席の遷移を巻き戻す
		_ = se.Release()
		return nil, err
	}
	return t, nil
}
