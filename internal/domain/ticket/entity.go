package ticket

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ticket はチケットエンティティを表す
// 座席と1:1で結びつき、予約トランザクションの中で生成・確定される
type Ticket struct {
	ID               string
	PassengerID      string
	SeatID           string
	BoardingPoint    string
	DroppingPoint    string
	TotalAmount      float64
	BookingReference string
	IsConfirmed      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewTicket は新しいチケットを未確定状態で作成する
// 予約番号はこの時点で生成される
func NewTicket(passengerID, seatID, boardingPoint, droppingPoint string, totalAmount float64) (*Ticket, error) {
	if passengerID == "" {
		return nil, ErrPassengerIDRequired
	}
	if seatID == "" {
		return nil, ErrSeatIDRequired
	}
	if totalAmount <= 0 {
		return nil, ErrInvalidTotalAmount
	}
	now := time.Now()
	return &Ticket{
		PassengerID:      passengerID,
		SeatID:           seatID,
		BoardingPoint:    boardingPoint,
		DroppingPoint:    droppingPoint,
		TotalAmount:      totalAmount,
		BookingReference: generateBookingReference(),
		IsConfirmed:      false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Confirm はチケットを確定する
func (t *Ticket) Confirm() error {
	if t.IsConfirmed {
		return ErrTicketAlreadyConfirmed
	}
	t.IsConfirmed = true
	t.UpdatedAt = time.Now()
	return nil
}

// Cancel は確定済みチケットをキャンセルする
func (t *Ticket) Cancel() error {
	if !t.IsConfirmed {
		return ErrTicketNotConfirmed
	}
	t.IsConfirmed = false
	t.UpdatedAt = time.Now()
	return nil
}

// generateBookingReference は予約番号を生成する
// 形式: BKG + UTCタイムスタンプ(yyyyMMddHHmmss) + 6桁の大文字サフィックス
// グローバル一意性はストレージの一意制約で担保する
func generateBookingReference() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return "BKG" + time.Now().UTC().Format("20060102150405") + suffix
}
