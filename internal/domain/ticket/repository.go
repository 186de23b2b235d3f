package ticket

import (
	"context"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/transaction"
)

// Repository はチケットリポジトリのインターフェース
type Repository interface {
	// Create は新しいチケットを作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, t *Ticket) error

	// GetByID はIDからチケットを取得する
	GetByID(ctx context.Context, id string) (*Ticket, error)

	// GetByBookingReference は予約番号からチケットを取得する
	GetByBookingReference(ctx context.Context, ref string) (*Ticket, error)

	// GetByPassengerID は乗客IDからチケット一覧を取得する
	GetByPassengerID(ctx context.Context, passengerID string, limit, offset int) ([]*Ticket, error)

	// Update はチケットを更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, t *Ticket) error
}
