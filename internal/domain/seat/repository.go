package seat

import (
	"context"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/transaction"
)

// Repository は座席リポジトリのインターフェース
type Repository interface {
	// Create は新しい座席を作成する
	Create(ctx context.Context, seat *Seat) error

	// CreateBulk は複数の座席を一括作成する（トランザクション必須）
	// 運行スケジュールの作成と同一トランザクションで実体化される
	CreateBulk(ctx context.Context, tx transaction.Tx, seats []*Seat) error

	// GetByID はIDから座席を取得する
	GetByID(ctx context.Context, id string) (*Seat, error)

	// GetByIDForUpdate はトランザクション内で行ロックを取りつつ座席を取得する
	// SELECT ... FOR UPDATE 相当。予約経路はこちらを使う
	GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Seat, error)

	// GetByScheduleID はスケジュールIDから座席一覧を取得する
	GetByScheduleID(ctx context.Context, scheduleID string) ([]*Seat, error)

	// Update は座席の状態を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, seat *Seat) error

	// CountByScheduleID はスケジュールの総座席数と予約・販売済み座席数を取得する
	CountByScheduleID(ctx context.Context, scheduleID string) (total int, taken int, err error)
}
