package schedule

import (
	"context"
	"time"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/transaction"
)

// Repository は運行スケジュールリポジトリのインターフェース
type Repository interface {
	// Create は新しい運行スケジュールを作成する（トランザクション必須）
	// 座席の実体化と合わせて全件成功か全件失敗のどちらかになる
	Create(ctx context.Context, tx transaction.Tx, s *BusSchedule) error

	// GetByID はIDから運行スケジュールを取得する
	GetByID(ctx context.Context, id string) (*BusSchedule, error)

	// GetByIDInTx はトランザクション内で運行スケジュールを取得する
	// 予約経路で運賃を読むときに使う
	GetByIDInTx(ctx context.Context, tx transaction.Tx, id string) (*BusSchedule, error)

	// ListUpcoming は乗車日が当日以降の運行スケジュールを取得する
	ListUpcoming(ctx context.Context, limit int) ([]*BusSchedule, error)

	// Search は出発地・目的地・乗車日で運行スケジュールを検索する
	Search(ctx context.Context, fromCity, toCity string, journeyDate time.Time) ([]*BusSchedule, error)
}

// BusRepository は車両リポジトリのインターフェース
type BusRepository interface {
	Create(ctx context.Context, b *Bus) error
	GetByID(ctx context.Context, id string) (*Bus, error)
	List(ctx context.Context, limit, offset int) ([]*Bus, error)
}

// RouteRepository は路線リポジトリのインターフェース
type RouteRepository interface {
	Create(ctx context.Context, r *Route) error
	GetByID(ctx context.Context, id string) (*Route, error)
	List(ctx context.Context, limit, offset int) ([]*Route, error)
}
