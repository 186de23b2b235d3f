package passenger

import (
	"context"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/transaction"
)

// Repository は乗客リポジトリのインターフェース
type Repository interface {
	// Create は新しい乗客を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, p *Passenger) error

	// GetByID はIDから乗客を取得する
	GetByID(ctx context.Context, id string) (*Passenger, error)

	// FindByMobileNumber は携帯電話番号から乗客を検索する
	// トランザクション内で呼ばれた場合は tx 経由で読む
	FindByMobileNumber(ctx context.Context, tx transaction.Tx, mobileNumber string) (*Passenger, error)
}
