package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/transaction"
)

// ErrInvalidTx はトランザクション型が不正な場合のエラー
var ErrInvalidTx = errors.New("postgres: invalid transaction type")

// TxWrapper は sqlx.Tx を transaction.Tx インターフェースでラップする
type TxWrapper struct {
	*sqlx.Tx
}

// Commit はトランザクションをコミットする
func (t *TxWrapper) Commit() error {
	return t.Tx.Commit()
}

// Rollback はトランザクションをロールバックする
// コミット済み・ロールバック済みの場合は何もしない
func (t *TxWrapper) Rollback() error {
	if err := t.Tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// TxManager は sqlx.DB を使用したトランザクションマネージャー
type TxManager struct {
	db *sqlx.DB
}

// NewTxManager は新しい TxManager を作成する
func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// Begin はデフォルト分離レベルで新しいトランザクションを開始する
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &TxWrapper{Tx: tx}, nil
}

// BeginSerializable は SERIALIZABLE 分離レベルで新しいトランザクションを開始する
// 予約経路の排他制御はこの分離レベルに依存している
func (m *TxManager) BeginSerializable(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	return &TxWrapper{Tx: tx}, nil
}

var _ transaction.Manager = (*TxManager)(nil)

// UnwrapTx は transaction.Tx から sqlx.Tx を取り出す
// リポジトリ実装で使用する
func UnwrapTx(tx transaction.Tx) *sqlx.Tx {
	if wrapper, ok := tx.(*TxWrapper); ok {
		return wrapper.Tx
	}
	return nil
}

// IsSerializationFailure は直列化競合（SQLSTATE 40001）かを判定する
// 敗者側のトランザクションはこのエラーでコミットに失敗する
func IsSerializationFailure(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001"
	}
	return false
}
