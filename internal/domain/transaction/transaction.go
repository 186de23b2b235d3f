package transaction

import "context"

// Tx はトランザクションを表すインターフェース
// ドメイン層がインフラ層（sqlx等）に依存しないようにするための抽象化
type Tx interface {
	// Commit はトランザクションをコミットする
	Commit() error
	// Rollback はトランザクションをロールバックする
	// コミット済み・ロールバック済みのトランザクションに対して呼んでも安全であること
	Rollback() error
}

// Manager はトランザクションを管理するインターフェース
type Manager interface {
	// Begin はデフォルト分離レベルで新しいトランザクションを開始する
	Begin(ctx context.Context) (Tx, error)

	// BeginSerializable は SERIALIZABLE 分離レベルで新しいトランザクションを開始する
	// 予約経路はこちらを使う。同一座席に対する並行トランザクションのうち
	// available を観測してコミットできるのは高々1つであることをストレージが保証する
	BeginSerializable(ctx context.Context) (Tx, error)
}
