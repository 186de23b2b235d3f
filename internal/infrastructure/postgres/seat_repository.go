package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/transaction"
)

type seatRow struct {
	ID         string    `db:"id"`
	ScheduleID string    `db:"schedule_id"`
	SeatNumber string    `db:"seat_number"`
	Row        string    `db:"row_label"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		ID: r.ID, ScheduleID: r.ScheduleID, SeatNumber: r.SeatNumber,
		Row: r.Row, Status: seat.Status(r.Status),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const seatColumns = `id, schedule_id, seat_number, row_label, status, created_at, updated_at`

type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

func (r *SeatRepository) Create(ctx context.Context, s *seat.Seat) error {
	query := `INSERT INTO seats (schedule_id, seat_number, row_label, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRowContext(ctx, query, s.ScheduleID, s.SeatNumber, s.Row, string(s.Status), s.CreatedAt, s.UpdatedAt).Scan(&s.ID)
}

func (r *SeatRepository) CreateBulk(ctx context.Context, tx transaction.Tx, seats []*seat.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return ErrInvalidTx
	}

	// バッチサイズごとに分割してマルチバリューINSERTを実行
	const batchSize = 1000
	for i := 0; i < len(seats); i += batchSize {
		end := i + batchSize
		if end > len(seats) {
			end = len(seats)
		}
		if err := createBulkBatch(ctx, sqlxTx, seats[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func createBulkBatch(ctx context.Context, tx *sqlx.Tx, seats []*seat.Seat) error {
	query := `INSERT INTO seats (schedule_id, seat_number, row_label, status, created_at, updated_at) VALUES `
	args := make([]interface{}, 0, len(seats)*6)
	placeholders := make([]string, 0, len(seats))

	for i, s := range seats {
		base := i * 6
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args, s.ScheduleID, s.SeatNumber, s.Row, string(s.Status), s.CreatedAt, s.UpdatedAt)
	}

	query += strings.Join(placeholders, ", ")
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	return nil
}

func (r *SeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE id = $1`
	var row seatRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDForUpdate は行ロックを取りつつ座席を取得する
// SERIALIZABLE と合わせた二重の防御で、同一座席への並行予約を直列化する
func (r *SeatRepository) GetByIDForUpdate(ctx context.Context, tx transaction.Tx, id string) (*seat.Seat, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, ErrInvalidTx
	}
	query := `SELECT ` + seatColumns + ` FROM seats WHERE id = $1 FOR UPDATE`
	var row seatRow
	if err := sqlxTx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatRepository) GetByScheduleID(ctx context.Context, scheduleID string) ([]*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE schedule_id = $1 ORDER BY length(seat_number), seat_number`
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query, scheduleID); err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

func (r *SeatRepository) Update(ctx context.Context, tx transaction.Tx, s *seat.Seat) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return ErrInvalidTx
	}
	query := `UPDATE seats SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := sqlxTx.ExecContext(ctx, query, string(s.Status), s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("座席更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return seat.ErrSeatNotFound
	}
	return nil
}

func (r *SeatRepository) CountByScheduleID(ctx context.Context, scheduleID string) (total int, taken int, err error) {
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE status IN ('booked', 'sold')) FROM seats WHERE schedule_id = $1`
	if err := r.db.QueryRowContext(ctx, query, scheduleID).Scan(&total, &taken); err != nil {
		return 0, 0, fmt.Errorf("座席数取得に失敗: %w", err)
	}
	return total, taken, nil
}

var _ seat.Repository = (*SeatRepository)(nil)
