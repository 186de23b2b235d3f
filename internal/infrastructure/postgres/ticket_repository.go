package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/ticket"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/transaction"
)

type ticketRow struct {
	ID               string    `db:"id"`
	PassengerID      string    `db:"passenger_id"`
	SeatID           string    `db:"seat_id"`
	BoardingPoint    string    `db:"boarding_point"`
	DroppingPoint    string    `db:"dropping_point"`
	TotalAmount      float64   `db:"total_amount"`
	BookingReference string    `db:"booking_reference"`
	IsConfirmed      bool      `db:"is_confirmed"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (r *ticketRow) toEntity() *ticket.Ticket {
	return &ticket.Ticket{
		ID: r.ID, PassengerID: r.PassengerID, SeatID: r.SeatID,
		BoardingPoint: r.BoardingPoint, DroppingPoint: r.DroppingPoint,
		TotalAmount: r.TotalAmount, BookingReference: r.BookingReference,
		IsConfirmed: r.IsConfirmed, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const ticketColumns = `id, passenger_id, seat_id, boarding_point, dropping_point, total_amount, booking_reference, is_confirmed, created_at, updated_at`

type TicketRepository struct{ db *sqlx.DB }

func NewTicketRepository(db *sqlx.DB) *TicketRepository { return &TicketRepository{db: db} }

func (r *TicketRepository) Create(ctx context.Context, tx transaction.Tx, t *ticket.Ticket) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return ErrInvalidTx
	}
	query := `INSERT INTO tickets (passenger_id, seat_id, boarding_point, dropping_point, total_amount, booking_reference, is_confirmed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query,
		t.PassengerID, t.SeatID, t.BoardingPoint, t.DroppingPoint,
		t.TotalAmount, t.BookingReference, t.IsConfirmed, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID); err != nil {
		return fmt.Errorf("チケット作成に失敗: %w", err)
	}
	return nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*ticket.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	var row ticketRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticket.ErrTicketNotFound
		}
		return nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *TicketRepository) GetByBookingReference(ctx context.Context, ref string) (*ticket.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE booking_reference = $1`
	var row ticketRow
	if err := r.db.GetContext(ctx, &row, query, ref); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticket.ErrTicketNotFound
		}
		return nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *TicketRepository) GetByPassengerID(ctx context.Context, passengerID string, limit, offset int) ([]*ticket.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE passenger_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	var rows []ticketRow
	if err := r.db.SelectContext(ctx, &rows, query, passengerID, limit, offset); err != nil {
		return nil, fmt.Errorf("チケット一覧取得に失敗: %w", err)
	}
	tickets := make([]*ticket.Ticket, len(rows))
	for i, row := range rows {
		tickets[i] = row.toEntity()
	}
	return tickets, nil
}

func (r *TicketRepository) Update(ctx context.Context, tx transaction.Tx, t *ticket.Ticket) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return ErrInvalidTx
	}
	query := `UPDATE tickets SET is_confirmed = $1, updated_at = $2 WHERE id = $3`
	result, err := sqlxTx.ExecContext(ctx, query, t.IsConfirmed, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("チケット更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ticket.ErrTicketNotFound
	}
	return nil
}

var _ ticket.Repository = (*TicketRepository)(nil)
