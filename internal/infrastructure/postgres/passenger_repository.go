package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/passenger"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/transaction"
)

type passengerRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	MobileNumber string    `db:"mobile_number"`
	Email        *string   `db:"email"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *passengerRow) toEntity() *passenger.Passenger {
	var email string
	if r.Email != nil {
		email = *r.Email
	}
	return &passenger.Passenger{
		ID: r.ID, Name: r.Name, MobileNumber: r.MobileNumber, Email: email,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const passengerColumns = `id, name, mobile_number, email, created_at, updated_at`

type PassengerRepository struct{ db *sqlx.DB }

func NewPassengerRepository(db *sqlx.DB) *PassengerRepository {
	return &PassengerRepository{db: db}
}

func (r *PassengerRepository) Create(ctx context.Context, tx transaction.Tx, p *passenger.Passenger) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return ErrInvalidTx
	}
	var email *string
	if p.Email != "" {
		email = &p.Email
	}
	query := `INSERT INTO passengers (name, mobile_number, email, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, p.Name, p.MobileNumber, email, p.CreatedAt, p.UpdatedAt).Scan(&p.ID); err != nil {
		return fmt.Errorf("乗客作成に失敗: %w", err)
	}
	return nil
}

func (r *PassengerRepository) GetByID(ctx context.Context, id string) (*passenger.Passenger, error) {
	query := `SELECT ` + passengerColumns + ` FROM passengers WHERE id = $1`
	var row passengerRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, passenger.ErrPassengerNotFound
		}
		return nil, fmt.Errorf("乗客取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// FindByMobileNumber は携帯電話番号から乗客を検索する
// 同一番号の重複は一意制約で防いでいないため、最も古いレコードを返す
func (r *PassengerRepository) FindByMobileNumber(ctx context.Context, tx transaction.Tx, mobileNumber string) (*passenger.Passenger, error) {
	query := `SELECT ` + passengerColumns + ` FROM passengers WHERE mobile_number = $1 ORDER BY created_at LIMIT 1`
	var row passengerRow
	var err error
	if sqlxTx := UnwrapTx(tx); sqlxTx != nil {
		err = sqlxTx.GetContext(ctx, &row, query, mobileNumber)
	} else {
		err = r.db.GetContext(ctx, &row, query, mobileNumber)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, passenger.ErrPassengerNotFound
		}
		return nil, fmt.Errorf("乗客検索に失敗: %w", err)
	}
	return row.toEntity(), nil
}

var _ passenger.Repository = (*PassengerRepository)(nil)
