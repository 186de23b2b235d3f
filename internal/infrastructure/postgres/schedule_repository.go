package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/schedule"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/transaction"
)

type scheduleRow struct {
	ID            string    `db:"id"`
	BusID         string    `db:"bus_id"`
	RouteID       string    `db:"route_id"`
	JourneyDate   time.Time `db:"journey_date"`
	DepartureTime string    `db:"departure_time"`
	ArrivalTime   string    `db:"arrival_time"`
	Fare          float64   `db:"fare"`
	BoardingPoint string    `db:"boarding_point"`
	DroppingPoint string    `db:"dropping_point"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r *scheduleRow) toEntity() *schedule.BusSchedule {
	return &schedule.BusSchedule{
		ID: r.ID, BusID: r.BusID, RouteID: r.RouteID,
		JourneyDate: r.JourneyDate, DepartureTime: r.DepartureTime, ArrivalTime: r.ArrivalTime,
		Fare: r.Fare, BoardingPoint: r.BoardingPoint, DroppingPoint: r.DroppingPoint,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const scheduleColumns = `id, bus_id, route_id, journey_date, departure_time, arrival_time, fare, boarding_point, dropping_point, created_at, updated_at`

type ScheduleRepository struct{ db *sqlx.DB }

func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Create(ctx context.Context, tx transaction.Tx, s *schedule.BusSchedule) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return ErrInvalidTx
	}
	query := `INSERT INTO bus_schedules (bus_id, route_id, journey_date, departure_time, arrival_time, fare, boarding_point, dropping_point, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query,
		s.BusID, s.RouteID, s.JourneyDate, s.DepartureTime, s.ArrivalTime,
		s.Fare, s.BoardingPoint, s.DroppingPoint, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID); err != nil {
		return fmt.Errorf("運行スケジュール作成に失敗: %w", err)
	}
	return nil
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*schedule.BusSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM bus_schedules WHERE id = $1`
	var row scheduleRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, schedule.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("運行スケジュール取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ScheduleRepository) GetByIDInTx(ctx context.Context, tx transaction.Tx, id string) (*schedule.BusSchedule, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, ErrInvalidTx
	}
	query := `SELECT ` + scheduleColumns + ` FROM bus_schedules WHERE id = $1`
	var row scheduleRow
	if err := sqlxTx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, schedule.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("運行スケジュール取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ScheduleRepository) ListUpcoming(ctx context.Context, limit int) ([]*schedule.BusSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM bus_schedules WHERE journey_date >= CURRENT_DATE ORDER BY journey_date, departure_time LIMIT $1`
	var rows []scheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("運行スケジュール一覧取得に失敗: %w", err)
	}
	return toScheduleEntities(rows), nil
}

// Search は都市名の大文字小文字を無視して検索する
func (r *ScheduleRepository) Search(ctx context.Context, fromCity, toCity string, journeyDate time.Time) ([]*schedule.BusSchedule, error) {
	query := `SELECT s.id, s.bus_id, s.route_id, s.journey_date, s.departure_time, s.arrival_time, s.fare, s.boarding_point, s.dropping_point, s.created_at, s.updated_at
		FROM bus_schedules s
		JOIN routes r ON r.id = s.route_id
		WHERE lower(r.from_city) = lower($1)
		  AND lower(r.to_city) = lower($2)
		  AND s.journey_date = $3
		ORDER BY s.departure_time`
	var rows []scheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, fromCity, toCity, journeyDate); err != nil {
		return nil, fmt.Errorf("運行スケジュール検索に失敗: %w", err)
	}
	return toScheduleEntities(rows), nil
}

func toScheduleEntities(rows []scheduleRow) []*schedule.BusSchedule {
	schedules := make([]*schedule.BusSchedule, len(rows))
	for i, row := range rows {
		schedules[i] = row.toEntity()
	}
	return schedules
}

var _ schedule.Repository = (*ScheduleRepository)(nil)

type busRow struct {
	ID          string    `db:"id"`
	CompanyName string    `db:"company_name"`
	BusName     string    `db:"bus_name"`
	BusNumber   string    `db:"bus_number"`
	BusType     string    `db:"bus_type"`
	TotalSeats  int       `db:"total_seats"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *busRow) toEntity() *schedule.Bus {
	return &schedule.Bus{
		ID: r.ID, CompanyName: r.CompanyName, BusName: r.BusName,
		BusNumber: r.BusNumber, BusType: r.BusType, TotalSeats: r.TotalSeats,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const busColumns = `id, company_name, bus_name, bus_number, bus_type, total_seats, created_at, updated_at`

type BusRepository struct{ db *sqlx.DB }

func NewBusRepository(db *sqlx.DB) *BusRepository { return &BusRepository{db: db} }

func (r *BusRepository) Create(ctx context.Context, b *schedule.Bus) error {
	query := `INSERT INTO buses (company_name, bus_name, bus_number, bus_type, total_seats, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		b.CompanyName, b.BusName, b.BusNumber, b.BusType, b.TotalSeats, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID); err != nil {
		return fmt.Errorf("車両作成に失敗: %w", err)
	}
	return nil
}

func (r *BusRepository) GetByID(ctx context.Context, id string) (*schedule.Bus, error) {
	query := `SELECT ` + busColumns + ` FROM buses WHERE id = $1`
	var row busRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, schedule.ErrBusNotFound
		}
		return nil, fmt.Errorf("車両取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BusRepository) List(ctx context.Context, limit, offset int) ([]*schedule.Bus, error) {
	query := `SELECT ` + busColumns + ` FROM buses ORDER BY company_name, bus_name LIMIT $1 OFFSET $2`
	var rows []busRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("車両一覧取得に失敗: %w", err)
	}
	buses := make([]*schedule.Bus, len(rows))
	for i, row := range rows {
		buses[i] = row.toEntity()
	}
	return buses, nil
}

var _ schedule.BusRepository = (*BusRepository)(nil)

type routeRow struct {
	ID                string    `db:"id"`
	FromCity          string    `db:"from_city"`
	ToCity            string    `db:"to_city"`
	DistanceKM        float64   `db:"distance_km"`
	EstimatedDuration int64     `db:"estimated_duration_minutes"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (r *routeRow) toEntity() *schedule.Route {
	return &schedule.Route{
		ID: r.ID, FromCity: r.FromCity, ToCity: r.ToCity,
		DistanceKM:        r.DistanceKM,
		EstimatedDuration: time.Duration(r.EstimatedDuration) * time.Minute,
		CreatedAt:         r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const routeColumns = `id, from_city, to_city, distance_km, estimated_duration_minutes, created_at, updated_at`

type RouteRepository struct{ db *sqlx.DB }

func NewRouteRepository(db *sqlx.DB) *RouteRepository { return &RouteRepository{db: db} }

func (r *RouteRepository) Create(ctx context.Context, rt *schedule.Route) error {
	query := `INSERT INTO routes (from_city, to_city, distance_km, estimated_duration_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		rt.FromCity, rt.ToCity, rt.DistanceKM, int64(rt.EstimatedDuration/time.Minute), rt.CreatedAt, rt.UpdatedAt,
	).Scan(&rt.ID); err != nil {
		return fmt.Errorf("路線作成に失敗: %w", err)
	}
	return nil
}

func (r *RouteRepository) GetByID(ctx context.Context, id string) (*schedule.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE id = $1`
	var row routeRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, schedule.ErrRouteNotFound
		}
		return nil, fmt.Errorf("路線取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *RouteRepository) List(ctx context.Context, limit, offset int) ([]*schedule.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes ORDER BY from_city, to_city LIMIT $1 OFFSET $2`
	var rows []routeRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("路線一覧取得に失敗: %w", err)
	}
	routes := make([]*schedule.Route, len(rows))
	for i, row := range rows {
		routes[i] = row.toEntity()
	}
	return routes, nil
}

var _ schedule.RouteRepository = (*RouteRepository)(nil)
