package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/schedule"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/pkg/logger"
)

// Seeder は開発用の初期データを投入する
type Seeder struct {
	db           *sqlx.DB
	txManager    *TxManager
	routeRepo    *RouteRepository
	busRepo      *BusRepository
	scheduleRepo *ScheduleRepository
	seatRepo     *SeatRepository
}

// NewSeeder は新しい Seeder を作成する
func NewSeeder(db *sqlx.DB) *Seeder {
	return &Seeder{
		db:           db,
		txManager:    NewTxManager(db),
		routeRepo:    NewRouteRepository(db),
		busRepo:      NewBusRepository(db),
		scheduleRepo: NewScheduleRepository(db),
		seatRepo:     NewSeatRepository(db),
	}
}

// Seed は路線・車両・運行スケジュール・座席のサンプルデータを投入する
// 既にデータが存在する場合は何もしない
func (s *Seeder) Seed(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM routes`).Scan(&count); err != nil {
		return fmt.Errorf("シードデータ確認に失敗: %w", err)
	}
	if count > 0 {
		logger.Info("シードデータは投入済みのためスキップします")
		return nil
	}

	routes, err := s.seedRoutes(ctx)
	if err != nil {
		return err
	}
	buses, err := s.seedBuses(ctx)
	if err != nil {
		return err
	}
	if err := s.seedSchedules(ctx, routes, buses); err != nil {
		return err
	}

	logger.Info("シードデータの投入が完了しました")
	return nil
}

func (s *Seeder) seedRoutes(ctx context.Context) ([]*schedule.Route, error) {
	specs := []struct {
		from, to string
		km       float64
		duration time.Duration
	}{
		{"Dhaka", "Chittagong", 250, 6 * time.Hour},
		{"Dhaka", "Sylhet", 240, 5 * time.Hour},
		{"Dhaka", "Rajshahi", 260, 7 * time.Hour},
	}
	routes := make([]*schedule.Route, 0, len(specs))
	for _, sp := range specs {
		r, err := schedule.NewRoute(sp.from, sp.to, sp.km, sp.duration)
		if err != nil {
			return nil, err
		}
		if err := s.routeRepo.Create(ctx, r); err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, nil
}

func (s *Seeder) seedBuses(ctx context.Context) ([]*schedule.Bus, error) {
	specs := []struct {
		company, name, number, busType string
		seats                          int
	}{
		{"Green Line", "Green Line Express", "GL-101", "AC", 40},
		{"Green Line", "Green Line Sleeper", "GL-102", "Sleeper", 32},
		{"Shyamoli", "Shyamoli Deluxe", "SH-201", "Non-AC", 44},
		{"Shyamoli", "Shyamoli AC", "SH-202", "AC", 40},
		{"Hanif", "Hanif Volvo", "HF-301", "AC", 36},
	}
	buses := make([]*schedule.Bus, 0, len(specs))
	for _, sp := range specs {
		b, err := schedule.NewBus(sp.company, sp.name, sp.number, sp.busType, sp.seats)
		if err != nil {
			return nil, err
		}
		if err := s.busRepo.Create(ctx, b); err != nil {
			return nil, err
		}
		buses = append(buses, b)
	}
	return buses, nil
}

func (s *Seeder) seedSchedules(ctx context.Context, routes []*schedule.Route, buses []*schedule.Bus) error {
	fares := []float64{45.00, 55.00, 40.00, 50.00, 60.00}
	departures := []string{"07:00", "09:30", "14:00", "18:30", "22:00"}
	arrivals := []string{"13:00", "15:30", "20:00", "00:30", "04:00"}

	for day := 1; day <= 7; day++ {
		journeyDate := time.Now().AddDate(0, 0, day)
		for i, b := range buses {
			r := routes[i%len(routes)]
			sched, err := schedule.NewBusSchedule(
				b.ID, r.ID, journeyDate, departures[i], arrivals[i], fares[i],
				r.FromCity+" Bus Terminal", r.ToCity+" Bus Terminal",
			)
			if err != nil {
				return err
			}
			if err := s.createScheduleWithSeats(ctx, sched, b.TotalSeats); err != nil {
				return err
			}
		}
	}
	return nil
}

// createScheduleWithSeats はスケジュールと座席を同一トランザクションで作成する
func (s *Seeder) createScheduleWithSeats(ctx context.Context, sched *schedule.BusSchedule, totalSeats int) error {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.scheduleRepo.Create(ctx, tx, sched); err != nil {
		return err
	}
	seats, err := sched.MaterializeSeats(totalSeats)
	if err != nil {
		return err
	}
	if err := s.seatRepo.CreateBulk(ctx, tx, seats); err != nil {
		return err
	}
	return tx.Commit()
}
