package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/schedule"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/transaction"
)

// ScheduleService は路線・車両・運行スケジュールの管理を提供する
type ScheduleService struct {
	txManager    transaction.Manager
	scheduleRepo schedule.Repository
	busRepo      schedule.BusRepository
	routeRepo    schedule.RouteRepository
	seatRepo     seat.Repository
}

// NewScheduleService は新しいScheduleServiceを作成する
func NewScheduleService(txManager transaction.Manager, scr schedule.Repository, br schedule.BusRepository, rr schedule.RouteRepository, sr seat.Repository) *ScheduleService {
	return &ScheduleService{txManager: txManager, scheduleRepo: scr, busRepo: br, routeRepo: rr, seatRepo: sr}
}

type CreateRouteInput struct {
	FromCity          string
	ToCity            string
	DistanceKM        float64
	EstimatedDuration time.Duration
}

func (s *ScheduleService) CreateRoute(ctx context.Context, input CreateRouteInput) (*schedule.Route, error) {
	r, err := schedule.NewRoute(input.FromCity, input.ToCity, input.DistanceKM, input.EstimatedDuration)
	if err != nil {
		return nil, err
	}
	if err := s.routeRepo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("路線作成に失敗: %w", err)
	}
	return r, nil
}

type CreateBusInput struct {
	CompanyName string
	BusName     string
	BusNumber   string
	BusType     string
	TotalSeats  int
}

func (s *ScheduleService) CreateBus(ctx context.Context, input CreateBusInput) (*schedule.Bus, error) {
	b, err := schedule.NewBus(input.CompanyName, input.BusName, input.BusNumber, input.BusType, input.TotalSeats)
	if err != nil {
		return nil, err
	}
	if err := s.busRepo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("車両作成に失敗: %w", err)
	}
	return b, nil
}

type CreateScheduleInput struct {
	BusID         string
	RouteID       string
	JourneyDate   time.Time
	DepartureTime string
	ArrivalTime   string
	Fare          float64
	BoardingPoint string
	DroppingPoint string
}

// CreateSchedule は運行スケジュールを作成し、車両の座席数ぶんの座席を実体化する
// スケジュールと座席は同一トランザクションで作成され、座席のない運行は残らない
func (s *ScheduleService) CreateSchedule(ctx context.Context, input CreateScheduleInput) (*schedule.BusSchedule, error) {
	bus, err := s.busRepo.GetByID(ctx, input.BusID)
	if err != nil {
		return nil, err
	}
	if _, err := s.routeRepo.GetByID(ctx, input.RouteID); err != nil {
		return nil, err
	}

	sch, err := schedule.NewBusSchedule(input.BusID, input.RouteID, input.JourneyDate,
		input.DepartureTime, input.ArrivalTime, input.Fare, input.BoardingPoint, input.DroppingPoint)
	if err != nil {
		return nil, err
	}
	seats, err := sch.MaterializeSeats(bus.TotalSeats)
	if err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.scheduleRepo.Create(ctx, tx, sch); err != nil {
		return nil, fmt.Errorf("スケジュール作成に失敗: %w", err)
	}
	for _, se := range seats {
		se.ScheduleID = sch.ID
	}
	if err := s.seatRepo.CreateBulk(ctx, tx, seats); err != nil {
		return nil, fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	return sch, nil
}

func (s *ScheduleService) GetSchedule(ctx context.Context, id string) (*schedule.BusSchedule, error) {
	return s.scheduleRepo.GetByID(ctx, id)
}

func (s *ScheduleService) ListBuses(ctx context.Context, limit, offset int) ([]*schedule.Bus, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.busRepo.List(ctx, limit, offset)
}

func (s *ScheduleService) ListRoutes(ctx context.Context, limit, offset int) ([]*schedule.Route, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.routeRepo.List(ctx, limit, offset)
}
