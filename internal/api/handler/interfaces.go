package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/application"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/schedule"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/ticket"
)

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	BookSeat(ctx context.Context, input application.BookSeatInput) application.BookSeatResult
	GetSeatPlan(ctx context.Context, scheduleID string) (*application.SeatPlan, error)
	GetTicketByReference(ctx context.Context, reference string) (*ticket.Ticket, error)
	ListTicketsByPassenger(ctx context.Context, passengerID string, limit, offset int) ([]*ticket.Ticket, error)
	CancelTicket(ctx context.Context, reference string) (*ticket.Ticket, error)
}

// SearchServiceInterface は運行検索サービスのインターフェース
type SearchServiceInterface interface {
	SearchAvailableBuses(ctx context.Context, fromCity, toCity string, journeyDate time.Time) ([]*application.AvailableBus, error)
	GetBusByScheduleID(ctx context.Context, scheduleID string) (*application.AvailableBus, error)
}

// ScheduleServiceInterface は路線・車両・運行管理サービスのインターフェース
type ScheduleServiceInterface interface {
	CreateRoute(ctx context.Context, input application.CreateRouteInput) (*schedule.Route, error)
	CreateBus(ctx context.Context, input application.CreateBusInput) (*schedule.Bus, error)
	CreateSchedule(ctx context.Context, input application.CreateScheduleInput) (*schedule.BusSchedule, error)
	GetSchedule(ctx context.Context, id string) (*schedule.BusSchedule, error)
	ListBuses(ctx context.Context, limit, offset int) ([]*schedule.Bus, error)
	ListRoutes(ctx context.Context, limit, offset int) ([]*schedule.Route, error)
}
