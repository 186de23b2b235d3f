package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/schedule"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/seat"
)

// MockRouteRepository はschedule.RouteRepositoryのモック
type MockRouteRepository struct {
	mock.Mock
}

func (m *MockRouteRepository) Create(ctx context.Context, r *schedule.Route) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRouteRepository) GetByID(ctx context.Context, id string) (*schedule.Route, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*schedule.Route), args.Error(1)
}

func (m *MockRouteRepository) List(ctx context.Context, limit, offset int) ([]*schedule.Route, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*schedule.Route), args.Error(1)
}

type scheduleServiceMocks struct {
	txManager    *MockTxManager
	tx           *MockTx
	scheduleRepo *MockScheduleRepository
	busRepo      *MockBusRepository
	routeRepo    *MockRouteRepository
	seatRepo     *MockSeatRepository
}

func newScheduleService() (*ScheduleService, *scheduleServiceMocks) {
	m := &scheduleServiceMocks{
		txManager:    new(MockTxManager),
		tx:           new(MockTx),
		scheduleRepo: new(MockScheduleRepository),
		busRepo:      new(MockBusRepository),
		routeRepo:    new(MockRouteRepository),
		seatRepo:     new(MockSeatRepository),
	}
	svc := NewScheduleService(m.txManager, m.scheduleRepo, m.busRepo, m.routeRepo, m.seatRepo)
	return svc, m
}

func TestScheduleService_CreateRoute(t *testing.T) {
	t.Run("路線を作成できる", func(t *testing.T) {
		svc, m := newScheduleService()
		m.routeRepo.On("Create", mock.Anything, mock.AnythingOfType("*schedule.Route")).Return(nil)

		r, err := svc.CreateRoute(context.Background(), CreateRouteInput{
			FromCity:          "Dhaka",
			ToCity:            "Chittagong",
			DistanceKM:        250,
			EstimatedDuration: 6 * time.Hour,
		})

		require.NoError(t, err)
		assert.Equal(t, "Dhaka", r.FromCity)
		assert.NotEmpty(t, r.ID)
		m.routeRepo.AssertExpectations(t)
	})

	t.Run("出発地が空ならエラーで永続化しない", func(t *testing.T) {
		svc, m := newScheduleService()

		_, err := svc.CreateRoute(context.Background(), CreateRouteInput{
			ToCity:     "Chittagong",
			DistanceKM: 250,
		})

		require.Error(t, err)
		m.routeRepo.AssertNotCalled(t, "Create")
	})
}

func TestScheduleService_CreateSchedule(t *testing.T) {
	journeyDate := time.Now().AddDate(0, 0, 3)

	input := CreateScheduleInput{
		BusID:         "bus-1",
		RouteID:       "route-1",
		JourneyDate:   journeyDate,
		DepartureTime: "07:00",
		ArrivalTime:   "13:00",
		Fare:          45.00,
		BoardingPoint: "Dhaka Bus Terminal",
		DroppingPoint: "Chittagong Bus Terminal",
	}

	t.Run("スケジュールと座席が同一トランザクションで作成される", func(t *testing.T) {
		svc, m := newScheduleService()
		m.busRepo.On("GetByID", mock.Anything, "bus-1").
			Return(&schedule.Bus{ID: "bus-1", TotalSeats: 8}, nil)
		m.routeRepo.On("GetByID", mock.Anything, "route-1").
			Return(&schedule.Route{ID: "route-1"}, nil)
		m.txManager.On("Begin", mock.Anything).Return(m.tx, nil)
		m.scheduleRepo.On("Create", mock.Anything, m.tx, mock.AnythingOfType("*schedule.BusSchedule")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*schedule.BusSchedule).ID = "schedule-new"
			}).Return(nil)

		var created []*seat.Seat
		m.seatRepo.On("CreateBulk", mock.Anything, m.tx, mock.AnythingOfType("[]*seat.Seat")).
			Run(func(args mock.Arguments) {
				created = args.Get(2).([]*seat.Seat)
			}).Return(nil)
		m.tx.On("Commit").Return(nil)
		m.tx.On("Rollback").Return(nil)

		sch, err := svc.CreateSchedule(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, 45.00, sch.Fare)
		require.Len(t, created, 8)
		for _, s := range created {
			assert.Equal(t, "schedule-new", s.ScheduleID)
			assert.Equal(t, seat.StatusAvailable, s.Status)
		}
		m.tx.AssertCalled(t, "Commit")
	})

	t.Run("座席の一括作成に失敗したらコミットしない", func(t *testing.T) {
		svc, m := newScheduleService()
		m.busRepo.On("GetByID", mock.Anything, "bus-1").
			Return(&schedule.Bus{ID: "bus-1", TotalSeats: 8}, nil)
		m.routeRepo.On("GetByID", mock.Anything, "route-1").
			Return(&schedule.Route{ID: "route-1"}, nil)
		m.txManager.On("Begin", mock.Anything).Return(m.tx, nil)
		m.scheduleRepo.On("Create", mock.Anything, m.tx, mock.AnythingOfType("*schedule.BusSchedule")).Return(nil)
		m.seatRepo.On("CreateBulk", mock.Anything, m.tx, mock.AnythingOfType("[]*seat.Seat")).
			Return(errors.New("connection reset"))
		m.tx.On("Rollback").Return(nil)

		_, err := svc.CreateSchedule(context.Background(), input)

		require.Error(t, err)
		m.tx.AssertNotCalled(t, "Commit")
		m.tx.AssertCalled(t, "Rollback")
	})

	t.Run("車両が存在しなければエラー", func(t *testing.T) {
		svc, m := newScheduleService()
		m.busRepo.On("GetByID", mock.Anything, "bus-1").
			Return(nil, schedule.ErrBusNotFound)

		_, err := svc.CreateSchedule(context.Background(), input)

		require.Error(t, err)
		assert.True(t, errors.Is(err, schedule.ErrBusNotFound))
		m.scheduleRepo.AssertNotCalled(t, "Create")
		m.seatRepo.AssertNotCalled(t, "CreateBulk")
	})

	t.Run("路線が存在しなければエラー", func(t *testing.T) {
		svc, m := newScheduleService()
		m.busRepo.On("GetByID", mock.Anything, "bus-1").
			Return(&schedule.Bus{ID: "bus-1", TotalSeats: 8}, nil)
		m.routeRepo.On("GetByID", mock.Anything, "route-1").
			Return(nil, schedule.ErrRouteNotFound)

		_, err := svc.CreateSchedule(context.Background(), input)

		require.Error(t, err)
		m.scheduleRepo.AssertNotCalled(t, "Create")
	})
}

func TestScheduleService_ListRoutes(t *testing.T) {
	t.Run("limitが0以下はデフォルト値に丸める", func(t *testing.T) {
		svc, m := newScheduleService()
		m.routeRepo.On("List", mock.Anything, 20, 0).Return([]*schedule.Route{}, nil)

		_, err := svc.ListRoutes(context.Background(), 0, -5)

		require.NoError(t, err)
		m.routeRepo.AssertExpectations(t)
	})

	t.Run("limitの上限は100", func(t *testing.T) {
		svc, m := newScheduleService()
		m.routeRepo.On("List", mock.Anything, 100, 0).Return([]*schedule.Route{}, nil)

		_, err := svc.ListRoutes(context.Background(), 500, 0)

		require.NoError(t, err)
		m.routeRepo.AssertExpectations(t)
	})
}
