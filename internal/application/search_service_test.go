package application

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/schedule"
	redisinfra "github.com/sanosuguru/go-bus-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/pkg/metrics"
)

func TestSearchService_SearchAvailableBuses(t *testing.T) {
	ctx := context.Background()
	journeyDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("出発都市が空はエラー", func(t *testing.T) {
		svc := NewSearchService(new(MockScheduleRepository), new(MockBusRepository), new(MockSeatRepository), nil, nil)

		_, err := svc.SearchAvailableBuses(ctx, "", "Chittagong", journeyDate)

		assert.ErrorIs(t, err, schedule.ErrFromCityRequired)
	})

	t.Run("目的都市が空はエラー", func(t *testing.T) {
		svc := NewSearchService(new(MockScheduleRepository), new(MockBusRepository), new(MockSeatRepository), nil, nil)

		_, err := svc.SearchAvailableBuses(ctx, "Dhaka", "", journeyDate)

		assert.ErrorIs(t, err, schedule.ErrToCityRequired)
	})

	t.Run("検索結果に車両情報と空席数が付与される", func(t *testing.T) {
		scheduleRepo := new(MockScheduleRepository)
		busRepo := new(MockBusRepository)
		seatRepo := new(MockSeatRepository)
		svc := NewSearchService(scheduleRepo, busRepo, seatRepo, nil, nil)

		sch := testSchedule()
		bus := &schedule.Bus{ID: "bus-1", CompanyName: "Green Line", BusName: "Green Line Express", TotalSeats: 40}

		scheduleRepo.On("Search", ctx, "Dhaka", "Chittagong", journeyDate).
			Return([]*schedule.BusSchedule{sch}, nil)
		busRepo.On("GetByID", ctx, "bus-1").Return(bus, nil)
		seatRepo.On("CountByScheduleID", ctx, "schedule-1").Return(40, 12, nil)

		result, err := svc.SearchAvailableBuses(ctx, "Dhaka", "Chittagong", journeyDate)

		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, "Green Line Express", result[0].BusName)
		assert.Equal(t, 40, result[0].TotalSeats)
		assert.Equal(t, 12, result[0].BookedSeats)
		assert.Equal(t, 28, result[0].SeatsLeft)
		assert.Equal(t, 45.00, result[0].Fare)
	})

	t.Run("該当なしは空スライスを返す", func(t *testing.T) {
		scheduleRepo := new(MockScheduleRepository)
		svc := NewSearchService(scheduleRepo, new(MockBusRepository), new(MockSeatRepository), nil, nil)

		scheduleRepo.On("Search", ctx, "Dhaka", "Sylhet", journeyDate).
			Return([]*schedule.BusSchedule{}, nil)

		result, err := svc.SearchAvailableBuses(ctx, "Dhaka", "Sylhet", journeyDate)

		require.NoError(t, err)
		assert.Empty(t, result)
	})
}

func TestSearchService_SeatsLeftCache(t *testing.T) {
	ctx := context.Background()

	t.Run("キャッシュヒット時はDBを読まない", func(t *testing.T) {
		scheduleRepo := new(MockScheduleRepository)
		busRepo := new(MockBusRepository)
		seatRepo := new(MockSeatRepository)
		cache := new(MockAvailabilityCache)
		svc := NewSearchService(scheduleRepo, busRepo, seatRepo, cache, nil)

		sch := testSchedule()
		bus := &schedule.Bus{ID: "bus-1", BusName: "Green Line Express", TotalSeats: 40}

		scheduleRepo.On("GetByID", ctx, "schedule-1").Return(sch, nil)
		busRepo.On("GetByID", ctx, "bus-1").Return(bus, nil)
		cache.On("GetSeatsLeft", ctx, "schedule-1").Return(28, nil)

		result, err := svc.GetBusByScheduleID(ctx, "schedule-1")

		require.NoError(t, err)
		assert.Equal(t, 28, result.SeatsLeft)
		assert.Equal(t, 12, result.BookedSeats)
		seatRepo.AssertNotCalled(t, "CountByScheduleID")
	})

	t.Run("キャッシュミス時はDBから計算してキャッシュに書く", func(t *testing.T) {
		scheduleRepo := new(MockScheduleRepository)
		busRepo := new(MockBusRepository)
		seatRepo := new(MockSeatRepository)
		cache := new(MockAvailabilityCache)
		svc := NewSearchService(scheduleRepo, busRepo, seatRepo, cache, nil)

		sch := testSchedule()
		bus := &schedule.Bus{ID: "bus-1", BusName: "Green Line Express", TotalSeats: 40}

		scheduleRepo.On("GetByID", ctx, "schedule-1").Return(sch, nil)
		busRepo.On("GetByID", ctx, "bus-1").Return(bus, nil)
		cache.On("GetSeatsLeft", ctx, "schedule-1").Return(0, redisinfra.ErrCacheMiss)
		seatRepo.On("CountByScheduleID", ctx, "schedule-1").Return(40, 15, nil)
		cache.On("SetSeatsLeft", ctx, "schedule-1", 25, mock.AnythingOfType("time.Duration")).Return(nil)

		result, err := svc.GetBusByScheduleID(ctx, "schedule-1")

		require.NoError(t, err)
		assert.Equal(t, 25, result.SeatsLeft)
		cache.AssertCalled(t, "SetSeatsLeft", ctx, "schedule-1", 25, mock.AnythingOfType("time.Duration"))
	})

	t.Run("キャッシュのヒットとミスがメトリクスに記録される", func(t *testing.T) {
		scheduleRepo := new(MockScheduleRepository)
		busRepo := new(MockBusRepository)
		seatRepo := new(MockSeatRepository)
		cache := new(MockAvailabilityCache)
		m := metrics.NewWithRegistry(prometheus.NewRegistry())
		svc := NewSearchService(scheduleRepo, busRepo, seatRepo, cache, m)

		sch := testSchedule()
		bus := &schedule.Bus{ID: "bus-1", BusName: "Green Line Express", TotalSeats: 40}

		scheduleRepo.On("GetByID", ctx, "schedule-1").Return(sch, nil)
		busRepo.On("GetByID", ctx, "bus-1").Return(bus, nil)
		cache.On("GetSeatsLeft", ctx, "schedule-1").Return(0, redisinfra.ErrCacheMiss).Once()
		cache.On("GetSeatsLeft", ctx, "schedule-1").Return(25, nil)
		seatRepo.On("CountByScheduleID", ctx, "schedule-1").Return(40, 15, nil)
		cache.On("SetSeatsLeft", ctx, "schedule-1", 25, mock.AnythingOfType("time.Duration")).Return(nil)

		// 1回目はミス、2回目はヒット
		_, err := svc.GetBusByScheduleID(ctx, "schedule-1")
		require.NoError(t, err)
		_, err = svc.GetBusByScheduleID(ctx, "schedule-1")
		require.NoError(t, err)

		assert.Equal(t, 1.0, testutil.ToFloat64(m.AvailabilityCacheTotal.WithLabelValues("miss")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.AvailabilityCacheTotal.WithLabelValues("hit")))
	})
}
