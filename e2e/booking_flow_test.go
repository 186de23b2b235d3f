package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingRefPattern = regexp.MustCompile(`^BKG\d{14}[A-Z0-9]{6}$`)

type fixture struct {
	RouteID    string
	BusID      string
	ScheduleID string
	SeatIDs    []string
}

// setupSchedule は路線・車両・運行を作成し、生成された座席IDを返す
func setupSchedule(t *testing.T, server *TestServer, totalSeats int) *fixture {
	t.Helper()

	rec := server.Request("POST", "/api/v1/routes", map[string]interface{}{
		"from_city":                  "Dhaka",
		"to_city":                    "Chittagong",
		"distance_km":                250,
		"estimated_duration_minutes": 360,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var route struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &route))

	rec = server.Request("POST", "/api/v1/buses", map[string]interface{}{
		"company_name": "Green Line",
		"bus_name":     "Green Line Express",
		"bus_number":   fmt.Sprintf("GL-%d", time.Now().UnixNano()%100000),
		"bus_type":     "AC",
		"total_seats":  totalSeats,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var bus struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bus))

	journeyDate := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	rec = server.Request("POST", "/api/v1/schedules", map[string]interface{}{
		"bus_id":         bus.ID,
		"route_id":       route.ID,
		"journey_date":   journeyDate,
		"departure_time": "07:00",
		"arrival_time":   "13:00",
		"fare":           45.00,
		"boarding_point": "Dhaka Bus Terminal",
		"dropping_point": "Chittagong Bus Terminal",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sched struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sched))

	rec = server.Request("GET", "/api/v1/schedules/"+sched.ID+"/seats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var plan struct {
		Seats []struct {
			SeatID string `json:"seat_id"`
			Status string `json:"status"`
		} `json:"seats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	require.Len(t, plan.Seats, totalSeats)

	seatIDs := make([]string, len(plan.Seats))
	for i, s := range plan.Seats {
		seatIDs[i] = s.SeatID
	}
	return &fixture{RouteID: route.ID, BusID: bus.ID, ScheduleID: sched.ID, SeatIDs: seatIDs}
}

func bookingRequest(fx *fixture, seatID string) map[string]interface{} {
	return map[string]interface{}{
		"schedule_id":    fx.ScheduleID,
		"seat_id":        seatID,
		"passenger_name": "Rahim Uddin",
		"mobile_number":  "+8801712345678",
		"boarding_point": "Dhaka Bus Terminal",
		"dropping_point": "Chittagong Bus Terminal",
	}
}

func TestE2E_HealthCheck(t *testing.T) {
	server := getTestServer(t)

	rec := server.Request("GET", "/api/v1/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestE2E_BookingFlow(t *testing.T) {
	server := getTestServer(t)
	fx := setupSchedule(t, server, 8)

	// 予約成功
	rec := server.Request("POST", "/api/v1/bookings", bookingRequest(fx, fx.SeatIDs[0]))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Success          bool    `json:"success"`
		Message          string  `json:"message"`
		BookingReference string  `json:"booking_reference"`
		TotalAmount      float64 `json:"total_amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Seat booked successfully", resp.Message)
	assert.Equal(t, 45.00, resp.TotalAmount)
	assert.Regexp(t, bookingRefPattern, resp.BookingReference)

	// 座席表で販売済みになっている
	rec = server.Request("GET", "/api/v1/schedules/"+fx.ScheduleID+"/seats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var plan struct {
		Seats []struct {
			SeatID string `json:"seat_id"`
			Status string `json:"status"`
		} `json:"seats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	for _, s := range plan.Seats {
		if s.SeatID == fx.SeatIDs[0] {
			assert.Equal(t, "sold", s.Status)
		}
	}

	// 予約番号からチケットを取得できる
	rec = server.Request("GET", "/api/v1/tickets/"+resp.BookingReference, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tk struct {
		BookingReference string  `json:"booking_reference"`
		TotalAmount      float64 `json:"total_amount"`
		IsConfirmed      bool    `json:"is_confirmed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tk))
	assert.Equal(t, resp.BookingReference, tk.BookingReference)
	assert.Equal(t, 45.00, tk.TotalAmount)
	assert.True(t, tk.IsConfirmed)
}

func TestE2E_DoubleBookingRejected(t *testing.T) {
	server := getTestServer(t)
	fx := setupSchedule(t, server, 4)

	rec := server.Request("POST", "/api/v1/bookings", bookingRequest(fx, fx.SeatIDs[0]))
	require.Equal(t, http.StatusCreated, rec.Code)

	// 同じ座席への2回目の予約は409
	rec = server.Request("POST", "/api/v1/bookings", bookingRequest(fx, fx.SeatIDs[0]))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "is not available. Current status: sold")
}

func TestE2E_SeatNotFound(t *testing.T) {
	server := getTestServer(t)
	fx := setupSchedule(t, server, 4)

	req := bookingRequest(fx, "00000000-0000-0000-0000-000000000000")
	rec := server.Request("POST", "/api/v1/bookings", req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Seat not found", resp.Message)
}

func TestE2E_ExistingPassengerReused(t *testing.T) {
	server := getTestServer(t)
	fx := setupSchedule(t, server, 4)

	rec := server.Request("POST", "/api/v1/bookings", bookingRequest(fx, fx.SeatIDs[0]))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = server.Request("POST", "/api/v1/bookings", bookingRequest(fx, fx.SeatIDs[1]))
	require.Equal(t, http.StatusCreated, rec.Code)

	// 同じ携帯電話番号の乗客は1人だけ
	var count int
	err := testDB.QueryRow(
		"SELECT COUNT(*) FROM passengers WHERE mobile_number = $1", "+8801712345678",
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestE2E_ConcurrentBookingSingleWinner(t *testing.T) {
	server := getTestServer(t)
	fx := setupSchedule(t, server, 4)

	const attempts = 10
	results := make([]*httptest.ResponseRecorder, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := bookingRequest(fx, fx.SeatIDs[0])
			body["mobile_number"] = fmt.Sprintf("+88017000000%02d", i)
			results[i] = server.Request("POST", "/api/v1/bookings", body)
		}(i)
	}
	wg.Wait()

	// 勝者はちょうど1人、残りは全て競合で失敗する
	winners := 0
	for _, rec := range results {
		switch rec.Code {
		case http.StatusCreated:
			winners++
		case http.StatusConflict:
		default:
			t.Errorf("想定外のステータス: %d body=%s", rec.Code, rec.Body.String())
		}
	}
	assert.Equal(t, 1, winners)

	// 発行されたチケットも1枚だけ
	var count int
	err := testDB.QueryRow("SELECT COUNT(*) FROM tickets WHERE seat_id = $1", fx.SeatIDs[0]).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestE2E_CancelTicketAndPassengerHistory(t *testing.T) {
	server := getTestServer(t)
	fx := setupSchedule(t, server, 4)

	rec := server.Request("POST", "/api/v1/bookings", bookingRequest(fx, fx.SeatIDs[0]))
	require.Equal(t, http.StatusCreated, rec.Code)
	var booked struct {
		BookingReference string `json:"booking_reference"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booked))

	rec = server.Request("GET", "/api/v1/tickets/"+booked.BookingReference, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var tk struct {
		PassengerID string `json:"passenger_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tk))

	// 乗客のチケット履歴に現れる
	rec = server.Request("GET", "/api/v1/passengers/"+tk.PassengerID+"/tickets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []struct {
		BookingReference string `json:"booking_reference"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, booked.BookingReference, history[0].BookingReference)

	// キャンセルは1回だけ成功し、2回目は409
	rec = server.Request("POST", "/api/v1/tickets/"+booked.BookingReference+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cancelled struct {
		IsConfirmed bool `json:"is_confirmed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cancelled))
	assert.False(t, cancelled.IsConfirmed)

	rec = server.Request("POST", "/api/v1/tickets/"+booked.BookingReference+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestE2E_SearchAvailableBuses(t *testing.T) {
	server := getTestServer(t)
	fx := setupSchedule(t, server, 4)

	journeyDate := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	rec := server.Request("GET", "/api/v1/search?from=dhaka&to=CHITTAGONG&date="+journeyDate, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var buses []struct {
		ScheduleID string `json:"schedule_id"`
		SeatsLeft  int    `json:"seats_left"`
		TotalSeats int    `json:"total_seats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &buses))
	require.Len(t, buses, 1)
	assert.Equal(t, fx.ScheduleID, buses[0].ScheduleID)
	assert.Equal(t, 4, buses[0].TotalSeats)
}
