package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/application"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/schedule"
)

type SearchHandler struct {
	service SearchServiceInterface
}

func NewSearchHandler(s SearchServiceInterface) *SearchHandler {
	return &SearchHandler{service: s}
}

type AvailableBusResponse struct {
	ScheduleID    string    `json:"schedule_id"`
	CompanyName   string    `json:"company_name" example:"Green Line"`
	BusName       string    `json:"bus_name" example:"Green Line Express"`
	BusNumber     string    `json:"bus_number" example:"GL-101"`
	BusType       string    `json:"bus_type" example:"AC"`
	JourneyDate   time.Time `json:"journey_date"`
	DepartureTime string    `json:"departure_time" example:"07:00"`
	ArrivalTime   string    `json:"arrival_time" example:"13:00"`
	TotalSeats    int       `json:"total_seats" example:"40"`
	BookedSeats   int       `json:"booked_seats" example:"12"`
	SeatsLeft     int       `json:"seats_left" example:"28"`
	Fare          float64   `json:"fare" example:"45.00"`
	BoardingPoint string    `json:"boarding_point"`
	DroppingPoint string    `json:"dropping_point"`
}

func toAvailableBusResponse(b *application.AvailableBus) AvailableBusResponse {
	return AvailableBusResponse{
		ScheduleID: b.ScheduleID, CompanyName: b.CompanyName, BusName: b.BusName,
		BusNumber: b.BusNumber, BusType: b.BusType, JourneyDate: b.JourneyDate,
		DepartureTime: b.DepartureTime, ArrivalTime: b.ArrivalTime,
		TotalSeats: b.TotalSeats, BookedSeats: b.BookedSeats, SeatsLeft: b.SeatsLeft,
		Fare: b.Fare, BoardingPoint: b.BoardingPoint, DroppingPoint: b.DroppingPoint,
	}
}

// Search godoc
// @Summary 運行を検索
// @Description 出発地・目的地・乗車日で運行を検索します
// @Tags search
// @Produce json
// @Param from query string true "出発都市"
// @Param to query string true "目的都市"
// @Param date query string true "乗車日（YYYY-MM-DD）"
// @Success 200 {array} AvailableBusResponse
// @Failure 400 {object} map[string]string
// @Router /search [get]
func (h *SearchHandler) Search(c echo.Context) error {
	fromCity := c.QueryParam("from")
	toCity := c.QueryParam("to")
	dateStr := c.QueryParam("date")

	journeyDate, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "乗車日はYYYY-MM-DD形式で指定してください")
	}

	buses, err := h.service.SearchAvailableBuses(c.Request().Context(), fromCity, toCity, journeyDate)
	if err != nil {
		if errors.Is(err, schedule.ErrFromCityRequired) || errors.Is(err, schedule.ErrToCityRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]AvailableBusResponse, len(buses))
	for i, b := range buses {
		resp[i] = toAvailableBusResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByScheduleID godoc
// @Summary 運行サマリーを取得
// @Description 指定した運行の車両情報と空席数を返します
// @Tags search
// @Produce json
// @Param id path string true "スケジュールID"
// @Success 200 {object} AvailableBusResponse
// @Failure 404 {object} map[string]string
// @Router /schedules/{id}/summary [get]
func (h *SearchHandler) GetByScheduleID(c echo.Context) error {
	id := c.Param("id")
	b, err := h.service.GetBusByScheduleID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, schedule.ErrScheduleNotFound) || errors.Is(err, schedule.ErrBusNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toAvailableBusResponse(b))
}
