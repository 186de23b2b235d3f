package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/application"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/schedule"
)

type ScheduleHandler struct {
	service ScheduleServiceInterface
}

func NewScheduleHandler(s ScheduleServiceInterface) *ScheduleHandler {
	return &ScheduleHandler{service: s}
}

type CreateRouteRequest struct {
	FromCity                 string  `json:"from_city" validate:"required" example:"Dhaka"`
	ToCity                   string  `json:"to_city" validate:"required" example:"Chittagong"`
	DistanceKM               float64 `json:"distance_km" validate:"required,gt=0" example:"250"`
	EstimatedDurationMinutes int     `json:"estimated_duration_minutes" validate:"required,gt=0" example:"360"`
}

type RouteResponse struct {
	ID                       string  `json:"id"`
	FromCity                 string  `json:"from_city"`
	ToCity                   string  `json:"to_city"`
	DistanceKM               float64 `json:"distance_km"`
	EstimatedDurationMinutes int     `json:"estimated_duration_minutes"`
}

func toRouteResponse(r *schedule.Route) RouteResponse {
	return RouteResponse{
		ID: r.ID, FromCity: r.FromCity, ToCity: r.ToCity,
		DistanceKM:               r.DistanceKM,
		EstimatedDurationMinutes: int(r.EstimatedDuration / time.Minute),
	}
}

// CreateRoute godoc
// @Summary 路線を作成
// @Tags schedules
// @Accept json
// @Produce json
// @Param request body CreateRouteRequest true "路線情報"
// @Success 201 {object} RouteResponse
// @Failure 400 {object} map[string]string
// @Router /routes [post]
func (h *ScheduleHandler) CreateRoute(c echo.Context) error {
	var req CreateRouteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.service.CreateRoute(c.Request().Context(), application.CreateRouteInput{
		FromCity:          req.FromCity,
		ToCity:            req.ToCity,
		DistanceKM:        req.DistanceKM,
		EstimatedDuration: time.Duration(req.EstimatedDurationMinutes) * time.Minute,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toRouteResponse(r))
}

// ListRoutes godoc
// @Summary 路線一覧を取得
// @Tags schedules
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} RouteResponse
// @Router /routes [get]
func (h *ScheduleHandler) ListRoutes(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	routes, err := h.service.ListRoutes(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]RouteResponse, len(routes))
	for i, r := range routes {
		resp[i] = toRouteResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

type CreateBusRequest struct {
	CompanyName string `json:"company_name" validate:"required" example:"Green Line"`
	BusName     string `json:"bus_name" validate:"required" example:"Green Line Express"`
	BusNumber   string `json:"bus_number" validate:"required" example:"GL-101"`
	BusType     string `json:"bus_type" example:"AC"`
	TotalSeats  int    `json:"total_seats" validate:"required,gt=0" example:"40"`
}

type BusResponse struct {
	ID          string `json:"id"`
	CompanyName string `json:"company_name"`
	BusName     string `json:"bus_name"`
	BusNumber   string `json:"bus_number"`
	BusType     string `json:"bus_type"`
	TotalSeats  int    `json:"total_seats"`
}

func toBusResponse(b *schedule.Bus) BusResponse {
	return BusResponse{
		ID: b.ID, CompanyName: b.CompanyName, BusName: b.BusName,
		BusNumber: b.BusNumber, BusType: b.BusType, TotalSeats: b.TotalSeats,
	}
}

// CreateBus godoc
// @Summary 車両を作成
// @Tags schedules
// @Accept json
// @Produce json
// @Param request body CreateBusRequest true "車両情報"
// @Success 201 {object} BusResponse
// @Failure 400 {object} map[string]string
// @Router /buses [post]
func (h *ScheduleHandler) CreateBus(c echo.Context) error {
	var req CreateBusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := h.service.CreateBus(c.Request().Context(), application.CreateBusInput{
		CompanyName: req.CompanyName,
		BusName:     req.BusName,
		BusNumber:   req.BusNumber,
		BusType:     req.BusType,
		TotalSeats:  req.TotalSeats,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toBusResponse(b))
}

// ListBuses godoc
// @Summary 車両一覧を取得
// @Tags schedules
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BusResponse
// @Router /buses [get]
func (h *ScheduleHandler) ListBuses(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	buses, err := h.service.ListBuses(c.Request().Context(), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]BusResponse, len(buses))
	for i, b := range buses {
		resp[i] = toBusResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

type CreateScheduleRequest struct {
	BusID         string  `json:"bus_id" validate:"required"`
	RouteID       string  `json:"route_id" validate:"required"`
	JourneyDate   string  `json:"journey_date" validate:"required" example:"2026-01-15"`
	DepartureTime string  `json:"departure_time" validate:"required" example:"07:00"`
	ArrivalTime   string  `json:"arrival_time" validate:"required" example:"13:00"`
	Fare          float64 `json:"fare" validate:"required,gt=0" example:"45.00"`
	BoardingPoint string  `json:"boarding_point" example:"Dhaka Bus Terminal"`
	DroppingPoint string  `json:"dropping_point" example:"Chittagong Bus Terminal"`
}

type ScheduleResponse struct {
	ID            string    `json:"id"`
	BusID         string    `json:"bus_id"`
	RouteID       string    `json:"route_id"`
	JourneyDate   time.Time `json:"journey_date"`
	DepartureTime string    `json:"departure_time"`
	ArrivalTime   string    `json:"arrival_time"`
	Fare          float64   `json:"fare"`
	BoardingPoint string    `json:"boarding_point"`
	DroppingPoint string    `json:"dropping_point"`
}

func toScheduleResponse(s *schedule.BusSchedule) ScheduleResponse {
	return ScheduleResponse{
		ID: s.ID, BusID: s.BusID, RouteID: s.RouteID,
		JourneyDate: s.JourneyDate, DepartureTime: s.DepartureTime, ArrivalTime: s.ArrivalTime,
		Fare: s.Fare, BoardingPoint: s.BoardingPoint, DroppingPoint: s.DroppingPoint,
	}
}

// CreateSchedule godoc
// @Summary 運行スケジュールを作成
// @Description 運行を作成し、車両の座席数ぶんの座席を生成します
// @Tags schedules
// @Accept json
// @Produce json
// @Param request body CreateScheduleRequest true "運行情報"
// @Success 201 {object} ScheduleResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /schedules [post]
func (h *ScheduleHandler) CreateSchedule(c echo.Context) error {
	var req CreateScheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	journeyDate, err := time.Parse("2006-01-02", req.JourneyDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "乗車日はYYYY-MM-DD形式で指定してください")
	}
	s, err := h.service.CreateSchedule(c.Request().Context(), application.CreateScheduleInput{
		BusID:         req.BusID,
		RouteID:       req.RouteID,
		JourneyDate:   journeyDate,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		Fare:          req.Fare,
		BoardingPoint: req.BoardingPoint,
		DroppingPoint: req.DroppingPoint,
	})
	if err != nil {
		if errors.Is(err, schedule.ErrBusNotFound) || errors.Is(err, schedule.ErrRouteNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toScheduleResponse(s))
}

// GetSchedule godoc
// @Summary 運行スケジュールを取得
// @Tags schedules
// @Produce json
// @Param id path string true "スケジュールID"
// @Success 200 {object} ScheduleResponse
// @Failure 404 {object} map[string]string
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) GetSchedule(c echo.Context) error {
	id := c.Param("id")
	s, err := h.service.GetSchedule(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, schedule.ErrScheduleNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toScheduleResponse(s))
}
