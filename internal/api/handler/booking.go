package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/application"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/schedule"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/ticket"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type BookSeatRequest struct {
	ScheduleID    string `json:"schedule_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	SeatID        string `json:"seat_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440001"`
	PassengerName string `json:"passenger_name" validate:"required" example:"Rahim Uddin"`
	MobileNumber  string `json:"mobile_number" validate:"required" example:"+8801712345678"`
	Email         string `json:"email" validate:"omitempty,email" example:"rahim@example.com"`
	BoardingPoint string `json:"boarding_point" example:"Dhaka Bus Terminal"`
	DroppingPoint string `json:"dropping_point" example:"Chittagong Bus Terminal"`
}

type BookSeatResponse struct {
	Success          bool    `json:"success"`
	Message          string  `json:"message"`
	BookingReference string  `json:"booking_reference,omitempty" example:"BKG20260115103000A1B2C3"`
	TicketID         string  `json:"ticket_id,omitempty"`
	TotalAmount      float64 `json:"total_amount,omitempty" example:"45.00"`
}

// 失敗分類からHTTPステータスへの対応
func statusForFailure(kind application.FailureKind) int {
	switch kind {
	case application.FailureValidation:
		return http.StatusBadRequest
	case application.FailureNotFound:
		return http.StatusNotFound
	case application.FailureConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Book godoc
// @Summary 座席を予約
// @Description 指定した運行の座席を予約し、チケットを発行します
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body BookSeatRequest true "予約情報"
// @Success 201 {object} BookSeatResponse
// @Failure 400 {object} BookSeatResponse
// @Failure 404 {object} BookSeatResponse
// @Failure 409 {object} BookSeatResponse "座席が予約不可、または並行予約に敗北"
// @Router /bookings [post]
func (h *BookingHandler) Book(c echo.Context) error {
	var req BookSeatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result := h.service.BookSeat(c.Request().Context(), application.BookSeatInput{
		ScheduleID:    req.ScheduleID,
		SeatID:        req.SeatID,
		PassengerName: req.PassengerName,
		MobileNumber:  req.MobileNumber,
		Email:         req.Email,
		BoardingPoint: req.BoardingPoint,
		DroppingPoint: req.DroppingPoint,
	})

	resp := BookSeatResponse{
		Success:          result.Success,
		Message:          result.Message,
		BookingReference: result.BookingReference,
		TicketID:         result.TicketID,
		TotalAmount:      result.TotalAmount,
	}
	if !result.Success {
		return c.JSON(statusForFailure(result.Kind), resp)
	}
	return c.JSON(http.StatusCreated, resp)
}

type SeatPlanSeatResponse struct {
	SeatID     string `json:"seat_id"`
	SeatNumber string `json:"seat_number" example:"12"`
	Row        string `json:"row" example:"3"`
	Status     string `json:"status" example:"available"`
}

type SeatPlanResponse struct {
	ScheduleID    string                 `json:"schedule_id"`
	BusName       string                 `json:"bus_name"`
	CompanyName   string                 `json:"company_name"`
	TotalSeats    int                    `json:"total_seats"`
	JourneyDate   time.Time              `json:"journey_date"`
	DepartureTime string                 `json:"departure_time" example:"07:00"`
	ArrivalTime   string                 `json:"arrival_time" example:"13:00"`
	Fare          float64                `json:"fare" example:"45.00"`
	BoardingPoint string                 `json:"boarding_point"`
	DroppingPoint string                 `json:"dropping_point"`
	Seats         []SeatPlanSeatResponse `json:"seats"`
}

// GetSeatPlan godoc
// @Summary 座席表を取得
// @Description 運行の全座席と現在の状態を返します
// @Tags bookings
// @Produce json
// @Param id path string true "スケジュールID"
// @Success 200 {object} SeatPlanResponse
// @Failure 404 {object} map[string]string
// @Router /schedules/{id}/seats [get]
func (h *BookingHandler) GetSeatPlan(c echo.Context) error {
	id := c.Param("id")
	plan, err := h.service.GetSeatPlan(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, schedule.ErrScheduleNotFound) || errors.Is(err, schedule.ErrBusNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := SeatPlanResponse{
		ScheduleID:    plan.ScheduleID,
		BusName:       plan.BusName,
		CompanyName:   plan.CompanyName,
		TotalSeats:    plan.TotalSeats,
		JourneyDate:   plan.JourneyDate,
		DepartureTime: plan.DepartureTime,
		ArrivalTime:   plan.ArrivalTime,
		Fare:          plan.Fare,
		BoardingPoint: plan.BoardingPoint,
		DroppingPoint: plan.DroppingPoint,
		Seats:         make([]SeatPlanSeatResponse, len(plan.Seats)),
	}
	for i, se := range plan.Seats {
		resp.Seats[i] = SeatPlanSeatResponse{
			SeatID: se.SeatID, SeatNumber: se.SeatNumber, Row: se.Row, Status: se.Status,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

type TicketResponse struct {
	ID               string    `json:"id"`
	PassengerID      string    `json:"passenger_id"`
	SeatID           string    `json:"seat_id"`
	BoardingPoint    string    `json:"boarding_point"`
	DroppingPoint    string    `json:"dropping_point"`
	TotalAmount      float64   `json:"total_amount" example:"45.00"`
	BookingReference string    `json:"booking_reference" example:"BKG20260115103000A1B2C3"`
	IsConfirmed      bool      `json:"is_confirmed"`
	CreatedAt        time.Time `json:"created_at"`
}

// GetTicket godoc
// @Summary チケットを取得
// @Description 予約参照番号からチケットを取得します
// @Tags bookings
// @Produce json
// @Param reference path string true "予約参照番号"
// @Success 200 {object} TicketResponse
// @Failure 404 {object} map[string]string
// @Router /tickets/{reference} [get]
func (h *BookingHandler) GetTicket(c echo.Context) error {
	reference := c.Param("reference")
	t, err := h.service.GetTicketByReference(c.Request().Context(), reference)
	if err != nil {
		if errors.Is(err, ticket.ErrTicketNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		if errors.Is(err, ticket.ErrBookingReferenceRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}

func toTicketResponse(t *ticket.Ticket) TicketResponse {
	return TicketResponse{
		ID: t.ID, PassengerID: t.PassengerID, SeatID: t.SeatID,
		BoardingPoint: t.BoardingPoint, DroppingPoint: t.DroppingPoint,
		TotalAmount: t.TotalAmount, BookingReference: t.BookingReference,
		IsConfirmed: t.IsConfirmed, CreatedAt: t.CreatedAt,
	}
}

// ListPassengerTickets godoc
// @Summary 乗客のチケット一覧を取得
// @Description 乗客IDからチケット一覧を取得します
// @Tags bookings
// @Produce json
// @Param id path string true "乗客ID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} TicketResponse
// @Router /passengers/{id}/tickets [get]
func (h *BookingHandler) ListPassengerTickets(c echo.Context) error {
	passengerID := c.Param("id")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	tickets, err := h.service.ListTicketsByPassenger(c.Request().Context(), passengerID, limit, offset)
	if err != nil {
		if errors.Is(err, ticket.ErrPassengerIDRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = toTicketResponse(t)
	}
	return c.JSON(http.StatusOK, resp)
}

// CancelTicket godoc
// @Summary チケットをキャンセル
// @Description 予約参照番号から確定済みチケットをキャンセルします
// @Tags bookings
// @Produce json
// @Param reference path string true "予約参照番号"
// @Success 200 {object} TicketResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "チケットが未確定（キャンセル済み含む）"
// @Router /tickets/{reference}/cancel [post]
func (h *BookingHandler) CancelTicket(c echo.Context) error {
	reference := c.Param("reference")
	t, err := h.service.CancelTicket(c.Request().Context(), reference)
	if err != nil {
		if errors.Is(err, ticket.ErrTicketNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		if errors.Is(err, ticket.ErrBookingReferenceRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, ticket.ErrTicketNotConfirmed) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}
