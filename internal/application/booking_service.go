package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/passenger"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/schedule"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/ticket"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/infrastructure/rabbitmq"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-bus-seat-reservation/internal/pkg/metrics"
)

// FailureKind は予約失敗の分類を表す
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureValidation FailureKind = "validation"
	FailureNotFound   FailureKind = "not_found"
	FailureConflict   FailureKind = "conflict"
	FailureInternal   FailureKind = "internal"
)

// BookSeatInput は予約リクエストの入力を表す
type BookSeatInput struct {
	ScheduleID    string
	SeatID        string
	PassengerName string
	MobileNumber  string
	Email         string
	BoardingPoint string
	DroppingPoint string
}

// BookSeatResult は予約試行の結果を表す
// 成否は常にこの値で返し、エラーとしては伝播させない
type BookSeatResult struct {
	Success          bool
	Message          string
	Kind             FailureKind
	BookingReference string
	TicketID         string
	TotalAmount      float64
}

// BookingEventPublisher はコミット後の予約確定イベント発行インターフェース
type BookingEventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, ev rabbitmq.BookingConfirmedEvent) error
}

// AvailabilityCache は空席数キャッシュのインターフェース
type AvailabilityCache interface {
	GetSeatsLeft(ctx context.Context, scheduleID string) (int, error)
	SetSeatsLeft(ctx context.Context, scheduleID string, count int, ttl time.Duration) error
	Invalidate(ctx context.Context, scheduleID string) error
}

// BookingService は1回の予約試行をコミットかロールバックの単一の結末まで駆動する
// 排他制御はアプリケーション層では行わず、SERIALIZABLEトランザクションに委譲する
type BookingService struct {
	txManager     transaction.Manager
	seatRepo      seat.Repository
	passengerRepo passenger.Repository
	ticketRepo    ticket.Repository
	scheduleRepo  schedule.Repository
	busRepo       schedule.BusRepository
	evaluator     *booking.Service
	cache         AvailabilityCache
	publisher     BookingEventPublisher
	metrics       *metrics.Metrics
}

// NewBookingService は新しいBookingServiceを作成する
// cache, publisher, metrics は nil を許容する
func NewBookingService(
	txManager transaction.Manager,
	sr seat.Repository,
	pr passenger.Repository,
	tr ticket.Repository,
	scr schedule.Repository,
	br schedule.BusRepository,
	evaluator *booking.Service,
	cache AvailabilityCache,
	publisher BookingEventPublisher,
	m *metrics.Metrics,
) *BookingService {
	return &BookingService{
		txManager:     txManager,
		seatRepo:      sr,
		passengerRepo: pr,
		ticketRepo:    tr,
		scheduleRepo:  scr,
		busRepo:       br,
		evaluator:     evaluator,
		cache:         cache,
		publisher:     publisher,
		metrics:       m,
	}
}

func failure(kind FailureKind, message string) BookSeatResult {
	return BookSeatResult{Success: false, Message: message, Kind: kind}
}

// txFailure はトランザクション内で起きたエラーを結果に変換する
// SERIALIZABLE の敗者は行ロック待ちの読み取り時点で SQLSTATE 40001 を
// 受け取ることがあるため、コミット時だけでなく各ステップで競合を判定する
func txFailure(msg string, err error, fields ...zap.Field) BookSeatResult {
	if postgres.IsSerializationFailure(err) {
		return failure(FailureConflict, "Seat was taken by a concurrent booking. Please try again")
	}
	logger.Error(msg, append(fields, zap.Error(err))...)
	return failure(FailureInternal, "An error occurred while booking the seat")
}

// BookSeat は1件の予約試行を実行する
// 失敗は常に結果値で返し、途中で開いたトランザクションは必ずロールバックされる
func (s *BookingService) BookSeat(ctx context.Context, input BookSeatInput) BookSeatResult {
	start := time.Now()
	result := s.bookSeat(ctx, input)

	if s.metrics != nil {
		status := "success"
		if !result.Success {
			status = string(result.Kind)
		}
		s.metrics.BookingsTotal.WithLabelValues(status).Inc()
		s.metrics.BookingDuration.Observe(time.Since(start).Seconds())
	}

	if result.Success {
		s.afterCommit(ctx, input, result)
	}
	return result
}

func (s *BookingService) bookSeat(ctx context.Context, input BookSeatInput) BookSeatResult {
	// 入力検証はトランザクションを開く前に行う
	if input.ScheduleID == "" {
		return failure(FailureValidation, "Invalid bus schedule")
	}
	if input.SeatID == "" {
		return failure(FailureValidation, "Invalid seat")
	}

	tx, err := s.txManager.BeginSerializable(ctx)
	if err != nil {
		logger.Error("トランザクション開始に失敗", zap.Error(err))
		return failure(FailureInternal, "An error occurred while booking the seat")
	}
	// コミット成功後のRollbackは安全なno-op
	defer tx.Rollback()

	// 行ロック付きで座席を取得する
	se, err := s.seatRepo.GetByIDForUpdate(ctx, tx, input.SeatID)
	if err != nil {
		if errors.Is(err, seat.ErrSeatNotFound) {
			return failure(FailureNotFound, "Seat not found")
		}
		return txFailure("座席取得に失敗", err, zap.String("seat_id", input.SeatID))
	}

	if !s.evaluator.CanBookSeat(se) {
		return failure(FailureConflict,
			fmt.Sprintf("Seat %s is not available. Current status: %s", se.SeatNumber, se.Status))
	}

	// 乗客を携帯電話番号で解決し、いなければ同一トランザクション内で作成する
	p, err := s.passengerRepo.FindByMobileNumber(ctx, tx, input.MobileNumber)
	if err != nil {
		if !errors.Is(err, passenger.ErrPassengerNotFound) {
			return txFailure("乗客検索に失敗", err)
		}
		p, err = passenger.NewPassenger(input.PassengerName, input.MobileNumber, input.Email)
		if err != nil {
			return failure(FailureValidation, err.Error())
		}
		if err := s.passengerRepo.Create(ctx, tx, p); err != nil {
			return txFailure("乗客作成に失敗", err)
		}
	}

	// 運賃はスケジュールの値を正とする。同一トランザクション内で読む
	sch, err := s.scheduleRepo.GetByIDInTx(ctx, tx, input.ScheduleID)
	if err != nil {
		if errors.Is(err, schedule.ErrScheduleNotFound) {
			return failure(FailureNotFound, "Bus schedule not found")
		}
		return txFailure("スケジュール取得に失敗", err)
	}

	t, err := s.evaluator.BookSeat(se, p, input.BoardingPoint, input.DroppingPoint, sch.Fare)
	if err != nil {
		if errors.Is(err, seat.ErrSeatNotAvailable) {
			return failure(FailureConflict,
				fmt.Sprintf("Seat %s is not available. Current status: %s", se.SeatNumber, se.Status))
		}
		return failure(FailureInternal, "An error occurred while booking the seat")
	}

	// チケット確定と座席の販売済み遷移は同一トランザクション内で完結させる
	if err := t.Confirm(); err != nil {
		return failure(FailureInternal, "An error occurred while booking the seat")
	}
	if err := se.MarkAsSold(); err != nil {
		return failure(FailureInternal, "An error occurred while booking the seat")
	}

	if err := s.ticketRepo.Create(ctx, tx, t); err != nil {
		return txFailure("チケット作成に失敗", err)
	}
	if err := s.seatRepo.Update(ctx, tx, se); err != nil {
		return txFailure("座席更新に失敗", err)
	}

	// 直列化競合は敗者側の正常な結末。リトライはせず呼び出し元に委ねる
	if err := tx.Commit(); err != nil {
		return txFailure("コミットに失敗", err)
	}

	return BookSeatResult{
		Success:          true,
		Message:          "Seat booked successfully",
		BookingReference: t.BookingReference,
		TicketID:         t.ID,
		TotalAmount:      t.TotalAmount,
	}
}

// afterCommit はコミット後のベストエフォート処理
// 失敗してもログに残すのみで予約結果には影響させない
func (s *BookingService) afterCommit(ctx context.Context, input BookSeatInput, result BookSeatResult) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, input.ScheduleID); err != nil {
			logger.Warn("空席数キャッシュの無効化に失敗", zap.Error(err))
		}
	}
	if s.publisher != nil {
		ev := rabbitmq.BookingConfirmedEvent{
			ScheduleID:       input.ScheduleID,
			SeatID:           input.SeatID,
			TicketID:         result.TicketID,
			BookingReference: result.BookingReference,
			PassengerName:    input.PassengerName,
			MobileNumber:     input.MobileNumber,
			BoardingPoint:    input.BoardingPoint,
			DroppingPoint:    input.DroppingPoint,
			TotalAmount:      result.TotalAmount,
			ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.publisher.PublishBookingConfirmed(ctx, ev); err != nil {
			logger.Warn("予約確定イベントの発行に失敗",
				zap.String("booking_reference", result.BookingReference), zap.Error(err))
		}
	}
}

// GetTicketByReference は予約参照番号からチケットを取得する
func (s *BookingService) GetTicketByReference(ctx context.Context, reference string) (*ticket.Ticket, error) {
	if reference == "" {
		return nil, ticket.ErrBookingReferenceRequired
	}
	return s.ticketRepo.GetByBookingReference(ctx, reference)
}

// ListTicketsByPassenger は乗客のチケット一覧を取得する
func (s *BookingService) ListTicketsByPassenger(ctx context.Context, passengerID string, limit, offset int) ([]*ticket.Ticket, error) {
	if passengerID == "" {
		return nil, ticket.ErrPassengerIDRequired
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.ticketRepo.GetByPassengerID(ctx, passengerID, limit, offset)
}

// CancelTicket は確定済みチケットをキャンセルする
// 座席は販売済みの終端状態のままとなり、再販はしない
func (s *BookingService) CancelTicket(ctx context.Context, reference string) (*ticket.Ticket, error) {
	if reference == "" {
		return nil, ticket.ErrBookingReferenceRequired
	}
	t, err := s.ticketRepo.GetByBookingReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if err := t.Cancel(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.ticketRepo.Update(ctx, tx, t); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	logger.Info("チケットをキャンセルしました",
		zap.String("booking_reference", t.BookingReference), zap.String("ticket_id", t.ID))
	return t, nil
}

// SeatInfo は座席表の1座席分の読み取り専用投影
type SeatInfo struct {
	SeatID     string
	SeatNumber string
	Row        string
	Status     string
}

// SeatPlan は運行1件分の座席表投影
type SeatPlan struct {
	ScheduleID    string
	BusName       string
	CompanyName   string
	TotalSeats    int
	JourneyDate   time.Time
	DepartureTime string
	ArrivalTime   string
	Fare          float64
	BoardingPoint string
	DroppingPoint string
	Seats         []SeatInfo
}

// GetSeatPlan は運行の座席表を返す
// 表示専用であり、トランザクションも行ロックも使わない
func (s *BookingService) GetSeatPlan(ctx context.Context, scheduleID string) (*SeatPlan, error) {
	sch, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	bus, err := s.busRepo.GetByID(ctx, sch.BusID)
	if err != nil {
		return nil, err
	}
	seats, err := s.seatRepo.GetByScheduleID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	plan := &SeatPlan{
		ScheduleID:    sch.ID,
		BusName:       bus.BusName,
		CompanyName:   bus.CompanyName,
		TotalSeats:    bus.TotalSeats,
		JourneyDate:   sch.JourneyDate,
		DepartureTime: sch.DepartureTime,
		ArrivalTime:   sch.ArrivalTime,
		Fare:          sch.Fare,
		BoardingPoint: sch.BoardingPoint,
		DroppingPoint: sch.DroppingPoint,
		Seats:         make([]SeatInfo, len(seats)),
	}
	for i, se := range seats {
		plan.Seats[i] = SeatInfo{
			SeatID:     se.ID,
			SeatNumber: se.SeatNumber,
			Row:        se.Row,
			Status:     string(se.Status),
		}
	}
	return plan, nil
}
