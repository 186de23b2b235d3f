package schedule

import (
	"strconv"
	"time"

	"github.com/sanosuguru/go-bus-seat-reservation/internal/domain/seat"
)

// seatsPerRow は1列あたりの座席数（A〜Dの4席）
const seatsPerRow = 4

// BusSchedule は特定日の1運行を表すエンティティ
// バス・路線へはIDで参照し、オブジェクトグラフは持たない
type BusSchedule struct {
	ID            string
	BusID         string
	RouteID       string
	JourneyDate   time.Time
	DepartureTime string // "15:04" 形式
	ArrivalTime   string
	Fare          float64
	BoardingPoint string
	DroppingPoint string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewBusSchedule は新しい運行スケジュールを作成する
func NewBusSchedule(busID, routeID string, journeyDate time.Time, departureTime, arrivalTime string, fare float64, boardingPoint, droppingPoint string) (*BusSchedule, error) {
	if busID == "" {
		return nil, ErrBusIDRequired
	}
	if routeID == "" {
		return nil, ErrRouteIDRequired
	}
	if fare <= 0 {
		return nil, ErrInvalidFare
	}
	now := time.Now()
	return &BusSchedule{
		BusID:         busID,
		RouteID:       routeID,
		JourneyDate:   journeyDate.Truncate(24 * time.Hour),
		DepartureTime: departureTime,
		ArrivalTime:   arrivalTime,
		Fare:          fare,
		BoardingPoint: boardingPoint,
		DroppingPoint: droppingPoint,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// MaterializeSeats は運行の座席を物理座席数ぶん生成する
// 座席番号は1始まりの連番、行ラベルは4席ごとの行序数
func (s *BusSchedule) MaterializeSeats(totalSeats int) ([]*seat.Seat, error) {
	if totalSeats <= 0 {
		return nil, ErrInvalidTotalSeats
	}
	seats := make([]*seat.Seat, 0, totalSeats)
	for i := 1; i <= totalSeats; i++ {
		row := strconv.Itoa((i-1)/seatsPerRow + 1)
		seats = append(seats, seat.NewSeat(s.ID, strconv.Itoa(i), row))
	}
	return seats, nil
}

// Bus は車両を表すエンティティ
type Bus struct {
	ID          string
	CompanyName string
	BusName     string
	BusNumber   string
	BusType     string // AC, Non-AC, Sleeper 等
	TotalSeats  int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBus は新しい車両を作成する
func NewBus(companyName, busName, busNumber, busType string, totalSeats int) (*Bus, error) {
	if companyName == "" {
		return nil, ErrCompanyNameRequired
	}
	if busName == "" {
		return nil, ErrBusNameRequired
	}
	if busNumber == "" {
		return nil, ErrBusNumberRequired
	}
	if totalSeats <= 0 {
		return nil, ErrInvalidTotalSeats
	}
	now := time.Now()
	return &Bus{
		CompanyName: companyName,
		BusName:     busName,
		BusNumber:   busNumber,
		BusType:     busType,
		TotalSeats:  totalSeats,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Route は2都市間の路線を表すエンティティ
type Route struct {
	ID                string
	FromCity          string
	ToCity            string
	DistanceKM        float64
	EstimatedDuration time.Duration
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewRoute は新しい路線を作成する
func NewRoute(fromCity, toCity string, distanceKM float64, estimatedDuration time.Duration) (*Route, error) {
	if fromCity == "" {
		return nil, ErrFromCityRequired
	}
	if toCity == "" {
		return nil, ErrToCityRequired
	}
	if distanceKM <= 0 {
		return nil, ErrInvalidDistance
	}
	if estimatedDuration <= 0 {
		return nil, ErrInvalidDuration
	}
	now := time.Now()
	return &Route{
		FromCity:          fromCity,
		ToCity:            toCity,
		DistanceKM:        distanceKM,
		EstimatedDuration: estimatedDuration,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}
