package schedule

import "errors"

// Schedule ドメインのエラー定義
var (
	ErrScheduleNotFound    = errors.New("bus schedule not found")
	ErrBusNotFound         = errors.New("bus not found")
	ErrRouteNotFound       = errors.New("route not found")
	ErrBusIDRequired       = errors.New("bus id is required")
	ErrRouteIDRequired     = errors.New("route id is required")
	ErrInvalidFare         = errors.New("fare must be greater than zero")
	ErrInvalidTotalSeats   = errors.New("total seats must be greater than zero")
	ErrCompanyNameRequired = errors.New("company name is required")
	ErrBusNameRequired     = errors.New("bus name is required")
	ErrBusNumberRequired   = errors.New("bus number is required")
	ErrFromCityRequired    = errors.New("from city is required")
	ErrToCityRequired      = errors.New("to city is required")
	ErrInvalidDistance     = errors.New("distance must be greater than zero")
	ErrInvalidDuration     = errors.New("estimated duration must be greater than zero")
)
