package passenger

import "errors"

// Passenger ドメインのエラー定義
var (
	ErrPassengerNotFound    = errors.New("passenger not found")
	ErrNameRequired         = errors.New("passenger name is required")
	ErrMobileNumberRequired = errors.New("mobile number is required")
)
