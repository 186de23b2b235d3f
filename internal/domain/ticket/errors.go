package ticket

import "errors"

// Ticket ドメインのエラー定義
var (
	ErrTicketNotFound           = errors.New("ticket not found")
	ErrTicketAlreadyConfirmed   = errors.New("ticket is already confirmed")
	ErrTicketNotConfirmed       = errors.New("cannot cancel unconfirmed ticket")
	ErrPassengerIDRequired      = errors.New("passenger id is required")
	ErrSeatIDRequired           = errors.New("seat id is required")
	ErrInvalidTotalAmount       = errors.New("total amount must be greater than zero")
	ErrBookingReferenceRequired = errors.New("booking reference is required")
)
