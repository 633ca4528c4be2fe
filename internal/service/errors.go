package service

import "errors"

var (
	// ErrInvalidInput marks request data the services refuse to act on.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTimingDisabled is returned when a scheduling operation hits a
	// setlist without a concert date.
	ErrTimingDisabled = errors.New("setlist has no concert date")
	// ErrInsufficientStock is returned when a sale would oversell an item.
	ErrInsufficientStock = errors.New("insufficient stock")
)
