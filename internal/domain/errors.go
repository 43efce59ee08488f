package domain

import "errors"

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrOutOfRange        = errors.New("date outside allowed range")
	ErrNonNumericInput   = errors.New("you must enter a numeric value only")
	ErrEmptyInput        = errors.New("no value entered")
	ErrUserCancelled     = errors.New("cancelled by user")
	ErrInvalidState      = errors.New("invalid selection state")
	ErrUnknownStatistic  = errors.New("unknown statistic")
	ErrNotFound          = errors.New("not found")
	ErrDateRangeRequired = errors.New("date range is required")
)
