package service

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNoOffers          = errors.New("no offers for selected filter")
	ErrSourceUnavailable = errors.New("offer source unavailable")
)
