package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrEmailTaken       = errors.New("email already registered")
	ErrQuotaExceeded    = errors.New("quota exceeded")
	ErrAlreadyPremium   = errors.New("user already premium")
	ErrDuplicatePayment = errors.New("payment reference already processed")
	ErrProviderFailure  = errors.New("provider failure")
)
