package domain

import "time"

// PaymentMethod enumerates how a premium activation was paid for.
type PaymentMethod string

const (
	PaymentMethodWallet PaymentMethod = "wallet"
	PaymentMethodAdmin  PaymentMethod = "admin"
)

// PaymentStatus enumerates payment lifecycle states.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
)

// Payment records a premium activation event. Provider-side verification is
// out of scope; a completed payment is the opaque "mark user as paid" signal.
type Payment struct {
	ID          string
	UserID      string
	AmountCents int64
	Method      PaymentMethod
	Status      PaymentStatus
	Reference   string
	Country     string
	CreatedAt   time.Time
}
