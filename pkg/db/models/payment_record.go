package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentRecord is the immutable snapshot of a successful authorization.
// Refunds and transfers never mutate it; they land in settlement_events.
type PaymentRecord struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID       uuid.UUID `gorm:"column:booking_id;type:uuid;not null;uniqueIndex"`
	PaymentIntentID string    `gorm:"column:payment_intent_id;type:text;not null"`
	CustomerID      string    `gorm:"column:customer_id;type:text;not null"`
	PaymentMethodID string    `gorm:"column:payment_method_id;type:text;not null"`
	AmountCents     int64     `gorm:"column:amount_cents;not null"`
	Currency        string    `gorm:"column:currency;type:text;not null;default:'usd'"`
	CapturedAt      *time.Time `gorm:"column:captured_at"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}
