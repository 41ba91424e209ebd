package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nayeemhasan/glamspot-backend/pkg/enums"
)

// Booking ties a buyer to a claimed service slot and carries settlement state.
type Booking struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID         uuid.UUID            `gorm:"column:buyer_id;type:uuid;not null;index"`
	SellerID        uuid.UUID            `gorm:"column:seller_id;type:uuid;not null;index"`
	ServiceID       uuid.UUID            `gorm:"column:service_id;type:uuid;not null;index"`
	SlotLabel       string               `gorm:"column:slot_label;type:text;not null"`
	PriceCents      int64                `gorm:"column:price_cents;not null"`
	Approval        enums.ApprovalStatus `gorm:"column:approval;type:text;not null;default:'pending'"`
	Status          enums.BookingStatus  `gorm:"column:status;type:text;not null;default:'created'"`
	PaymentIntentID *string              `gorm:"column:payment_intent_id;type:text"`
	IsPaid          bool                 `gorm:"column:is_paid;not null;default:false"`
	CustomerName    string               `gorm:"column:customer_name;type:text;not null"`
	CustomerEmail   string               `gorm:"column:customer_email;type:text;not null"`
	CustomerPhone   *string              `gorm:"column:customer_phone;type:text"`
	Notes           *string              `gorm:"column:notes;type:text"`
	CompletedAt     *time.Time           `gorm:"column:completed_at"`
	CancelledAt     *time.Time           `gorm:"column:cancelled_at"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
