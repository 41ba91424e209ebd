package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nayeemhasan/glamspot-backend/pkg/enums"
)

// SettlementEvent records an immutable money lifecycle event tied to a booking.
type SettlementEvent struct {
	ID          uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID   uuid.UUID                 `gorm:"column:booking_id;type:uuid;not null;index"`
	Type        enums.SettlementEventType `gorm:"column:type;type:text;not null"`
	AmountCents int64                     `gorm:"column:amount_cents;not null"`
	Reference   string                    `gorm:"column:reference;type:text;not null"`
	Metadata    json.RawMessage           `gorm:"column:metadata;type:jsonb"`
	CreatedAt   time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
