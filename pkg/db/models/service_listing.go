package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceListing is a bookable service published by a seller.
type ServiceListing struct {
	ID          uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID    uuid.UUID     `gorm:"column:seller_id;type:uuid;not null;index"`
	Title       string        `gorm:"column:title;type:text;not null"`
	Description *string       `gorm:"column:description;type:text"`
	Category    *string       `gorm:"column:category;type:text"`
	Location    *string       `gorm:"column:location;type:text"`
	PriceCents  int64         `gorm:"column:price_cents;not null"`
	IsActive    bool          `gorm:"column:is_active;not null"`
	Slots       []ServiceSlot `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
