package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nayeemhasan/glamspot-backend/pkg/enums"
)

// ServiceSlot is one bookable time slot on a service listing. The composite
// unique index keeps a label claimable exactly once per service.
type ServiceSlot struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ServiceID uuid.UUID        `gorm:"column:service_id;type:uuid;not null;uniqueIndex:uq_service_slots_service_label"`
	Label     string           `gorm:"column:label;type:text;not null;uniqueIndex:uq_service_slots_service_label"`
	Status    enums.SlotStatus `gorm:"column:status;type:text;not null;default:'available'"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
