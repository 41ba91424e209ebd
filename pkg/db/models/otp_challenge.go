package models

import (
	"time"

	"github.com/google/uuid"
)

// OtpChallenge holds the single outstanding code for a subject. Issuing a new
// code replaces the old one; verification deletes the row.
type OtpChallenge struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Subject   string    `gorm:"column:subject;type:text;not null;uniqueIndex"`
	Code      string    `gorm:"column:code;type:text;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
