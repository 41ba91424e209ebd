package models

import (
	"time"

	"github.com/google/uuid"
)

// SellerAccount maps a seller to their processor identities.
type SellerAccount struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Email            string    `gorm:"column:email;type:text;not null"`
	StripeAccountID  *string   `gorm:"column:stripe_account_id;type:text"`
	StripeCustomerID *string   `gorm:"column:stripe_customer_id;type:text"`
	ChargesEnabled   bool      `gorm:"column:charges_enabled;not null;default:false"`
	DetailsSubmitted bool      `gorm:"column:details_submitted;not null;default:false"`
	PopularityScore  int64     `gorm:"column:popularity_score;not null;default:0"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// OnboardingComplete reports whether transfers can target this seller.
func (s SellerAccount) OnboardingComplete() bool {
	return s.StripeAccountID != nil && *s.StripeAccountID != "" && s.ChargesEnabled && s.DetailsSubmitted
}
