package cron

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nayeemhasan/glamspot-backend/internal/accounts"
	"github.com/nayeemhasan/glamspot-backend/internal/bookings"
	"github.com/nayeemhasan/glamspot-backend/pkg/db/models"
	"github.com/nayeemhasan/glamspot-backend/pkg/enums"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
)

func newJobTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:cronjob_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS bookings (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  service_id TEXT NOT NULL,
  slot_label TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  approval TEXT NOT NULL DEFAULT 'pending',
  status TEXT NOT NULL DEFAULT 'created',
  payment_intent_id TEXT,
  is_paid INTEGER NOT NULL DEFAULT 0,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_phone TEXT,
  notes TEXT,
  completed_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS seller_accounts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL,
  stripe_account_id TEXT,
  stripe_customer_id TEXT,
  charges_enabled INTEGER NOT NULL DEFAULT 0,
  details_submitted INTEGER NOT NULL DEFAULT 0,
  popularity_score INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	if err := db.Exec(ddl).Error; err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return db
}

func seedCompletedBooking(t *testing.T, db *gorm.DB, sellerID uuid.UUID, completedAt time.Time) {
	t.Helper()
	booking := models.Booking{
		ID:            uuid.New(),
		BuyerID:       uuid.New(),
		SellerID:      sellerID,
		ServiceID:     uuid.New(),
		SlotLabel:     "10:00",
		PriceCents:    5000,
		Approval:      enums.ApprovalStatusConfirmed,
		Status:        enums.BookingStatusCompleted,
		IsPaid:        true,
		CustomerName:  "Dana Buyer",
		CustomerEmail: "dana@example.com",
		CompletedAt:   &completedAt,
	}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
}

func seedSeller(t *testing.T, db *gorm.DB, sellerID uuid.UUID, score int64) {
	t.Helper()
	acct := models.SellerAccount{
		ID:              uuid.New(),
		UserID:          sellerID,
		Email:           "seller@example.com",
		PopularityScore: score,
	}
	if err := db.Create(&acct).Error; err != nil {
		t.Fatalf("seed seller: %v", err)
	}
}

func TestPopularSellersJobCountsRecentCompletions(t *testing.T) {
	t.Parallel()

	db := newJobTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})
	accountRepo := accounts.NewRepository(db)

	busy := uuid.New()
	idle := uuid.New()
	seedSeller(t, db, busy, 0)
	seedSeller(t, db, idle, 7)

	now := time.Now().UTC()
	seedCompletedBooking(t, db, busy, now.Add(-24*time.Hour))
	seedCompletedBooking(t, db, busy, now.Add(-48*time.Hour))
	// Outside the window: must not count.
	seedCompletedBooking(t, db, busy, now.Add(-40*24*time.Hour))

	job, err := NewPopularSellersJob(bookings.NewRepository(db), accountRepo, logg)
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	acct, err := accountRepo.FindByUserID(context.Background(), busy)
	if err != nil {
		t.Fatalf("load busy seller: %v", err)
	}
	if acct.PopularityScore != 2 {
		t.Fatalf("expected score 2, got %d", acct.PopularityScore)
	}

	// No recent completions: score untouched this cycle.
	idleAcct, err := accountRepo.FindByUserID(context.Background(), idle)
	if err != nil {
		t.Fatalf("load idle seller: %v", err)
	}
	if idleAcct.PopularityScore != 7 {
		t.Fatalf("expected untouched score 7, got %d", idleAcct.PopularityScore)
	}
}
