package bookings

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nayeemhasan/glamspot-backend/internal/accounts"
	"github.com/nayeemhasan/glamspot-backend/internal/listings"
	"github.com/nayeemhasan/glamspot-backend/internal/notify"
	"github.com/nayeemhasan/glamspot-backend/internal/slots"
	"github.com/nayeemhasan/glamspot-backend/pkg/db/models"
	"github.com/nayeemhasan/glamspot-backend/pkg/enums"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
	"github.com/nayeemhasan/glamspot-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:bookings_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS service_listings (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  category TEXT,
  location TEXT,
  price_cents INTEGER NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS service_slots (
  id TEXT PRIMARY KEY,
  service_id TEXT NOT NULL,
  label TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'available',
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (service_id, label)
);
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

type fakeSender struct {
	sent []notify.Message
}

func (f *fakeSender) Send(_ context.Context, msg notify.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

type fakeOTP struct {
	issued []string
}

func (f *fakeOTP) Issue(_ context.Context, subject string) error {
	f.issued = append(f.issued, subject)
	return nil
}

func (f *fakeOTP) Verify(_ context.Context, _, _ string) (string, error) {
	return "", nil
}

type fixture struct {
	svc    Service
	db     *gorm.DB
	sender *fakeSender
	otp    *fakeOTP
	slots  slots.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	sender := &fakeSender{}
	otpSvc := &fakeOTP{}
	slotRepo := slots.NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})

	svc, err := NewService(ServiceParams{
		DB:       db,
		Repo:     NewRepository(db),
		Listings: listings.NewRepository(db),
		Slots:    slotRepo,
		Accounts: accounts.NewRepository(db),
		OTP:      otpSvc,
		Sender:   sender,
		Logger:   logg,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, db: db, sender: sender, otp: otpSvc, slots: slotRepo}
}

func (f *fixture) seedListing(t *testing.T, sellerID uuid.UUID, priceCents int64, active bool, labels ...string) uuid.UUID {
	t.Helper()
	listing := models.ServiceListing{
		ID:         uuid.New(),
		SellerID:   sellerID,
		Title:      "Test service",
		PriceCents: priceCents,
		IsActive:   active,
	}
	if err := f.db.Create(&listing).Error; err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	for _, label := range labels {
		slot := models.ServiceSlot{ID: uuid.New(), ServiceID: listing.ID, Label: label, Status: enums.SlotStatusAvailable}
		if err := f.db.Create(&slot).Error; err != nil {
			t.Fatalf("seed slot: %v", err)
		}
	}
	return listing.ID
}

func (f *fixture) seedSellerAccount(t *testing.T, sellerID uuid.UUID, email string) {
	t.Helper()
	acct := models.SellerAccount{ID: uuid.New(), UserID: sellerID, Email: email}
	if err := f.db.Create(&acct).Error; err != nil {
		t.Fatalf("seed seller account: %v", err)
	}
}

func requestInput(serviceID uuid.UUID, label string) RequestInput {
	return RequestInput{
		ServiceID:     serviceID,
		SlotLabel:     label,
		CustomerName:  "Dana Buyer",
		CustomerEmail: "Dana@Example.com",
	}
}

func TestRequestReservesSlotAndNotifiesSeller(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sellerID := uuid.New()
	buyerID := uuid.New()
	f.seedSellerAccount(t, sellerID, "seller@example.com")
	serviceID := f.seedListing(t, sellerID, 12000, true, "10:00", "11:00")

	booking, err := f.svc.Request(ctx, buyerID, requestInput(serviceID, "10:00"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if booking.Status != enums.BookingStatusCreated || booking.Approval != enums.ApprovalStatusPending {
		t.Fatalf("unexpected initial state: %s/%s", booking.Status, booking.Approval)
	}
	if booking.PriceCents != 12000 {
		t.Fatalf("price not captured from listing: %d", booking.PriceCents)
	}
	if booking.CustomerEmail != "dana@example.com" {
		t.Fatalf("email not normalized: %q", booking.CustomerEmail)
	}

	slot, err := f.slots.FindByLabel(ctx, serviceID, "10:00")
	if err != nil {
		t.Fatalf("load slot: %v", err)
	}
	if slot.Status != enums.SlotStatusBooked {
		t.Fatalf("slot not claimed: %s", slot.Status)
	}

	if len(f.sender.sent) != 1 || f.sender.sent[0].To != "seller@example.com" {
		t.Fatalf("seller not notified: %+v", f.sender.sent)
	}
	if len(f.otp.issued) != 1 || f.otp.issued[0] != "dana@example.com" {
		t.Fatalf("confirmation code not issued to buyer: %+v", f.otp.issued)
	}
}

func TestRequestBookedSlotLeavesNoBooking(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sellerID := uuid.New()
	f.seedSellerAccount(t, sellerID, "seller@example.com")
	serviceID := f.seedListing(t, sellerID, 5000, true, "10:00")

	if _, err := f.svc.Request(ctx, uuid.New(), requestInput(serviceID, "10:00")); err != nil {
		t.Fatalf("first request: %v", err)
	}

	_, err := f.svc.Request(ctx, uuid.New(), requestInput(serviceID, "10:00"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	var count int64
	if err := f.db.Model(&models.Booking{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("losing request must not leave a booking, got %d rows", count)
	}
}

func TestRequestInactiveListingKeepsSlotOpen(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sellerID := uuid.New()
	serviceID := f.seedListing(t, sellerID, 5000, false, "10:00")

	_, err := f.svc.Request(ctx, uuid.New(), requestInput(serviceID, "10:00"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	slot, err := f.slots.FindByLabel(ctx, serviceID, "10:00")
	if err != nil {
		t.Fatalf("load slot: %v", err)
	}
	if slot.Status != enums.SlotStatusAvailable {
		t.Fatalf("slot must stay available, got %s", slot.Status)
	}
}

func TestRequestOwnListingRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	sellerID := uuid.New()
	serviceID := f.seedListing(t, sellerID, 5000, true, "10:00")

	_, err := f.svc.Request(context.Background(), sellerID, requestInput(serviceID, "10:00"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAcceptConfirmsPendingBooking(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sellerID := uuid.New()
	f.seedSellerAccount(t, sellerID, "seller@example.com")
	serviceID := f.seedListing(t, sellerID, 5000, true, "10:00")

	booking, err := f.svc.Request(ctx, uuid.New(), requestInput(serviceID, "10:00"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := f.svc.Accept(ctx, uuid.New(), booking.ID); err == nil {
		t.Fatal("foreign seller must not accept")
	}

	accepted, err := f.svc.Accept(ctx, sellerID, booking.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Approval != enums.ApprovalStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", accepted.Approval)
	}

	// Retried accept is a no-op.
	again, err := f.svc.Accept(ctx, sellerID, booking.ID)
	if err != nil {
		t.Fatalf("repeat accept: %v", err)
	}
	if again.Approval != enums.ApprovalStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", again.Approval)
	}
}

func TestGetEnforcesParties(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sellerID := uuid.New()
	buyerID := uuid.New()
	f.seedSellerAccount(t, sellerID, "seller@example.com")
	serviceID := f.seedListing(t, sellerID, 5000, true, "10:00")

	booking, err := f.svc.Request(ctx, buyerID, requestInput(serviceID, "10:00"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := f.svc.Get(ctx, buyerID, enums.UserRoleBuyer, booking.ID); err != nil {
		t.Fatalf("buyer access: %v", err)
	}
	if _, err := f.svc.Get(ctx, sellerID, enums.UserRoleSeller, booking.ID); err != nil {
		t.Fatalf("seller access: %v", err)
	}
	if _, err := f.svc.Get(ctx, uuid.New(), enums.UserRoleAdmin, booking.ID); err != nil {
		t.Fatalf("admin access: %v", err)
	}

	_, err = f.svc.Get(ctx, uuid.New(), enums.UserRoleBuyer, booking.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestListForBuyerFiltersAndPaginates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	sellerID := uuid.New()
	buyerID := uuid.New()
	f.seedSellerAccount(t, sellerID, "seller@example.com")
	serviceID := f.seedListing(t, sellerID, 5000, true, "09:00", "10:00", "11:00")

	for _, label := range []string{"09:00", "10:00", "11:00"} {
		if _, err := f.svc.Request(ctx, buyerID, requestInput(serviceID, label)); err != nil {
			t.Fatalf("request %s: %v", label, err)
		}
	}

	first, err := f.svc.ListForBuyer(ctx, buyerID, ListFilter{}, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if len(first.Items) != 2 || first.NextCursor == "" {
		t.Fatalf("expected full first page, got %d items", len(first.Items))
	}

	second, err := f.svc.ListForBuyer(ctx, buyerID, ListFilter{}, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(second.Items) != 1 || second.NextCursor != "" {
		t.Fatalf("expected final page of 1, got %d items", len(second.Items))
	}

	cancelled, err := f.svc.ListForBuyer(ctx, buyerID, ListFilter{Status: enums.BookingStatusCancelled}, pagination.Params{})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(cancelled.Items) != 0 {
		t.Fatalf("expected no cancelled bookings, got %d", len(cancelled.Items))
	}
}
