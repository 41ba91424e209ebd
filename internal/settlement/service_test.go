package settlement

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nayeemhasan/glamspot-backend/internal/bookings"
	"github.com/nayeemhasan/glamspot-backend/internal/payments"
	"github.com/nayeemhasan/glamspot-backend/internal/slots"
	"github.com/nayeemhasan/glamspot-backend/pkg/config"
	"github.com/nayeemhasan/glamspot-backend/pkg/db/models"
	"github.com/nayeemhasan/glamspot-backend/pkg/enums"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:settlement_" + uuid.NewString() + "?mode=memory&cache=shared"
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
CREATE TABLE IF NOT EXISTS service_slots (
  id TEXT PRIMARY KEY,
  service_id TEXT NOT NULL,
  label TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'available',
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (service_id, label)
);
CREATE TABLE IF NOT EXISTS payment_records (
  id TEXT PRIMARY KEY,
  booking_id TEXT NOT NULL UNIQUE,
  payment_intent_id TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  payment_method_id TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'usd',
  captured_at DATETIME,
  created_at DATETIME
);
CREATE TABLE IF NOT EXISTS settlement_events (
  id TEXT PRIMARY KEY,
  booking_id TEXT NOT NULL,
  type TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  reference TEXT NOT NULL,
  metadata TEXT,
  created_at DATETIME
);`
	if err := db.Exec(ddl).Error; err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return db
}

type fakeAccounts struct {
	acct      *models.SellerAccount
	customer  string
	reminders int
}

func (f *fakeAccounts) OnboardingLink(_ context.Context, _ uuid.UUID, _ string) (string, error) {
	return "", nil
}

func (f *fakeAccounts) SyncStatus(_ context.Context, _ uuid.UUID) (*models.SellerAccount, error) {
	return f.acct, nil
}

func (f *fakeAccounts) GetForUser(_ context.Context, _ uuid.UUID) (*models.SellerAccount, error) {
	if f.acct == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return f.acct, nil
}

func (f *fakeAccounts) EnsureCustomer(_ context.Context, _ uuid.UUID, _ string) (string, error) {
	if f.customer == "" {
		f.customer = "cus_test"
	}
	return f.customer, nil
}

func (f *fakeAccounts) SendOnboardingReminder(_ context.Context, _ *models.SellerAccount) error {
	f.reminders++
	return nil
}

type fakeOTP struct {
	issued    []string
	verifyErr error
}

func (f *fakeOTP) Issue(_ context.Context, subject string) error {
	f.issued = append(f.issued, subject)
	return nil
}

func (f *fakeOTP) Verify(_ context.Context, _, _ string) (string, error) {
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	return "confirmation-token", nil
}

type fakeGateway struct {
	authorizeResult *payments.AuthorizeResult
	authorizeErr    error
	intent          *payments.Intent
	captures        int
	refunds         int
	transfers       int
	lastTransfer    payments.TransferInput
	refundErr       error
}

func (f *fakeGateway) Authorize(_ context.Context, _ payments.AuthorizeInput) (*payments.AuthorizeResult, error) {
	if f.authorizeErr != nil {
		return nil, f.authorizeErr
	}
	return f.authorizeResult, nil
}

func (f *fakeGateway) Capture(_ context.Context, intentID string) (*payments.Intent, error) {
	f.captures++
	captured := *f.intent
	captured.Status = payments.IntentStatusSucceeded
	captured.AmountReceived = captured.AmountCents
	f.intent = &captured
	_ = intentID
	return f.intent, nil
}

func (f *fakeGateway) Refund(_ context.Context, input payments.RefundInput) (*payments.RefundResult, error) {
	if f.refundErr != nil {
		return nil, f.refundErr
	}
	f.refunds++
	return &payments.RefundResult{RefundID: "re_test", AmountCents: f.intent.AmountCents, Status: "succeeded"}, nil
}

func (f *fakeGateway) Transfer(_ context.Context, input payments.TransferInput) (*payments.TransferResult, error) {
	f.transfers++
	f.lastTransfer = input
	return &payments.TransferResult{TransferID: "tr_test", AmountCents: input.AmountCents}, nil
}

func (f *fakeGateway) RetrieveIntent(_ context.Context, _ string) (*payments.Intent, error) {
	return f.intent, nil
}

func (f *fakeGateway) CreateExpressAccount(_ context.Context, _ string) (string, error) {
	return "acct_test", nil
}

func (f *fakeGateway) RetrieveAccount(_ context.Context, _ string) (*payments.AccountStatus, error) {
	return &payments.AccountStatus{}, nil
}

func (f *fakeGateway) CreateAccountLink(_ context.Context, _, _, _ string) (string, error) {
	return "https://connect.example.com/onboard", nil
}

func (f *fakeGateway) CreateCustomer(_ context.Context, _ string) (string, error) {
	return "cus_test", nil
}

func (f *fakeGateway) AttachPaymentMethod(_ context.Context, _, _ string) error { return nil }
func (f *fakeGateway) ListCards(_ context.Context, _ string) ([]payments.Card, error) {
	return nil, nil
}
func (f *fakeGateway) DetachPaymentMethod(_ context.Context, _ string) error { return nil }

type fixture struct {
	svc      Service
	db       *gorm.DB
	gw       *fakeGateway
	accounts *fakeAccounts
	otp      *fakeOTP
	records  PaymentRepository
	events   EventRepository
	slots    slots.Repository
	bookings bookings.Repository
}

func newFixture(t *testing.T, gw *fakeGateway, accts *fakeAccounts, codes *fakeOTP) *fixture {
	t.Helper()
	db := newTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})

	f := &fixture{
		db:       db,
		gw:       gw,
		accounts: accts,
		otp:      codes,
		records:  NewPaymentRepository(db),
		events:   NewEventRepository(db),
		slots:    slots.NewRepository(db),
		bookings: bookings.NewRepository(db),
	}

	svc, err := NewService(ServiceParams{
		DB:       db,
		Bookings: f.bookings,
		Slots:    f.slots,
		Records:  f.records,
		Events:   f.events,
		Accounts: accts,
		OTP:      codes,
		Gateway:  gw,
		Logger:   logg,
		Fees:     config.FeesConfig{PlatformFeePercent: 10},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func onboardedAccount(userID uuid.UUID) *models.SellerAccount {
	accountID := "acct_seller"
	return &models.SellerAccount{
		ID:               uuid.New(),
		UserID:           userID,
		Email:            "seller@example.com",
		StripeAccountID:  &accountID,
		ChargesEnabled:   true,
		DetailsSubmitted: true,
	}
}

func (f *fixture) seedBooking(t *testing.T, status enums.BookingStatus, approval enums.ApprovalStatus) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		ID:            uuid.New(),
		BuyerID:       uuid.New(),
		SellerID:      uuid.New(),
		ServiceID:     uuid.New(),
		SlotLabel:     "10:00",
		PriceCents:    10000,
		Approval:      approval,
		Status:        status,
		IsPaid:        status == enums.BookingStatusPaid,
		CustomerName:  "Dana Buyer",
		CustomerEmail: "dana@example.com",
	}
	if err := f.db.Create(booking).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	slot := models.ServiceSlot{ID: uuid.New(), ServiceID: booking.ServiceID, Label: booking.SlotLabel, Status: enums.SlotStatusBooked}
	if err := f.db.Create(&slot).Error; err != nil {
		t.Fatalf("seed slot: %v", err)
	}
	return booking
}

func (f *fixture) seedRecord(t *testing.T, booking *models.Booking) *models.PaymentRecord {
	t.Helper()
	record := &models.PaymentRecord{
		ID:              uuid.New(),
		BookingID:       booking.ID,
		PaymentIntentID: "pi_test",
		CustomerID:      "cus_test",
		PaymentMethodID: "pm_test",
		AmountCents:     booking.PriceCents,
		Currency:        "usd",
	}
	if err := f.db.Create(record).Error; err != nil {
		t.Fatalf("seed record: %v", err)
	}
	return record
}

func TestAuthorizePaymentMovesBookingToPaid(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{authorizeResult: &payments.AuthorizeResult{
		Succeeded: true,
		IntentID:  "pi_new",
		Status:    payments.IntentStatusSucceeded,
	}}
	f := newFixture(t, gw, &fakeAccounts{}, &fakeOTP{})
	ctx := context.Background()
	booking := f.seedBooking(t, enums.BookingStatusCreated, enums.ApprovalStatusConfirmed)

	updated, err := f.svc.AuthorizePayment(ctx, booking.BuyerID, booking.ID, "pm_card")
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if updated.Status != enums.BookingStatusPaid || !updated.IsPaid {
		t.Fatalf("expected paid booking, got %s", updated.Status)
	}
	if updated.PaymentIntentID == nil || *updated.PaymentIntentID != "pi_new" {
		t.Fatalf("intent id not stored: %v", updated.PaymentIntentID)
	}

	record, err := f.records.FindByBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	if record.CapturedAt == nil {
		t.Fatal("immediately captured intent must stamp captured_at")
	}

	events, err := f.events.ListByBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 ||
		events[0].Type != enums.SettlementEventAuthorized ||
		events[1].Type != enums.SettlementEventCaptured {
		t.Fatalf("unexpected ledger: %+v", events)
	}
}

func TestAuthorizePaymentSoftDeclineLeavesBookingCreated(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{authorizeResult: &payments.AuthorizeResult{
		Succeeded: false,
		IntentID:  "pi_declined",
		Status:    "requires_payment_method",
	}}
	f := newFixture(t, gw, &fakeAccounts{}, &fakeOTP{})
	ctx := context.Background()
	booking := f.seedBooking(t, enums.BookingStatusCreated, enums.ApprovalStatusConfirmed)

	_, err := f.svc.AuthorizePayment(ctx, booking.BuyerID, booking.ID, "pm_card")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	reloaded, err := f.bookings.FindByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != enums.BookingStatusCreated || reloaded.IsPaid {
		t.Fatalf("declined payment must leave booking untouched: %s", reloaded.Status)
	}
	if _, err := f.records.FindByBooking(ctx, booking.ID); err == nil {
		t.Fatal("no payment record should exist after a decline")
	}
}

func TestAuthorizePaymentRequiresSellerApproval(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeGateway{}, &fakeAccounts{}, &fakeOTP{})
	booking := f.seedBooking(t, enums.BookingStatusCreated, enums.ApprovalStatusPending)

	_, err := f.svc.AuthorizePayment(context.Background(), booking.BuyerID, booking.ID, "pm_card")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCompleteTransfersSellerShare(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{intent: &payments.Intent{
		ID:             "pi_test",
		Status:         payments.IntentStatusSucceeded,
		AmountCents:    10000,
		AmountReceived: 10000,
	}}
	f := newFixture(t, gw, &fakeAccounts{}, &fakeOTP{})
	ctx := context.Background()
	booking := f.seedBooking(t, enums.BookingStatusPaid, enums.ApprovalStatusConfirmed)
	f.accounts.acct = onboardedAccount(booking.SellerID)
	f.seedRecord(t, booking)

	updated, err := f.svc.Complete(ctx, booking.SellerID, booking.ID, "123456")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if updated.Status != enums.BookingStatusCompleted || updated.CompletedAt == nil {
		t.Fatalf("expected completed booking, got %s", updated.Status)
	}
	if gw.transfers != 1 {
		t.Fatalf("expected one transfer, got %d", gw.transfers)
	}
	if gw.lastTransfer.AmountCents != 9000 {
		t.Fatalf("expected 9000 cent payout after 10%% fee, got %d", gw.lastTransfer.AmountCents)
	}
	if gw.lastTransfer.DestinationID != "acct_seller" {
		t.Fatalf("unexpected destination %s", gw.lastTransfer.DestinationID)
	}

	events, err := f.events.ListByBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 || events[0].Type != enums.SettlementEventTransferred || events[0].AmountCents != 9000 {
		t.Fatalf("unexpected ledger: %+v", events)
	}
}

func TestCompleteCapturesHeldFunds(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{intent: &payments.Intent{
		ID:          "pi_test",
		Status:      payments.IntentStatusRequiresCapture,
		AmountCents: 10000,
	}}
	f := newFixture(t, gw, &fakeAccounts{}, &fakeOTP{})
	ctx := context.Background()
	booking := f.seedBooking(t, enums.BookingStatusPaid, enums.ApprovalStatusConfirmed)
	f.accounts.acct = onboardedAccount(booking.SellerID)
	f.seedRecord(t, booking)

	if _, err := f.svc.Complete(ctx, booking.SellerID, booking.ID, "123456"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if gw.captures != 1 {
		t.Fatalf("expected one capture, got %d", gw.captures)
	}

	record, err := f.records.FindByBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	if record.CapturedAt == nil {
		t.Fatal("capture must stamp the payment record")
	}

	events, err := f.events.ListByBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 ||
		events[0].Type != enums.SettlementEventCaptured ||
		events[1].Type != enums.SettlementEventTransferred {
		t.Fatalf("unexpected ledger: %+v", events)
	}
}

func TestCompleteRejectsBadCode(t *testing.T) {
	t.Parallel()

	codes := &fakeOTP{verifyErr: pkgerrors.New(pkgerrors.CodeValidation, "invalid code")}
	f := newFixture(t, &fakeGateway{}, &fakeAccounts{}, codes)
	ctx := context.Background()
	booking := f.seedBooking(t, enums.BookingStatusPaid, enums.ApprovalStatusConfirmed)
	f.accounts.acct = onboardedAccount(booking.SellerID)
	f.seedRecord(t, booking)

	_, err := f.svc.Complete(ctx, booking.SellerID, booking.ID, "000000")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	reloaded, err := f.bookings.FindByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != enums.BookingStatusPaid {
		t.Fatalf("booking must stay paid, got %s", reloaded.Status)
	}
}

func TestCompleteBlocksUnonboardedSeller(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{intent: &payments.Intent{
		ID:             "pi_test",
		Status:         payments.IntentStatusSucceeded,
		AmountCents:    10000,
		AmountReceived: 10000,
	}}
	accts := &fakeAccounts{}
	f := newFixture(t, gw, accts, &fakeOTP{})
	ctx := context.Background()
	booking := f.seedBooking(t, enums.BookingStatusPaid, enums.ApprovalStatusConfirmed)
	acct := onboardedAccount(booking.SellerID)
	acct.ChargesEnabled = false
	accts.acct = acct
	f.seedRecord(t, booking)

	_, err := f.svc.Complete(ctx, booking.SellerID, booking.ID, "123456")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if accts.reminders != 1 {
		t.Fatalf("expected onboarding reminder, got %d", accts.reminders)
	}
	if gw.transfers != 0 {
		t.Fatalf("no transfer should happen, got %d", gw.transfers)
	}

	reloaded, err := f.bookings.FindByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != enums.BookingStatusPaid {
		t.Fatalf("booking must stay paid, got %s", reloaded.Status)
	}
}

func TestCompleteNeverTransfersTwice(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{intent: &payments.Intent{
		ID:             "pi_test",
		Status:         payments.IntentStatusSucceeded,
		AmountCents:    10000,
		AmountReceived: 10000,
	}}
	f := newFixture(t, gw, &fakeAccounts{}, &fakeOTP{})
	ctx := context.Background()
	booking := f.seedBooking(t, enums.BookingStatusPaid, enums.ApprovalStatusConfirmed)
	f.accounts.acct = onboardedAccount(booking.SellerID)
	f.seedRecord(t, booking)

	prior := models.SettlementEvent{
		ID:          uuid.New(),
		BookingID:   booking.ID,
		Type:        enums.SettlementEventTransferred,
		AmountCents: 9000,
		Reference:   "tr_prior",
	}
	if err := f.db.Create(&prior).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}

	updated, err := f.svc.Complete(ctx, booking.SellerID, booking.ID, "123456")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if updated.Status != enums.BookingStatusCompleted {
		t.Fatalf("expected completed, got %s", updated.Status)
	}
	if gw.transfers != 0 {
		t.Fatalf("transfer must not repeat, got %d", gw.transfers)
	}
}

func TestCancelPaidBookingRefundsAndReleasesSlot(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{intent: &payments.Intent{
		ID:          "pi_test",
		Status:      payments.IntentStatusSucceeded,
		AmountCents: 10000,
	}}
	f := newFixture(t, gw, &fakeAccounts{}, &fakeOTP{})
	ctx := context.Background()
	booking := f.seedBooking(t, enums.BookingStatusPaid, enums.ApprovalStatusConfirmed)
	f.seedRecord(t, booking)

	updated, err := f.svc.Cancel(ctx, booking.SellerID, enums.UserRoleSeller, booking.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if updated.Status != enums.BookingStatusCancelled || updated.CancelledAt == nil {
		t.Fatalf("expected cancelled booking, got %s", updated.Status)
	}
	if gw.refunds != 1 {
		t.Fatalf("expected one refund, got %d", gw.refunds)
	}

	slot, err := f.slots.FindByLabel(ctx, booking.ServiceID, booking.SlotLabel)
	if err != nil {
		t.Fatalf("load slot: %v", err)
	}
	if slot.Status != enums.SlotStatusAvailable {
		t.Fatalf("slot must reopen, got %s", slot.Status)
	}

	events, err := f.events.ListByBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 || events[0].Type != enums.SettlementEventRefunded {
		t.Fatalf("unexpected ledger: %+v", events)
	}

	// Second cancel is a no-op: no extra refund.
	if _, err := f.svc.Cancel(ctx, booking.SellerID, enums.UserRoleSeller, booking.ID); err != nil {
		t.Fatalf("repeat cancel: %v", err)
	}
	if gw.refunds != 1 {
		t.Fatalf("refund must not repeat, got %d", gw.refunds)
	}
}

func TestCancelFailedRefundKeepsBookingPaid(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{
		intent:    &payments.Intent{ID: "pi_test", Status: payments.IntentStatusSucceeded, AmountCents: 10000},
		refundErr: pkgerrors.New(pkgerrors.CodeDependency, "processor unavailable"),
	}
	f := newFixture(t, gw, &fakeAccounts{}, &fakeOTP{})
	ctx := context.Background()
	booking := f.seedBooking(t, enums.BookingStatusPaid, enums.ApprovalStatusConfirmed)
	f.seedRecord(t, booking)

	_, err := f.svc.Cancel(ctx, booking.BuyerID, enums.UserRoleBuyer, booking.ID)
	if err == nil {
		t.Fatal("expected refund failure to surface")
	}

	reloaded, err := f.bookings.FindByID(ctx, booking.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != enums.BookingStatusPaid {
		t.Fatalf("booking must stay paid when refund fails, got %s", reloaded.Status)
	}
	slot, err := f.slots.FindByLabel(ctx, booking.ServiceID, booking.SlotLabel)
	if err != nil {
		t.Fatalf("load slot: %v", err)
	}
	if slot.Status != enums.SlotStatusBooked {
		t.Fatalf("slot must stay booked when refund fails, got %s", slot.Status)
	}
}

func TestCancelUnpaidBookingSkipsRefund(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{}
	f := newFixture(t, gw, &fakeAccounts{}, &fakeOTP{})
	ctx := context.Background()
	booking := f.seedBooking(t, enums.BookingStatusCreated, enums.ApprovalStatusPending)

	updated, err := f.svc.Cancel(ctx, booking.BuyerID, enums.UserRoleBuyer, booking.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if updated.Status != enums.BookingStatusCancelled {
		t.Fatalf("expected cancelled, got %s", updated.Status)
	}
	if gw.refunds != 0 {
		t.Fatalf("no refund expected, got %d", gw.refunds)
	}
}

func TestCancelCompletedBookingRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeGateway{}, &fakeAccounts{}, &fakeOTP{})
	booking := f.seedBooking(t, enums.BookingStatusCompleted, enums.ApprovalStatusConfirmed)

	_, err := f.svc.Cancel(context.Background(), booking.BuyerID, enums.UserRoleBuyer, booking.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestRequestCompletionCodeIssuesToBuyerEmail(t *testing.T) {
	t.Parallel()

	codes := &fakeOTP{}
	f := newFixture(t, &fakeGateway{}, &fakeAccounts{}, codes)
	ctx := context.Background()
	booking := f.seedBooking(t, enums.BookingStatusPaid, enums.ApprovalStatusConfirmed)

	if err := f.svc.RequestCompletionCode(ctx, booking.SellerID, booking.ID); err != nil {
		t.Fatalf("request code: %v", err)
	}
	if len(codes.issued) != 1 || codes.issued[0] != "dana@example.com" {
		t.Fatalf("code not issued to buyer email: %v", codes.issued)
	}

	if err := f.svc.RequestCompletionCode(ctx, uuid.New(), booking.ID); err == nil {
		t.Fatal("foreign seller must not request a code")
	}
}
