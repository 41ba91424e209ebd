package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nayeemhasan/glamspot-backend/internal/accounts"
	"github.com/nayeemhasan/glamspot-backend/internal/bookings"
	"github.com/nayeemhasan/glamspot-backend/internal/otp"
	"github.com/nayeemhasan/glamspot-backend/internal/payments"
	"github.com/nayeemhasan/glamspot-backend/internal/slots"
	"github.com/nayeemhasan/glamspot-backend/pkg/config"
	"github.com/nayeemhasan/glamspot-backend/pkg/db/models"
	"github.com/nayeemhasan/glamspot-backend/pkg/enums"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
)

const defaultCurrency = "usd"

// Service orchestrates money movement for a booking: authorization after
// seller approval, capture plus payout on confirmed delivery, and refund with
// slot release on cancellation.
type Service interface {
	AuthorizePayment(ctx context.Context, buyerID, bookingID uuid.UUID, paymentMethodID string) (*models.Booking, error)
	RequestCompletionCode(ctx context.Context, sellerID, bookingID uuid.UUID) error
	Complete(ctx context.Context, sellerID, bookingID uuid.UUID, code string) (*models.Booking, error)
	Cancel(ctx context.Context, actorID uuid.UUID, role enums.UserRole, bookingID uuid.UUID) (*models.Booking, error)
	Ledger(ctx context.Context, actorID uuid.UUID, role enums.UserRole, bookingID uuid.UUID) ([]models.SettlementEvent, error)
}

// ServiceParams configure the settlement service.
type ServiceParams struct {
	DB       *gorm.DB
	Bookings bookings.Repository
	Slots    slots.Repository
	Records  PaymentRepository
	Events   EventRepository
	Accounts accounts.Service
	OTP      otp.Service
	Gateway  payments.Gateway
	Logger   *logger.Logger
	Fees     config.FeesConfig
}

type service struct {
	db       *gorm.DB
	bookings bookings.Repository
	slots    slots.Repository
	records  PaymentRepository
	events   EventRepository
	accounts accounts.Service
	otp      otp.Service
	gateway  payments.Gateway
	logg     *logger.Logger
	fees     config.FeesConfig
	now      func() time.Time
}

// NewService wires settlement dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database handle required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if params.Slots == nil {
		return nil, fmt.Errorf("slots repository required")
	}
	if params.Records == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event repository required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts service required")
	}
	if params.OTP == nil {
		return nil, fmt.Errorf("otp service required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:       params.DB,
		bookings: params.Bookings,
		slots:    params.Slots,
		records:  params.Records,
		events:   params.Events,
		accounts: params.Accounts,
		otp:      params.OTP,
		gateway:  params.Gateway,
		logg:     params.Logger,
		fees:     params.Fees,
		now:      time.Now,
	}, nil
}

// AuthorizePayment charges the buyer's saved card for a confirmed booking.
// A processor decline is a soft failure: the booking stays created and the
// buyer can retry with another card.
func (s *service) AuthorizePayment(ctx context.Context, buyerID, bookingID uuid.UUID, paymentMethodID string) (*models.Booking, error) {
	if paymentMethodID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method required")
	}

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another buyer")
	}
	if booking.Approval != enums.ApprovalStatusConfirmed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "seller has not accepted the booking")
	}
	if booking.Status != enums.BookingStatusCreated {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("booking is %s, payment not applicable", booking.Status))
	}

	customerID, err := s.accounts.EnsureCustomer(ctx, buyerID, booking.CustomerEmail)
	if err != nil {
		return nil, err
	}

	result, err := s.gateway.Authorize(ctx, payments.AuthorizeInput{
		CustomerID:      customerID,
		PaymentMethodID: paymentMethodID,
		AmountCents:     booking.PriceCents,
		Currency:        defaultCurrency,
		BookingID:       booking.ID.String(),
	})
	if err != nil {
		return nil, err
	}
	lctx := s.logg.WithBookingID(ctx, booking.ID.String())
	if !result.Succeeded {
		s.logg.Warn(s.logg.WithField(lctx, "intent_status", result.Status), "authorization did not succeed")
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment not completed, processor status %s", result.Status))
	}

	now := s.now().UTC()
	record := &models.PaymentRecord{
		ID:              uuid.New(),
		BookingID:       booking.ID,
		PaymentIntentID: result.IntentID,
		CustomerID:      customerID,
		PaymentMethodID: paymentMethodID,
		AmountCents:     booking.PriceCents,
		Currency:        defaultCurrency,
	}
	captured := result.Status == payments.IntentStatusSucceeded
	if captured {
		record.CapturedAt = &now
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.records.WithTx(tx).Create(ctx, record); err != nil {
			return err
		}
		events := s.events.WithTx(tx)
		if err := events.Append(ctx, s.newEvent(booking.ID, enums.SettlementEventAuthorized, booking.PriceCents, result.IntentID, result.Status)); err != nil {
			return err
		}
		if captured {
			if err := events.Append(ctx, s.newEvent(booking.ID, enums.SettlementEventCaptured, booking.PriceCents, result.IntentID, result.Status)); err != nil {
				return err
			}
		}
		booking.Status = enums.BookingStatusPaid
		booking.IsPaid = true
		booking.PaymentIntentID = &record.PaymentIntentID
		return s.bookings.WithTx(tx).Save(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(lctx, "payment authorized")
	return booking, nil
}

// RequestCompletionCode emails the buyer a one-time code the seller needs to
// close out the booking.
func (s *service) RequestCompletionCode(ctx context.Context, sellerID, bookingID uuid.UUID) error {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.SellerID != sellerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another seller")
	}
	if booking.Status != enums.BookingStatusPaid {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is not paid")
	}
	return s.otp.Issue(ctx, booking.CustomerEmail)
}

// Complete settles a paid booking: the buyer's code proves delivery, funds are
// captured if still on hold, and the seller share is transferred. The booking
// reaches completed only after the transfer succeeds.
func (s *service) Complete(ctx context.Context, sellerID, bookingID uuid.UUID, code string) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another seller")
	}
	if booking.Status == enums.BookingStatusCompleted {
		return booking, nil
	}
	if booking.Status != enums.BookingStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "booking is not paid")
	}

	if _, err := s.otp.Verify(ctx, booking.CustomerEmail, code); err != nil {
		return nil, err
	}

	record, err := s.records.FindByBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	lctx := s.logg.WithBookingID(ctx, booking.ID.String())

	intent, err := s.gateway.RetrieveIntent(ctx, record.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if intent.Status == payments.IntentStatusRequiresCapture {
		intent, err = s.gateway.Capture(ctx, record.PaymentIntentID)
		if err != nil {
			return nil, err
		}
		now := s.now().UTC()
		record.CapturedAt = &now
		if err := s.records.Save(ctx, record); err != nil {
			return nil, err
		}
		if err := s.events.Append(ctx, s.newEvent(booking.ID, enums.SettlementEventCaptured, intent.AmountReceived, intent.ID, intent.Status)); err != nil {
			return nil, err
		}
		s.logg.Info(lctx, "payment captured")
	}
	if intent.Status != payments.IntentStatusSucceeded || intent.AmountReceived <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("funds not settled, intent status %s", intent.Status))
	}

	acct, err := s.accounts.GetForUser(ctx, sellerID)
	if err != nil {
		typed := pkgerrors.As(err)
		if typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "seller has no payout account")
		}
		return nil, err
	}
	if !acct.OnboardingComplete() {
		if remErr := s.accounts.SendOnboardingReminder(ctx, acct); remErr != nil {
			s.logg.Error(lctx, "onboarding reminder failed", remErr)
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "seller account cannot receive transfers yet")
	}

	// A transfer that already landed must never be repeated; just finish the
	// state transition.
	transferred, err := s.events.HasEvent(ctx, booking.ID, enums.SettlementEventTransferred)
	if err != nil {
		return nil, err
	}
	if transferred {
		return s.markCompleted(ctx, booking, nil)
	}

	payout := payments.TransferAmount(intent.AmountReceived, s.fees.PlatformFeePercent)
	transfer, err := s.gateway.Transfer(ctx, payments.TransferInput{
		AmountCents:   payout,
		Currency:      defaultCurrency,
		DestinationID: *acct.StripeAccountID,
		TransferGroup: booking.ID.String(),
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithField(lctx, "transfer_id", transfer.TransferID), "seller payout transferred")

	return s.markCompleted(ctx, booking, s.newEvent(booking.ID, enums.SettlementEventTransferred, transfer.AmountCents, transfer.TransferID, ""))
}

func (s *service) markCompleted(ctx context.Context, booking *models.Booking, event *models.SettlementEvent) (*models.Booking, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if event != nil {
			if err := s.events.WithTx(tx).Append(ctx, event); err != nil {
				return err
			}
		}
		now := s.now().UTC()
		booking.Status = enums.BookingStatusCompleted
		booking.CompletedAt = &now
		return s.bookings.WithTx(tx).Save(ctx, booking)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Cancel unwinds a booking. For a paid booking the refund is issued first;
// if the processor rejects it the booking keeps its state and nothing is
// released. Cancelling an already cancelled booking is a no-op.
func (s *service) Cancel(ctx context.Context, actorID uuid.UUID, role enums.UserRole, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if role != enums.UserRoleAdmin && booking.BuyerID != actorID && booking.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a party to this booking")
	}
	if booking.Status == enums.BookingStatusCancelled {
		return booking, nil
	}
	if booking.Status == enums.BookingStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "completed bookings cannot be cancelled")
	}

	lctx := s.logg.WithBookingID(ctx, booking.ID.String())

	var refundEvent *models.SettlementEvent
	if booking.Status == enums.BookingStatusPaid {
		record, err := s.records.FindByBooking(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		refund, err := s.gateway.Refund(ctx, payments.RefundInput{IntentID: record.PaymentIntentID})
		if err != nil {
			return nil, err
		}
		refundEvent = s.newEvent(booking.ID, enums.SettlementEventRefunded, refund.AmountCents, refund.RefundID, refund.Status)
		s.logg.Info(s.logg.WithField(lctx, "refund_id", refund.RefundID), "payment refunded")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if refundEvent != nil {
			if err := s.events.WithTx(tx).Append(ctx, refundEvent); err != nil {
				return err
			}
		}
		if err := s.slots.WithTx(tx).Release(ctx, booking.ServiceID, booking.SlotLabel); err != nil {
			return err
		}
		now := s.now().UTC()
		booking.Status = enums.BookingStatusCancelled
		booking.CancelledAt = &now
		return s.bookings.WithTx(tx).Save(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(lctx, "booking cancelled")
	return booking, nil
}

// Ledger returns the settlement events for a booking to its parties.
func (s *service) Ledger(ctx context.Context, actorID uuid.UUID, role enums.UserRole, bookingID uuid.UUID) ([]models.SettlementEvent, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if role != enums.UserRoleAdmin && booking.BuyerID != actorID && booking.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a party to this booking")
	}
	return s.events.ListByBooking(ctx, booking.ID)
}

func (s *service) newEvent(bookingID uuid.UUID, eventType enums.SettlementEventType, amountCents int64, reference, processorStatus string) *models.SettlementEvent {
	event := &models.SettlementEvent{
		ID:          uuid.New(),
		BookingID:   bookingID,
		Type:        eventType,
		AmountCents: amountCents,
		Reference:   reference,
	}
	if processorStatus != "" {
		if meta, err := json.Marshal(map[string]string{"processor_status": processorStatus}); err == nil {
			event.Metadata = meta
		}
	}
	return event
}
