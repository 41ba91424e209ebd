package bookings

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nayeemhasan/glamspot-backend/internal/accounts"
	"github.com/nayeemhasan/glamspot-backend/internal/listings"
	"github.com/nayeemhasan/glamspot-backend/internal/notify"
	"github.com/nayeemhasan/glamspot-backend/internal/otp"
	"github.com/nayeemhasan/glamspot-backend/internal/slots"
	"github.com/nayeemhasan/glamspot-backend/pkg/db/models"
	"github.com/nayeemhasan/glamspot-backend/pkg/enums"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
	"github.com/nayeemhasan/glamspot-backend/pkg/pagination"
)

// RequestInput carries everything a buyer submits to reserve a slot.
type RequestInput struct {
	ServiceID     uuid.UUID
	SlotLabel     string
	CustomerName  string
	CustomerEmail string
	CustomerPhone *string
	Notes         *string
}

// Page is one cursor page of bookings.
type Page struct {
	Items      []models.Booking
	NextCursor string
}

// Service manages the booking lifecycle up to settlement: slot reservation and
// seller approval. Money movement lives in the settlement package.
type Service interface {
	Request(ctx context.Context, buyerID uuid.UUID, input RequestInput) (*models.Booking, error)
	Accept(ctx context.Context, sellerID, bookingID uuid.UUID) (*models.Booking, error)
	Get(ctx context.Context, actorID uuid.UUID, role enums.UserRole, bookingID uuid.UUID) (*models.Booking, error)
	ListForBuyer(ctx context.Context, buyerID uuid.UUID, filter ListFilter, params pagination.Params) (*Page, error)
	ListForSeller(ctx context.Context, sellerID uuid.UUID, filter ListFilter, params pagination.Params) (*Page, error)
}

// ServiceParams configure the bookings service.
type ServiceParams struct {
	DB       *gorm.DB
	Repo     Repository
	Listings listings.Repository
	Slots    slots.Repository
	Accounts accounts.Repository
	OTP      otp.Service
	Sender   notify.Sender
	Logger   *logger.Logger
}

type service struct {
	db       *gorm.DB
	repo     Repository
	listings listings.Repository
	slots    slots.Repository
	accounts accounts.Repository
	otp      otp.Service
	sender   notify.Sender
	logg     *logger.Logger
}

// NewService wires bookings dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database handle required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if params.Listings == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Slots == nil {
		return nil, fmt.Errorf("slots repository required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if params.OTP == nil {
		return nil, fmt.Errorf("otp service required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("notify sender required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		listings: params.Listings,
		slots:    params.Slots,
		accounts: params.Accounts,
		otp:      params.OTP,
		sender:   params.Sender,
		logg:     params.Logger,
	}, nil
}

// Request reserves a slot and opens a booking in one transaction. The slot
// claim is a conditional update, so two buyers racing for the same label leave
// exactly one booking behind. Price is captured from the listing at request
// time; later listing edits do not reprice open bookings.
func (s *service) Request(ctx context.Context, buyerID uuid.UUID, input RequestInput) (*models.Booking, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if input.ServiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id required")
	}
	input.SlotLabel = strings.TrimSpace(input.SlotLabel)
	if input.SlotLabel == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slot label required")
	}
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	if input.CustomerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	input.CustomerEmail = strings.ToLower(strings.TrimSpace(input.CustomerEmail))
	if input.CustomerEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}

	var booking *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		listing, err := s.listings.WithTx(tx).FindByID(ctx, input.ServiceID)
		if err != nil {
			return err
		}
		if !listing.IsActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "listing is not accepting bookings")
		}
		if listing.SellerID == buyerID {
			return pkgerrors.New(pkgerrors.CodeValidation, "cannot book your own listing")
		}

		if err := s.slots.WithTx(tx).Claim(ctx, listing.ID, input.SlotLabel); err != nil {
			return err
		}

		booking = &models.Booking{
			ID:            uuid.New(),
			BuyerID:       buyerID,
			SellerID:      listing.SellerID,
			ServiceID:     listing.ID,
			SlotLabel:     input.SlotLabel,
			PriceCents:    listing.PriceCents,
			Approval:      enums.ApprovalStatusPending,
			Status:        enums.BookingStatusCreated,
			CustomerName:  input.CustomerName,
			CustomerEmail: input.CustomerEmail,
			CustomerPhone: input.CustomerPhone,
			Notes:         input.Notes,
		}
		return s.repo.WithTx(tx).Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	// The confirmation challenge opens with the booking. Codes are short-lived,
	// so the seller can request a fresh one at completion time.
	if err := s.otp.Issue(ctx, booking.CustomerEmail); err != nil {
		s.logg.Error(s.logg.WithBookingID(ctx, booking.ID.String()), "confirmation code issue failed", err)
	}
	s.notifySeller(ctx, booking)
	return booking, nil
}

// notifySeller emails the seller about a new request. Best effort: the booking
// is already committed, a bounced email must not undo it.
func (s *service) notifySeller(ctx context.Context, booking *models.Booking) {
	lctx := s.logg.WithBookingID(ctx, booking.ID.String())

	acct, err := s.accounts.FindByUserID(ctx, booking.SellerID)
	if err != nil {
		s.logg.Warn(s.logg.WithField(lctx, "seller_id", booking.SellerID.String()), "seller has no account row, skipping request email")
		return
	}

	listing, err := s.listings.FindByID(ctx, booking.ServiceID)
	title := booking.ServiceID.String()
	if err == nil {
		title = listing.Title
	}

	msg := notify.BookingRequestedMessage(acct.Email, title, booking.SlotLabel)
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logg.Error(lctx, "booking request email delivery failed", err)
	}
}

// Accept records the seller's approval. Accepting an already confirmed booking
// is a no-op so retried requests stay safe.
func (s *service) Accept(ctx context.Context, sellerID, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another seller")
	}
	if booking.Status == enums.BookingStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "booking is cancelled")
	}
	if booking.Approval == enums.ApprovalStatusConfirmed {
		return booking, nil
	}

	booking.Approval = enums.ApprovalStatusConfirmed
	if err := s.repo.Save(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// Get returns a booking to its buyer, its seller, or an admin.
func (s *service) Get(ctx context.Context, actorID uuid.UUID, role enums.UserRole, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if role != enums.UserRoleAdmin && booking.BuyerID != actorID && booking.SellerID != actorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a party to this booking")
	}
	return booking, nil
}

func (s *service) ListForBuyer(ctx context.Context, buyerID uuid.UUID, filter ListFilter, params pagination.Params) (*Page, error) {
	rows, err := s.repo.ListForBuyer(ctx, buyerID, filter, params)
	if err != nil {
		return nil, err
	}
	return buildPage(rows, params), nil
}

func (s *service) ListForSeller(ctx context.Context, sellerID uuid.UUID, filter ListFilter, params pagination.Params) (*Page, error) {
	rows, err := s.repo.ListForSeller(ctx, sellerID, filter, params)
	if err != nil {
		return nil, err
	}
	return buildPage(rows, params), nil
}

func buildPage(rows []models.Booking, params pagination.Params) *Page {
	limit := pagination.NormalizeLimit(params.Limit)
	page := &Page{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		last := page.Items[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page
}
