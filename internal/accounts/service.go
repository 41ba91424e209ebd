package accounts

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nayeemhasan/glamspot-backend/internal/notify"
	"github.com/nayeemhasan/glamspot-backend/internal/payments"
	"github.com/nayeemhasan/glamspot-backend/pkg/config"
	"github.com/nayeemhasan/glamspot-backend/pkg/db/models"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
)

// Service manages processor identities for platform users: the connected
// account sellers receive payouts on, and the customer record buyers vault
// cards against.
type Service interface {
	OnboardingLink(ctx context.Context, userID uuid.UUID, email string) (string, error)
	SyncStatus(ctx context.Context, userID uuid.UUID) (*models.SellerAccount, error)
	GetForUser(ctx context.Context, userID uuid.UUID) (*models.SellerAccount, error)
	EnsureCustomer(ctx context.Context, userID uuid.UUID, email string) (string, error)
	SendOnboardingReminder(ctx context.Context, acct *models.SellerAccount) error
}

// ServiceParams configure the accounts service.
type ServiceParams struct {
	Repo    Repository
	Gateway payments.Gateway
	Sender  notify.Sender
	Logger  *logger.Logger
	Stripe  config.StripeConfig
}

type service struct {
	repo    Repository
	gateway payments.Gateway
	sender  notify.Sender
	logg    *logger.Logger
	cfg     config.StripeConfig
}

// NewService wires accounts dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("notify sender required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    params.Repo,
		gateway: params.Gateway,
		sender:  params.Sender,
		logg:    params.Logger,
		cfg:     params.Stripe,
	}, nil
}

// OnboardingLink returns a fresh processor onboarding URL for the user,
// creating the connected account (and local row) on first call. The link is
// also emailed so the seller can pick it up later.
func (s *service) OnboardingLink(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	if userID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}

	acct, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			return "", err
		}
		acct = &models.SellerAccount{UserID: userID, Email: email}
		if err := s.repo.Create(ctx, acct); err != nil {
			return "", err
		}
	}

	if acct.StripeAccountID == nil || *acct.StripeAccountID == "" {
		accountID, err := s.gateway.CreateExpressAccount(ctx, email)
		if err != nil {
			return "", err
		}
		acct.StripeAccountID = &accountID
		if err := s.repo.Save(ctx, acct); err != nil {
			return "", err
		}
	}

	link, err := s.gateway.CreateAccountLink(ctx, *acct.StripeAccountID, s.cfg.OnboardingRefreshURL, s.cfg.OnboardingReturnURL)
	if err != nil {
		return "", err
	}

	msg := notify.OnboardingLinkMessage(acct.Email, link)
	if sendErr := s.sender.Send(ctx, msg); sendErr != nil {
		s.logg.Error(s.logg.WithUserID(ctx, userID.String()), "onboarding email delivery failed", sendErr)
	}
	return link, nil
}

// SyncStatus pulls the connected account state from the processor and stores
// charges_enabled / details_submitted locally.
func (s *service) SyncStatus(ctx context.Context, userID uuid.UUID) (*models.SellerAccount, error) {
	acct, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if acct.StripeAccountID == nil || *acct.StripeAccountID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no connected account to sync")
	}

	status, err := s.gateway.RetrieveAccount(ctx, *acct.StripeAccountID)
	if err != nil {
		return nil, err
	}
	acct.ChargesEnabled = status.ChargesEnabled
	acct.DetailsSubmitted = status.DetailsSubmitted
	if err := s.repo.Save(ctx, acct); err != nil {
		return nil, err
	}
	return acct, nil
}

func (s *service) GetForUser(ctx context.Context, userID uuid.UUID) (*models.SellerAccount, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.FindByUserID(ctx, userID)
}

// EnsureCustomer returns the user's processor customer id, creating it (and
// the local row) on first use. The card vault hangs off this identity.
func (s *service) EnsureCustomer(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	if userID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	email = strings.ToLower(strings.TrimSpace(email))

	acct, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			return "", err
		}
		if email == "" {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "email required")
		}
		acct = &models.SellerAccount{UserID: userID, Email: email}
		if err := s.repo.Create(ctx, acct); err != nil {
			return "", err
		}
	}

	if acct.StripeCustomerID != nil && *acct.StripeCustomerID != "" {
		return *acct.StripeCustomerID, nil
	}

	customerID, err := s.gateway.CreateCustomer(ctx, acct.Email)
	if err != nil {
		return "", err
	}
	acct.StripeCustomerID = &customerID
	if err := s.repo.Save(ctx, acct); err != nil {
		return "", err
	}
	return customerID, nil
}

// SendOnboardingReminder re-issues an onboarding link to a seller whose
// account cannot receive transfers yet.
func (s *service) SendOnboardingReminder(ctx context.Context, acct *models.SellerAccount) error {
	if acct == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account required")
	}
	if acct.StripeAccountID == nil || *acct.StripeAccountID == "" {
		_, err := s.OnboardingLink(ctx, acct.UserID, acct.Email)
		return err
	}

	link, err := s.gateway.CreateAccountLink(ctx, *acct.StripeAccountID, s.cfg.OnboardingRefreshURL, s.cfg.OnboardingReturnURL)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, notify.OnboardingLinkMessage(acct.Email, link))
}
