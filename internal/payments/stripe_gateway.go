package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/account"
	"github.com/stripe/stripe-go/v84/accountlink"
	"github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/paymentintent"
	"github.com/stripe/stripe-go/v84/paymentmethod"
	"github.com/stripe/stripe-go/v84/refund"
	"github.com/stripe/stripe-go/v84/transfer"

	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
	pkgstripe "github.com/nayeemhasan/glamspot-backend/pkg/stripe"
)

const defaultCurrency = "usd"

type stripeGateway struct {
	logg *logger.Logger
}

// NewStripeGateway wires the processor adapter. The client is required so the
// global key is guaranteed to be configured before any call goes out.
func NewStripeGateway(client *pkgstripe.Client, logg *logger.Logger) (Gateway, error) {
	if client == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &stripeGateway{logg: logg}, nil
}

func (g *stripeGateway) Authorize(ctx context.Context, input AuthorizeInput) (*AuthorizeResult, error) {
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if strings.TrimSpace(input.CustomerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if strings.TrimSpace(input.PaymentMethodID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method id required")
	}

	if err := g.AttachPaymentMethod(ctx, input.CustomerID, input.PaymentMethodID); err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(input.AmountCents),
		Currency:      stripe.String(currency),
		Customer:      stripe.String(input.CustomerID),
		PaymentMethod: stripe.String(input.PaymentMethodID),
		OffSession:    stripe.Bool(true),
		Confirm:       stripe.Bool(true),
	}
	params.Context = ctx
	if input.BookingID != "" {
		params.AddMetadata("booking_id", input.BookingID)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, mapStripeError(err, "create payment intent")
	}

	result := &AuthorizeResult{
		IntentID:  intent.ID,
		Status:    string(intent.Status),
		Succeeded: intent.Status == stripe.PaymentIntentStatusSucceeded,
	}
	if !result.Succeeded {
		loggedCtx := g.logg.WithFields(ctx, map[string]any{
			"intent_id": intent.ID,
			"status":    string(intent.Status),
		})
		g.logg.Warn(loggedCtx, "payment intent did not succeed")
	}
	return result, nil
}

func (g *stripeGateway) Capture(ctx context.Context, intentID string) (*Intent, error) {
	if strings.TrimSpace(intentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	intent, err := paymentintent.Capture(intentID, params)
	if err != nil {
		return nil, mapStripeError(err, "capture payment intent")
	}
	return intentFromStripe(intent), nil
}

func (g *stripeGateway) Refund(ctx context.Context, input RefundInput) (*RefundResult, error) {
	if strings.TrimSpace(input.IntentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}
	if input.AmountCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount cannot be negative")
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(input.IntentID),
	}
	params.Context = ctx
	if input.AmountCents > 0 {
		params.Amount = stripe.Int64(input.AmountCents)
	}

	ref, err := refund.New(params)
	if err != nil {
		return nil, mapStripeError(err, "create refund")
	}
	return &RefundResult{
		RefundID:    ref.ID,
		AmountCents: ref.Amount,
		Status:      string(ref.Status),
	}, nil
}

func (g *stripeGateway) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transfer amount must be positive")
	}
	if strings.TrimSpace(input.DestinationID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "destination account required")
	}

	currency := input.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	params := &stripe.TransferParams{
		Amount:      stripe.Int64(input.AmountCents),
		Currency:    stripe.String(currency),
		Destination: stripe.String(input.DestinationID),
	}
	params.Context = ctx
	if input.TransferGroup != "" {
		params.TransferGroup = stripe.String(input.TransferGroup)
	}

	tr, err := transfer.New(params)
	if err != nil {
		return nil, mapStripeError(err, "create transfer")
	}
	return &TransferResult{TransferID: tr.ID, AmountCents: tr.Amount}, nil
}

func (g *stripeGateway) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	if strings.TrimSpace(intentID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "intent id required")
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	intent, err := paymentintent.Get(intentID, params)
	if err != nil {
		return nil, mapStripeError(err, "retrieve payment intent")
	}
	return intentFromStripe(intent), nil
}

func (g *stripeGateway) CreateExpressAccount(ctx context.Context, email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
	}
	params.Context = ctx
	acct, err := account.New(params)
	if err != nil {
		return "", mapStripeError(err, "create connected account")
	}
	return acct.ID, nil
}

func (g *stripeGateway) RetrieveAccount(ctx context.Context, accountID string) (*AccountStatus, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	params := &stripe.AccountParams{}
	params.Context = ctx
	acct, err := account.GetByID(accountID, params)
	if err != nil {
		return nil, mapStripeError(err, "retrieve connected account")
	}
	return &AccountStatus{
		AccountID:        acct.ID,
		ChargesEnabled:   acct.ChargesEnabled,
		DetailsSubmitted: acct.DetailsSubmitted,
	}, nil
}

func (g *stripeGateway) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	if strings.TrimSpace(accountID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	params.Context = ctx
	link, err := accountlink.New(params)
	if err != nil {
		return "", mapStripeError(err, "create account link")
	}
	return link.URL, nil
}

func (g *stripeGateway) CreateCustomer(ctx context.Context, email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	params := &stripe.CustomerParams{Email: stripe.String(email)}
	params.Context = ctx
	cust, err := customer.New(params)
	if err != nil {
		return "", mapStripeError(err, "create customer")
	}
	return cust.ID, nil
}

func (g *stripeGateway) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error {
	params := &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	if _, err := paymentmethod.Attach(paymentMethodID, params); err != nil {
		return mapStripeError(err, "attach payment method")
	}
	return nil
}

func (g *stripeGateway) ListCards(ctx context.Context, customerID string) ([]Card, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(string(stripe.PaymentMethodTypeCard)),
	}
	params.Context = ctx

	var cards []Card
	iter := paymentmethod.List(params)
	for iter.Next() {
		pm := iter.PaymentMethod()
		if pm == nil || pm.Card == nil {
			continue
		}
		cards = append(cards, Card{
			PaymentMethodID: pm.ID,
			Brand:           string(pm.Card.Brand),
			Last4:           pm.Card.Last4,
			ExpMonth:        pm.Card.ExpMonth,
			ExpYear:         pm.Card.ExpYear,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, mapStripeError(err, "list payment methods")
	}
	return cards, nil
}

func (g *stripeGateway) DetachPaymentMethod(ctx context.Context, paymentMethodID string) error {
	if strings.TrimSpace(paymentMethodID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method id required")
	}
	params := &stripe.PaymentMethodDetachParams{}
	params.Context = ctx
	if _, err := paymentmethod.Detach(paymentMethodID, params); err != nil {
		return mapStripeError(err, "detach payment method")
	}
	return nil
}

func intentFromStripe(intent *stripe.PaymentIntent) *Intent {
	if intent == nil {
		return nil
	}
	out := &Intent{
		ID:             intent.ID,
		Status:         string(intent.Status),
		AmountCents:    intent.Amount,
		AmountReceived: intent.AmountReceived,
		Currency:       string(intent.Currency),
	}
	if intent.Customer != nil {
		out.CustomerID = intent.Customer.ID
	}
	return out
}
