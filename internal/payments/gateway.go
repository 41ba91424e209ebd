package payments

import "context"

// Intent is the processor-neutral view of a payment intent.
type Intent struct {
	ID             string
	Status         string
	AmountCents    int64
	AmountReceived int64
	Currency       string
	CustomerID     string
}

// Intent statuses the settlement flow branches on. Succeeded is the only
// status that releases money downstream.
const (
	IntentStatusSucceeded       = "succeeded"
	IntentStatusRequiresCapture = "requires_capture"
)

// AuthorizeInput carries everything needed to place a charge off-session.
type AuthorizeInput struct {
	CustomerID      string
	PaymentMethodID string
	AmountCents     int64
	Currency        string
	BookingID       string
}

// AuthorizeResult reports the processor outcome. A non-succeeded status is a
// soft failure: no error, Succeeded false, Status carries the processor state.
type AuthorizeResult struct {
	Succeeded bool
	IntentID  string
	Status    string
}

// RefundInput requests a refund against an intent. AmountCents zero means full.
type RefundInput struct {
	IntentID    string
	AmountCents int64
}

// RefundResult reports the processor refund reference.
type RefundResult struct {
	RefundID    string
	AmountCents int64
	Status      string
}

// TransferInput moves funds to a connected account.
type TransferInput struct {
	AmountCents   int64
	Currency      string
	DestinationID string
	TransferGroup string
}

// TransferResult reports the processor transfer reference.
type TransferResult struct {
	TransferID  string
	AmountCents int64
}

// AccountStatus is the onboarding state of a connected account.
type AccountStatus struct {
	AccountID        string
	ChargesEnabled   bool
	DetailsSubmitted bool
}

// Card is a vaulted payment method summary.
type Card struct {
	PaymentMethodID string
	Brand           string
	Last4           string
	ExpMonth        int64
	ExpYear         int64
}

// Gateway is the payment processor surface the settlement engine depends on.
// Every call is a single attempt; retry policy belongs to the caller's caller.
type Gateway interface {
	Authorize(ctx context.Context, input AuthorizeInput) (*AuthorizeResult, error)
	Capture(ctx context.Context, intentID string) (*Intent, error)
	Refund(ctx context.Context, input RefundInput) (*RefundResult, error)
	Transfer(ctx context.Context, input TransferInput) (*TransferResult, error)
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)

	CreateExpressAccount(ctx context.Context, email string) (string, error)
	RetrieveAccount(ctx context.Context, accountID string) (*AccountStatus, error)
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)

	CreateCustomer(ctx context.Context, email string) (string, error)
	AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) error
	ListCards(ctx context.Context, customerID string) ([]Card, error)
	DetachPaymentMethod(ctx context.Context, paymentMethodID string) error
}
