package payments

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
)

// mapStripeError folds processor errors into the domain taxonomy so handlers
// respond with the right status instead of a blanket 503.
func mapStripeError(err error, op string) error {
	if err == nil {
		return nil
	}

	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
	}

	message := stripeErr.Msg
	if message == "" {
		message = fmt.Sprintf("%s failed", op)
	}

	// Rate limiting is reported as an error code, not an error type.
	if stripeErr.Code == stripe.ErrorCodeRateLimit {
		return pkgerrors.Wrap(pkgerrors.CodeRateLimit, err, message)
	}

	switch stripeErr.Type {
	case stripe.ErrorTypeCard:
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, message)
	case stripe.ErrorTypeInvalidRequest:
		if stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, message)
		}
		if stripeErr.Code == stripe.ErrorCodeIdempotencyKeyInUse {
			return pkgerrors.Wrap(pkgerrors.CodeIdempotency, err, message)
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, message)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
	}
}
