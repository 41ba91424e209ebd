package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/nayeemhasan/glamspot-backend/api/responses"
	"github.com/nayeemhasan/glamspot-backend/api/validators"
	"github.com/nayeemhasan/glamspot-backend/internal/accounts"
	"github.com/nayeemhasan/glamspot-backend/internal/payments"
	"github.com/nayeemhasan/glamspot-backend/internal/settlement"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
)

type makePaymentRequest struct {
	BookingID       uuid.UUID `json:"booking_id" validate:"required"`
	PaymentMethodID string    `json:"payment_method_id" validate:"required"`
}

type transferFundsRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

type saveCardRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
	Email           string `json:"email" validate:"omitempty,email"`
}

type cardResponse struct {
	PaymentMethodID string `json:"payment_method_id"`
	Brand           string `json:"brand"`
	Last4           string `json:"last4"`
	ExpMonth        int64  `json:"exp_month"`
	ExpYear         int64  `json:"exp_year"`
}

// MakePayment charges the buyer's saved card for an accepted booking.
func MakePayment(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req makePaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.AuthorizePayment(r.Context(), buyerID, req.BookingID, req.PaymentMethodID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingResponse(booking))
	}
}

// RequestCompletionCode emails the buyer the code that unlocks the payout.
func RequestCompletionCode(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := parseUUIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RequestCompletionCode(r.Context(), sellerID, bookingID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "sent"})
	}
}

// TransferFunds settles a delivered booking: the buyer's code releases the
// capture and the seller payout.
func TransferFunds(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := parseUUIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req transferFundsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Complete(r.Context(), sellerID, bookingID, req.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingResponse(booking))
	}
}

// RefundPayment cancels a booking from the buyer side, refunding any captured
// funds and reopening the slot.
func RefundPayment(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := parseUUIDParam(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Cancel(r.Context(), userID, actorRole(r), bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingResponse(booking))
	}
}

// SaveCard vaults a payment method against the user's processor customer.
func SaveCard(accountsSvc accounts.Service, gateway payments.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req saveCardRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := accountsSvc.EnsureCustomer(r.Context(), userID, req.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := gateway.AttachPaymentMethod(r.Context(), customerID, req.PaymentMethodID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "saved"})
	}
}

// ListCards returns the user's vaulted cards.
func ListCards(accountsSvc accounts.Service, gateway payments.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		acct, err := accountsSvc.GetForUser(r.Context(), userID)
		if err != nil {
			typed := pkgerrors.As(err)
			if typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				responses.WriteSuccess(w, []cardResponse{})
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if acct.StripeCustomerID == nil || *acct.StripeCustomerID == "" {
			responses.WriteSuccess(w, []cardResponse{})
			return
		}

		cards, err := gateway.ListCards(r.Context(), *acct.StripeCustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]cardResponse, 0, len(cards))
		for _, card := range cards {
			out = append(out, cardResponse{
				PaymentMethodID: card.PaymentMethodID,
				Brand:           card.Brand,
				Last4:           card.Last4,
				ExpMonth:        card.ExpMonth,
				ExpYear:         card.ExpYear,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

// DeleteCard detaches a vaulted payment method.
func DeleteCard(gateway payments.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := actorID(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paymentMethodID := chiURLParam(r, "paymentMethodId")
		if paymentMethodID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "paymentMethodId is required"))
			return
		}

		if err := gateway.DetachPaymentMethod(r.Context(), paymentMethodID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}
