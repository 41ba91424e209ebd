package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nayeemhasan/glamspot-backend/api/responses"
	"github.com/nayeemhasan/glamspot-backend/api/validators"
	"github.com/nayeemhasan/glamspot-backend/internal/bookings"
	"github.com/nayeemhasan/glamspot-backend/internal/settlement"
	"github.com/nayeemhasan/glamspot-backend/pkg/enums"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
	"github.com/nayeemhasan/glamspot-backend/pkg/pagination"
)

type bookingRequestBody struct {
	ServiceID     uuid.UUID `json:"service_id" validate:"required"`
	SlotLabel     string    `json:"slot_label" validate:"required,max=60"`
	CustomerName  string    `json:"customer_name" validate:"required,max=120"`
	CustomerEmail string    `json:"customer_email" validate:"required,email"`
	CustomerPhone *string   `json:"customer_phone,omitempty" validate:"omitempty,max=30"`
	Notes         *string   `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type bookingPageResponse struct {
	Items      []bookingResponse `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// BookingRequest reserves a slot for the authenticated buyer.
func BookingRequest(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req bookingRequestBody
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Request(r.Context(), buyerID, bookings.RequestInput{
			ServiceID:     req.ServiceID,
			SlotLabel:     validators.SanitizeString(req.SlotLabel, 60),
			CustomerName:  validators.SanitizeString(req.CustomerName, 120),
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: sanitizeOptional(req.CustomerPhone, 30),
			Notes:         sanitizeOptional(req.Notes, 1000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newBookingResponse(booking))
	}
}

// BookingAccept records the seller's approval of a pending request.
func BookingAccept(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
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

		booking, err := svc.Accept(r.Context(), sellerID, bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingResponse(booking))
	}
}

// BookingDecline cancels a booking on the seller's behalf, refunding any held
// payment before the state flips.
func BookingDecline(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
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

// BookingDetail returns one booking to its buyer, seller, or an admin.
func BookingDetail(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
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

		booking, err := svc.Get(r.Context(), userID, actorRole(r), bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newBookingResponse(booking))
	}
}

// BookingLedger returns the settlement events for a booking.
func BookingLedger(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
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

		events, err := svc.Ledger(r.Context(), userID, actorRole(r), bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSettlementEventResponses(events))
	}
}

// MyBookings lists the authenticated buyer's bookings.
func MyBookings(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter, params, err := bookingListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListForBuyer(r.Context(), buyerID, filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bookingPageResponse{
			Items:      newBookingResponses(page.Items),
			NextCursor: page.NextCursor,
		})
	}
}

// SellerBookings lists bookings against the authenticated seller's listings.
func SellerBookings(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter, params, err := bookingListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListForSeller(r.Context(), sellerID, filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bookingPageResponse{
			Items:      newBookingResponses(page.Items),
			NextCursor: page.NextCursor,
		})
	}
}

func bookingListQuery(r *http.Request) (bookings.ListFilter, pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return bookings.ListFilter{}, pagination.Params{}, err
	}

	var filter bookings.ListFilter
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, parseErr := enums.ParseBookingStatus(raw)
		if parseErr != nil {
			return bookings.ListFilter{}, pagination.Params{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter")
		}
		filter.Status = status
	}

	params := pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}
	return filter, params, nil
}
