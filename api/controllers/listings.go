package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nayeemhasan/glamspot-backend/api/responses"
	"github.com/nayeemhasan/glamspot-backend/api/validators"
	"github.com/nayeemhasan/glamspot-backend/internal/listings"
	"github.com/nayeemhasan/glamspot-backend/internal/payments"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
	"github.com/nayeemhasan/glamspot-backend/pkg/pagination"
)

type listingCreateRequest struct {
	Title       string          `json:"title" validate:"required,min=3,max=120"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    *string         `json:"category,omitempty" validate:"omitempty,max=60"`
	Location    *string         `json:"location,omitempty" validate:"omitempty,max=120"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	SlotLabels  []string        `json:"slot_labels" validate:"required,min=1,max=50"`
}

type listingStatusRequest struct {
	Active bool `json:"active"`
}

type listingSlotsRequest struct {
	SlotLabels []string `json:"slot_labels" validate:"required,min=1,max=50"`
}

type listingPageResponse struct {
	Items      []listingResponse `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// ListingCreate publishes a new service with its bookable slots. Price comes
// in as dollars and is stored as integer cents.
func ListingCreate(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req listingCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		priceCents := payments.DollarsToCents(req.Price)
		if priceCents <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive"))
			return
		}

		listing, err := svc.Create(r.Context(), sellerID, listings.CreateInput{
			Title:       validators.SanitizeString(req.Title, 120),
			Description: sanitizeOptional(req.Description, 2000),
			Category:    sanitizeOptional(req.Category, 60),
			Location:    sanitizeOptional(req.Location, 120),
			PriceCents:  priceCents,
			SlotLabels:  req.SlotLabels,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newListingResponse(listing))
	}
}

// ListingBrowse pages through the public catalog with optional search filters.
func ListingBrowse(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := listings.ListFilter{
			Search:     strings.TrimSpace(r.URL.Query().Get("search")),
			Category:   strings.TrimSpace(r.URL.Query().Get("category")),
			Location:   strings.TrimSpace(r.URL.Query().Get("location")),
			ActiveOnly: true,
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		page, err := svc.Browse(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listingPageResponse{
			Items:      newListingResponses(page.Items),
			NextCursor: page.NextCursor,
		})
	}
}

// ListingDetail returns one listing with its slot availability.
func ListingDetail(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID, err := parseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.Get(r.Context(), listingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListingResponse(listing))
	}
}

// ListingSetStatus toggles a listing in or out of the catalog.
func ListingSetStatus(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listingID, err := parseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req listingStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := svc.SetActive(r.Context(), sellerID, listingID, req.Active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newListingResponse(listing))
	}
}

// ListingAddSlots appends bookable labels to an existing listing.
func ListingAddSlots(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listingID, err := parseUUIDParam(r, "listingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req listingSlotsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.AddSlots(r.Context(), sellerID, listingID, req.SlotLabels)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]slotResponse, 0, len(rows))
		for _, slot := range rows {
			out = append(out, slotResponse{Label: slot.Label, Status: slot.Status.String()})
		}
		responses.WriteSuccess(w, out)
	}
}
