package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nayeemhasan/glamspot-backend/api/middleware"
	"github.com/nayeemhasan/glamspot-backend/api/validators"
	"github.com/nayeemhasan/glamspot-backend/pkg/db/models"
	"github.com/nayeemhasan/glamspot-backend/pkg/enums"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
)

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func actorRole(r *http.Request) enums.UserRole {
	return enums.UserRole(middleware.RoleFromContext(r.Context()))
}

func chiURLParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

// sanitizeOptional trims and bounds an optional text field, dropping it
// entirely when nothing but whitespace was sent.
func sanitizeOptional(value *string, maxLen int) *string {
	if value == nil {
		return nil
	}
	clean := validators.SanitizeString(*value, maxLen)
	if clean == "" {
		return nil
	}
	return &clean
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

type bookingResponse struct {
	ID              uuid.UUID  `json:"id"`
	BuyerID         uuid.UUID  `json:"buyer_id"`
	SellerID        uuid.UUID  `json:"seller_id"`
	ServiceID       uuid.UUID  `json:"service_id"`
	SlotLabel       string     `json:"slot_label"`
	PriceCents      int64      `json:"price_cents"`
	Approval        string     `json:"approval"`
	Status          string     `json:"status"`
	PaymentIntentID *string    `json:"payment_intent_id,omitempty"`
	IsPaid          bool       `json:"is_paid"`
	CustomerName    string     `json:"customer_name"`
	CustomerEmail   string     `json:"customer_email"`
	CustomerPhone   *string    `json:"customer_phone,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func newBookingResponse(b *models.Booking) bookingResponse {
	return bookingResponse{
		ID:              b.ID,
		BuyerID:         b.BuyerID,
		SellerID:        b.SellerID,
		ServiceID:       b.ServiceID,
		SlotLabel:       b.SlotLabel,
		PriceCents:      b.PriceCents,
		Approval:        b.Approval.String(),
		Status:          b.Status.String(),
		PaymentIntentID: b.PaymentIntentID,
		IsPaid:          b.IsPaid,
		CustomerName:    b.CustomerName,
		CustomerEmail:   b.CustomerEmail,
		CustomerPhone:   b.CustomerPhone,
		Notes:           b.Notes,
		CompletedAt:     b.CompletedAt,
		CancelledAt:     b.CancelledAt,
		CreatedAt:       b.CreatedAt,
	}
}

func newBookingResponses(rows []models.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(rows))
	for i := range rows {
		out = append(out, newBookingResponse(&rows[i]))
	}
	return out
}

type slotResponse struct {
	Label  string `json:"label"`
	Status string `json:"status"`
}

type listingResponse struct {
	ID          uuid.UUID      `json:"id"`
	SellerID    uuid.UUID      `json:"seller_id"`
	Title       string         `json:"title"`
	Description *string        `json:"description,omitempty"`
	Category    *string        `json:"category,omitempty"`
	Location    *string        `json:"location,omitempty"`
	PriceCents  int64          `json:"price_cents"`
	IsActive    bool           `json:"is_active"`
	Slots       []slotResponse `json:"slots,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func newListingResponse(l *models.ServiceListing) listingResponse {
	resp := listingResponse{
		ID:          l.ID,
		SellerID:    l.SellerID,
		Title:       l.Title,
		Description: l.Description,
		Category:    l.Category,
		Location:    l.Location,
		PriceCents:  l.PriceCents,
		IsActive:    l.IsActive,
		CreatedAt:   l.CreatedAt,
	}
	for _, slot := range l.Slots {
		resp.Slots = append(resp.Slots, slotResponse{Label: slot.Label, Status: slot.Status.String()})
	}
	return resp
}

func newListingResponses(rows []models.ServiceListing) []listingResponse {
	out := make([]listingResponse, 0, len(rows))
	for i := range rows {
		out = append(out, newListingResponse(&rows[i]))
	}
	return out
}

type settlementEventResponse struct {
	Type        string    `json:"type"`
	AmountCents int64     `json:"amount_cents"`
	Reference   string    `json:"reference"`
	CreatedAt   time.Time `json:"created_at"`
}

func newSettlementEventResponses(rows []models.SettlementEvent) []settlementEventResponse {
	out := make([]settlementEventResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, settlementEventResponse{
			Type:        row.Type.String(),
			AmountCents: row.AmountCents,
			Reference:   row.Reference,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out
}

type accountResponse struct {
	UserID             uuid.UUID `json:"user_id"`
	Email              string    `json:"email"`
	HasConnectedAcct   bool      `json:"has_connected_account"`
	ChargesEnabled     bool      `json:"charges_enabled"`
	DetailsSubmitted   bool      `json:"details_submitted"`
	OnboardingComplete bool      `json:"onboarding_complete"`
	PopularityScore    int64     `json:"popularity_score"`
}

func newAccountResponse(acct *models.SellerAccount) accountResponse {
	return accountResponse{
		UserID:             acct.UserID,
		Email:              acct.Email,
		HasConnectedAcct:   acct.StripeAccountID != nil && *acct.StripeAccountID != "",
		ChargesEnabled:     acct.ChargesEnabled,
		DetailsSubmitted:   acct.DetailsSubmitted,
		OnboardingComplete: acct.OnboardingComplete(),
		PopularityScore:    acct.PopularityScore,
	}
}
