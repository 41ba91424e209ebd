package listings

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nayeemhasan/glamspot-backend/internal/slots"
	"github.com/nayeemhasan/glamspot-backend/pkg/db/models"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
	"github.com/nayeemhasan/glamspot-backend/pkg/pagination"
)

// CreateInput describes a new listing and its bookable slots.
type CreateInput struct {
	Title       string
	Description *string
	Category    *string
	Location    *string
	PriceCents  int64
	SlotLabels  []string
}

// Page is one cursor page of listings.
type Page struct {
	Items      []models.ServiceListing
	NextCursor string
}

// Service manages the listing catalog.
type Service interface {
	Create(ctx context.Context, sellerID uuid.UUID, input CreateInput) (*models.ServiceListing, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ServiceListing, error)
	Browse(ctx context.Context, filter ListFilter, params pagination.Params) (*Page, error)
	SetActive(ctx context.Context, sellerID, listingID uuid.UUID, active bool) (*models.ServiceListing, error)
	AddSlots(ctx context.Context, sellerID, listingID uuid.UUID, labels []string) ([]models.ServiceSlot, error)
}

// ServiceParams configure the listings service.
type ServiceParams struct {
	DB     *gorm.DB
	Repo   Repository
	Slots  slots.Repository
	Logger *logger.Logger
}

type service struct {
	db    *gorm.DB
	repo  Repository
	slots slots.Repository
	logg  *logger.Logger
}

// NewService wires listings dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database handle required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Slots == nil {
		return nil, fmt.Errorf("slots repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		db:    params.DB,
		repo:  params.Repo,
		slots: params.Slots,
		logg:  params.Logger,
	}, nil
}

// Create publishes a listing and its slots in one transaction. Duplicate slot
// labels within the request are rejected up front; the unique index backs that
// up against concurrent writers.
func (s *service) Create(ctx context.Context, sellerID uuid.UUID, input CreateInput) (*models.ServiceListing, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if input.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	labels, err := normalizeLabels(input.SlotLabels)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one slot required")
	}

	listing := &models.ServiceListing{
		ID:          uuid.New(),
		SellerID:    sellerID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Location:    input.Location,
		PriceCents:  input.PriceCents,
		IsActive:    true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, listing); err != nil {
			return err
		}
		rows := make([]models.ServiceSlot, 0, len(labels))
		for _, label := range labels {
			rows = append(rows, models.ServiceSlot{ID: uuid.New(), ServiceID: listing.ID, Label: label})
		}
		return s.slots.WithTx(tx).CreateMany(ctx, rows)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByIDWithSlots(ctx, listing.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.ServiceListing, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	return s.repo.FindByIDWithSlots(ctx, id)
}

func (s *service) Browse(ctx context.Context, filter ListFilter, params pagination.Params) (*Page, error) {
	rows, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &Page{Items: rows}
	if len(rows) > limit {
		page.Items = rows[:limit]
		last := page.Items[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (s *service) SetActive(ctx context.Context, sellerID, listingID uuid.UUID, active bool) (*models.ServiceListing, error) {
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing belongs to another seller")
	}
	if listing.IsActive == active {
		return listing, nil
	}
	listing.IsActive = active
	if err := s.repo.Save(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// AddSlots appends new bookable labels to an existing listing.
func (s *service) AddSlots(ctx context.Context, sellerID, listingID uuid.UUID, labels []string) ([]models.ServiceSlot, error) {
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing belongs to another seller")
	}

	normalized, err := normalizeLabels(labels)
	if err != nil {
		return nil, err
	}
	if len(normalized) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one slot required")
	}

	rows := make([]models.ServiceSlot, 0, len(normalized))
	for _, label := range normalized {
		rows = append(rows, models.ServiceSlot{ID: uuid.New(), ServiceID: listing.ID, Label: label})
	}
	if err := s.slots.CreateMany(ctx, rows); err != nil {
		return nil, err
	}
	return s.slots.ListByService(ctx, listing.ID)
}

func normalizeLabels(labels []string) ([]string, error) {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate slot label %q", label))
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out, nil
}
