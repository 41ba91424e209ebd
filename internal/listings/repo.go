package listings

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nayeemhasan/glamspot-backend/internal/repo"
	"github.com/nayeemhasan/glamspot-backend/pkg/db/models"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
	"github.com/nayeemhasan/glamspot-backend/pkg/pagination"
)

// ListFilter narrows a catalog listing query.
type ListFilter struct {
	Search     string
	Category   string
	Location   string
	SellerID   uuid.UUID
	ActiveOnly bool
}

// Repository manages persistence for service listings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, listing *models.ServiceListing) error
	Save(ctx context.Context, listing *models.ServiceListing) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ServiceListing, error)
	FindByIDWithSlots(ctx context.Context, id uuid.UUID) (*models.ServiceListing, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.ServiceListing, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a listings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, listing *models.ServiceListing) error {
	if err := r.DB(ctx).Create(listing).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
	}
	return nil
}

func (r *repository) Save(ctx context.Context, listing *models.ServiceListing) error {
	if err := r.DB(ctx).Save(listing).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save listing")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ServiceListing, error) {
	var listing models.ServiceListing
	err := r.DB(ctx).First(&listing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return &listing, nil
}

func (r *repository) FindByIDWithSlots(ctx context.Context, id uuid.UUID) (*models.ServiceListing, error) {
	var listing models.ServiceListing
	err := r.DB(ctx).
		Preload("Slots", func(db *gorm.DB) *gorm.DB { return db.Order("label ASC") }).
		First(&listing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return &listing, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.ServiceListing, error) {
	query := r.DB(ctx).Model(&models.ServiceListing{})

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.SellerID != uuid.Nil {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?", like, like)
	}
	if filter.Category != "" {
		query = query.Where("LOWER(COALESCE(category, '')) = ?", strings.ToLower(filter.Category))
	}
	if filter.Location != "" {
		like := "%" + strings.ToLower(filter.Location) + "%"
		query = query.Where("LOWER(COALESCE(location, '')) LIKE ?", like)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.ServiceListing
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}
	return rows, nil
}
