package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nayeemhasan/glamspot-backend/internal/repo"
	"github.com/nayeemhasan/glamspot-backend/pkg/db/models"
	"github.com/nayeemhasan/glamspot-backend/pkg/enums"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
	"github.com/nayeemhasan/glamspot-backend/pkg/pagination"
)

// ListFilter narrows a booking list query.
type ListFilter struct {
	Status   enums.BookingStatus
	Approval enums.ApprovalStatus
}

// SellerCompletedCount reports how many bookings a seller completed in a window.
type SellerCompletedCount struct {
	SellerID uuid.UUID
	Count    int64
}

// Repository manages persistence for bookings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, booking *models.Booking) error
	Save(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListForBuyer(ctx context.Context, buyerID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Booking, error)
	ListForSeller(ctx context.Context, sellerID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Booking, error)
	CompletedCountsBySeller(ctx context.Context, since time.Time) ([]SellerCompletedCount, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns a bookings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) error {
	if err := r.DB(ctx).Create(booking).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
	}
	return nil
}

func (r *repository) Save(ctx context.Context, booking *models.Booking) error {
	if err := r.DB(ctx).Save(booking).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save booking")
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.DB(ctx).First(&booking, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	return &booking, nil
}

func (r *repository) ListForBuyer(ctx context.Context, buyerID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Booking, error) {
	return r.list(ctx, "buyer_id = ?", buyerID, filter, params)
}

func (r *repository) ListForSeller(ctx context.Context, sellerID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Booking, error) {
	return r.list(ctx, "seller_id = ?", sellerID, filter, params)
}

func (r *repository) list(ctx context.Context, ownerCond string, ownerID uuid.UUID, filter ListFilter, params pagination.Params) ([]models.Booking, error) {
	query := r.DB(ctx).
		Model(&models.Booking{}).
		Where(ownerCond, ownerID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Approval != "" {
		query = query.Where("approval = ?", filter.Approval)
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

	var rows []models.Booking
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	return rows, nil
}

// CompletedCountsBySeller aggregates completed bookings per seller since the
// given time. Feeds the popularity sweep.
func (r *repository) CompletedCountsBySeller(ctx context.Context, since time.Time) ([]SellerCompletedCount, error) {
	var rows []SellerCompletedCount
	err := r.DB(ctx).
		Model(&models.Booking{}).
		Select("seller_id, COUNT(*) AS count").
		Where("status = ? AND completed_at >= ?", enums.BookingStatusCompleted, since).
		Group("seller_id").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate completed bookings")
	}
	return rows, nil
}
