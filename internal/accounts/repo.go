package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nayeemhasan/glamspot-backend/internal/repo"
	"github.com/nayeemhasan/glamspot-backend/pkg/db/models"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
)

// Repository manages persistence for processor account rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, acct *models.SellerAccount) error
	Save(ctx context.Context, acct *models.SellerAccount) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.SellerAccount, error)
	TopSellers(ctx context.Context, limit int) ([]models.SellerAccount, error)
	SetPopularityScore(ctx context.Context, userID uuid.UUID, score int64) error
}

type repository struct {
	repo.Base
}

// NewRepository returns an accounts repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, acct *models.SellerAccount) error {
	if err := r.DB(ctx).Create(acct).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create account")
	}
	return nil
}

func (r *repository) Save(ctx context.Context, acct *models.SellerAccount) error {
	if err := r.DB(ctx).Save(acct).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save account")
	}
	return nil
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.SellerAccount, error) {
	var acct models.SellerAccount
	err := r.DB(ctx).
		Where("user_id = ?", userID).
		First(&acct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}
	return &acct, nil
}

func (r *repository) TopSellers(ctx context.Context, limit int) ([]models.SellerAccount, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []models.SellerAccount
	if err := r.DB(ctx).
		Order("popularity_score DESC, created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list top sellers")
	}
	return rows, nil
}

func (r *repository) SetPopularityScore(ctx context.Context, userID uuid.UUID, score int64) error {
	result := r.DB(ctx).
		Model(&models.SellerAccount{}).
		Where("user_id = ?", userID).
		Update("popularity_score", score)
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "update popularity score")
	}
	return nil
}
