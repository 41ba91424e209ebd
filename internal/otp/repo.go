package otp

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nayeemhasan/glamspot-backend/internal/repo"
	"github.com/nayeemhasan/glamspot-backend/pkg/db/models"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
)

// Repository manages persistence for one-time-code challenges.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, challenge *models.OtpChallenge) error
	FindBySubject(ctx context.Context, subject string) (*models.OtpChallenge, error)
	DeleteBySubject(ctx context.Context, subject string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository returns an otp repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// Upsert replaces any outstanding challenge for the subject.
func (r *repository) Upsert(ctx context.Context, challenge *models.OtpChallenge) error {
	err := r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject"}},
			DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "updated_at"}),
		}).
		Create(challenge).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store challenge")
	}
	return nil
}

func (r *repository) FindBySubject(ctx context.Context, subject string) (*models.OtpChallenge, error) {
	var challenge models.OtpChallenge
	err := r.DB(ctx).
		Where("subject = ?", subject).
		First(&challenge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no code issued for subject")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load challenge")
	}
	return &challenge, nil
}

func (r *repository) DeleteBySubject(ctx context.Context, subject string) error {
	if err := r.DB(ctx).
		Where("subject = ?", subject).
		Delete(&models.OtpChallenge{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete challenge")
	}
	return nil
}

func (r *repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.DB(ctx).
		Where("expires_at < ?", now).
		Delete(&models.OtpChallenge{})
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "delete expired challenges")
	}
	return result.RowsAffected, nil
}
