package slots

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
)

// Repository manages persistence for service time slots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByLabel(ctx context.Context, serviceID uuid.UUID, label string) (*models.ServiceSlot, error)
	ListByService(ctx context.Context, serviceID uuid.UUID) ([]models.ServiceSlot, error)
	CreateMany(ctx context.Context, slots []models.ServiceSlot) error
	Claim(ctx context.Context, serviceID uuid.UUID, label string) error
	Release(ctx context.Context, serviceID uuid.UUID, label string) error
}

type repository struct {
	repo.Base
}

// NewRepository returns a slot repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) FindByLabel(ctx context.Context, serviceID uuid.UUID, label string) (*models.ServiceSlot, error) {
	var slot models.ServiceSlot
	err := r.DB(ctx).
		Where("service_id = ? AND label = ?", serviceID, label).
		First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "slot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load slot")
	}
	return &slot, nil
}

func (r *repository) ListByService(ctx context.Context, serviceID uuid.UUID) ([]models.ServiceSlot, error) {
	var rows []models.ServiceSlot
	if err := r.DB(ctx).
		Where("service_id = ?", serviceID).
		Order("label ASC").
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list slots")
	}
	return rows, nil
}

func (r *repository) CreateMany(ctx context.Context, slots []models.ServiceSlot) error {
	if len(slots) == 0 {
		return nil
	}
	if err := r.DB(ctx).Create(&slots).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create slots")
	}
	return nil
}

// Claim flips an available slot to booked in one conditional update. Zero rows
// means someone else won the race (or the slot never existed); the unique index
// on (service_id, label) guarantees at most one row can match.
func (r *repository) Claim(ctx context.Context, serviceID uuid.UUID, label string) error {
	result := r.DB(ctx).
		Model(&models.ServiceSlot{}).
		Where("service_id = ? AND label = ? AND status = ?", serviceID, label, enums.SlotStatusAvailable).
		Updates(map[string]any{
			"status":     enums.SlotStatusBooked,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "claim slot")
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByLabel(ctx, serviceID, label); err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeConflict, "slot already booked")
	}
	return nil
}

// Release puts a booked slot back on the market.
func (r *repository) Release(ctx context.Context, serviceID uuid.UUID, label string) error {
	result := r.DB(ctx).
		Model(&models.ServiceSlot{}).
		Where("service_id = ? AND label = ? AND status = ?", serviceID, label, enums.SlotStatusBooked).
		Updates(map[string]any{
			"status":     enums.SlotStatusAvailable,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "release slot")
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByLabel(ctx, serviceID, label); err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "slot is not booked")
	}
	return nil
}
