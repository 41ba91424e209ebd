package settlement

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nayeemhasan/glamspot-backend/internal/repo"
	"github.com/nayeemhasan/glamspot-backend/pkg/db/models"
	"github.com/nayeemhasan/glamspot-backend/pkg/enums"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
)

// PaymentRepository manages the one-per-booking authorization snapshot.
type PaymentRepository interface {
	WithTx(tx *gorm.DB) PaymentRepository
	Create(ctx context.Context, record *models.PaymentRecord) error
	Save(ctx context.Context, record *models.PaymentRecord) error
	FindByBooking(ctx context.Context, bookingID uuid.UUID) (*models.PaymentRecord, error)
}

// EventRepository manages the append-only settlement ledger.
type EventRepository interface {
	WithTx(tx *gorm.DB) EventRepository
	Append(ctx context.Context, event *models.SettlementEvent) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.SettlementEvent, error)
	HasEvent(ctx context.Context, bookingID uuid.UUID, eventType enums.SettlementEventType) (bool, error)
}

type paymentRepository struct {
	repo.Base
}

// NewPaymentRepository returns a payment record repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{Base: repo.NewBase(db)}
}

func (r *paymentRepository) WithTx(tx *gorm.DB) PaymentRepository {
	if tx == nil {
		return r
	}
	return &paymentRepository{Base: repo.NewBase(tx)}
}

func (r *paymentRepository) Create(ctx context.Context, record *models.PaymentRecord) error {
	if err := r.DB(ctx).Create(record).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment record")
	}
	return nil
}

func (r *paymentRepository) Save(ctx context.Context, record *models.PaymentRecord) error {
	if err := r.DB(ctx).Save(record).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save payment record")
	}
	return nil
}

func (r *paymentRepository) FindByBooking(ctx context.Context, bookingID uuid.UUID) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	err := r.DB(ctx).
		Where("booking_id = ?", bookingID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no payment recorded for booking")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment record")
	}
	return &record, nil
}

type eventRepository struct {
	repo.Base
}

// NewEventRepository returns a settlement event repository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{Base: repo.NewBase(db)}
}

func (r *eventRepository) WithTx(tx *gorm.DB) EventRepository {
	if tx == nil {
		return r
	}
	return &eventRepository{Base: repo.NewBase(tx)}
}

func (r *eventRepository) Append(ctx context.Context, event *models.SettlementEvent) error {
	if err := r.DB(ctx).Create(event).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append settlement event")
	}
	return nil
}

func (r *eventRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.SettlementEvent, error) {
	var rows []models.SettlementEvent
	err := r.DB(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settlement events")
	}
	return rows, nil
}

func (r *eventRepository) HasEvent(ctx context.Context, bookingID uuid.UUID, eventType enums.SettlementEventType) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.SettlementEvent{}).
		Where("booking_id = ? AND type = ?", bookingID, eventType).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check settlement event")
	}
	return count > 0, nil
}
