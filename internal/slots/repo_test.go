package slots

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nayeemhasan/glamspot-backend/pkg/db/models"
	"github.com/nayeemhasan/glamspot-backend/pkg/enums"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:slots_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS service_slots (
  id TEXT PRIMARY KEY,
  service_id TEXT NOT NULL,
  label TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'available',
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (service_id, label)
);`
	if err := db.Exec(ddl).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func seedSlot(t *testing.T, db *gorm.DB, serviceID uuid.UUID, label string, status enums.SlotStatus) {
	t.Helper()
	slot := models.ServiceSlot{ID: uuid.New(), ServiceID: serviceID, Label: label, Status: status}
	if err := db.Create(&slot).Error; err != nil {
		t.Fatalf("seed slot: %v", err)
	}
}

func TestClaimFlipsAvailableSlot(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	serviceID := uuid.New()
	seedSlot(t, db, serviceID, "10:00", enums.SlotStatusAvailable)

	if err := repo.Claim(ctx, serviceID, "10:00"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	slot, err := repo.FindByLabel(ctx, serviceID, "10:00")
	if err != nil {
		t.Fatalf("load slot: %v", err)
	}
	if slot.Status != enums.SlotStatusBooked {
		t.Fatalf("expected booked, got %s", slot.Status)
	}
}

func TestClaimBookedSlotConflicts(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	serviceID := uuid.New()
	seedSlot(t, db, serviceID, "10:00", enums.SlotStatusBooked)

	err := repo.Claim(ctx, serviceID, "10:00")
	if err == nil {
		t.Fatal("expected conflict")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClaimMissingSlotNotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)

	err := repo.Claim(context.Background(), uuid.New(), "10:00")
	if err == nil {
		t.Fatal("expected not found")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClaimIsFirstComeFirstServed(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	serviceID := uuid.New()
	seedSlot(t, db, serviceID, "14:30", enums.SlotStatusAvailable)

	if err := repo.Claim(ctx, serviceID, "14:30"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	err := repo.Claim(ctx, serviceID, "14:30")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("second claim should conflict, got %v", err)
	}
}

func TestReleaseReopensSlot(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	serviceID := uuid.New()
	seedSlot(t, db, serviceID, "09:00", enums.SlotStatusBooked)

	if err := repo.Release(ctx, serviceID, "09:00"); err != nil {
		t.Fatalf("release: %v", err)
	}
	slot, err := repo.FindByLabel(ctx, serviceID, "09:00")
	if err != nil {
		t.Fatalf("load slot: %v", err)
	}
	if slot.Status != enums.SlotStatusAvailable {
		t.Fatalf("expected available, got %s", slot.Status)
	}
}

func TestReleaseAvailableSlotStateConflict(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	serviceID := uuid.New()
	seedSlot(t, db, serviceID, "09:00", enums.SlotStatusAvailable)

	err := repo.Release(ctx, serviceID, "09:00")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListByServiceOrdersByLabel(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	serviceID := uuid.New()
	seedSlot(t, db, serviceID, "11:00", enums.SlotStatusAvailable)
	seedSlot(t, db, serviceID, "09:00", enums.SlotStatusBooked)
	seedSlot(t, db, uuid.New(), "09:00", enums.SlotStatusAvailable)

	rows, err := repo.ListByService(ctx, serviceID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(rows))
	}
	if rows[0].Label != "09:00" || rows[1].Label != "11:00" {
		t.Fatalf("unexpected order: %s, %s", rows[0].Label, rows[1].Label)
	}
}
