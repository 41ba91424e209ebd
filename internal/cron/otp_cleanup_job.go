package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/nayeemhasan/glamspot-backend/internal/otp"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
)

// OtpCleanupJob sweeps expired confirmation challenges. Expiry is enforced at
// verify time, so this is storage hygiene only.
type OtpCleanupJob struct {
	repo otp.Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewOtpCleanupJob builds the challenge sweep.
func NewOtpCleanupJob(repo otp.Repository, logg *logger.Logger) (*OtpCleanupJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("otp repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &OtpCleanupJob{repo: repo, logg: logg, now: time.Now}, nil
}

func (j *OtpCleanupJob) Name() string { return "otp_cleanup" }

func (j *OtpCleanupJob) Run(ctx context.Context) error {
	deleted, err := j.repo.DeleteExpired(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("delete expired challenges: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "deleted", deleted), "expired challenges purged")
	return nil
}
