package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/nayeemhasan/glamspot-backend/internal/accounts"
	"github.com/nayeemhasan/glamspot-backend/internal/bookings"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
)

// popularityWindow is how far back completed bookings count toward a seller's
// popularity score.
const popularityWindow = 30 * 24 * time.Hour

// PopularSellersJob recomputes seller popularity from recently completed
// bookings. Sellers with no completions inside the window keep whatever score
// they had; the next full recompute window phases them out naturally.
type PopularSellersJob struct {
	bookings bookings.Repository
	accounts accounts.Repository
	logg     *logger.Logger
	now      func() time.Time
}

// NewPopularSellersJob builds the daily popularity sweep.
func NewPopularSellersJob(bookingRepo bookings.Repository, accountRepo accounts.Repository, logg *logger.Logger) (*PopularSellersJob, error) {
	if bookingRepo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if accountRepo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &PopularSellersJob{
		bookings: bookingRepo,
		accounts: accountRepo,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (j *PopularSellersJob) Name() string { return "popular_sellers" }

func (j *PopularSellersJob) Run(ctx context.Context) error {
	since := j.now().UTC().Add(-popularityWindow)

	counts, err := j.bookings.CompletedCountsBySeller(ctx, since)
	if err != nil {
		return fmt.Errorf("aggregate completed bookings: %w", err)
	}

	var updated int
	for _, row := range counts {
		if err := j.accounts.SetPopularityScore(ctx, row.SellerID, row.Count); err != nil {
			j.logg.Error(j.logg.WithField(ctx, "seller_id", row.SellerID.String()), "popularity update failed", err)
			continue
		}
		updated++
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"sellers_seen":    len(counts),
		"sellers_updated": updated,
	}), "popularity scores refreshed")
	return nil
}
