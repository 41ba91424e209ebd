package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nayeemhasan/glamspot-backend/api/controllers"
	"github.com/nayeemhasan/glamspot-backend/api/middleware"
	"github.com/nayeemhasan/glamspot-backend/internal/accounts"
	"github.com/nayeemhasan/glamspot-backend/internal/bookings"
	"github.com/nayeemhasan/glamspot-backend/internal/listings"
	"github.com/nayeemhasan/glamspot-backend/internal/otp"
	"github.com/nayeemhasan/glamspot-backend/internal/payments"
	"github.com/nayeemhasan/glamspot-backend/internal/settlement"
	"github.com/nayeemhasan/glamspot-backend/pkg/config"
	"github.com/nayeemhasan/glamspot-backend/pkg/db"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
	"github.com/nayeemhasan/glamspot-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        *redis.Client
	OTP          otp.Service
	Listings     listings.Service
	Bookings     bookings.Service
	Settlement   settlement.Service
	Accounts     accounts.Service
	AccountsRepo accounts.Repository
	Gateway      payments.Gateway
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	// Code issuance and verification are unauthenticated: the buyer proving
	// delivery may not hold a platform session at all.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/send-otp", controllers.SendOTP(deps.OTP, logg))
		r.Post("/verify-otp", controllers.VerifyOTP(deps.OTP, logg))
	})

	// Public catalog.
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/listings", controllers.ListingBrowse(deps.Listings, logg))
		r.Get("/listings/{listingId}", controllers.ListingDetail(deps.Listings, logg))
		r.Get("/top-sellers", controllers.TopSellers(deps.AccountsRepo, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/listings", func(r chi.Router) {
			r.Use(middleware.RequireRole("seller", logg))
			r.Post("/", controllers.ListingCreate(deps.Listings, logg))
			r.Post("/{listingId}/slots", controllers.ListingAddSlots(deps.Listings, logg))
			r.Post("/{listingId}/status", controllers.ListingSetStatus(deps.Listings, logg))
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/request-booking", controllers.BookingRequest(deps.Bookings, logg))
			r.Post("/accept-booking/{bookingId}", controllers.BookingAccept(deps.Bookings, logg))
			r.Post("/decline-booking/{bookingId}", controllers.BookingDecline(deps.Settlement, logg))
			r.Get("/my", controllers.MyBookings(deps.Bookings, logg))
			r.Get("/seller", controllers.SellerBookings(deps.Bookings, logg))
			r.Get("/{bookingId}", controllers.BookingDetail(deps.Bookings, logg))
			r.Get("/{bookingId}/ledger", controllers.BookingLedger(deps.Settlement, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/make-payment", controllers.MakePayment(deps.Settlement, logg))
			r.Post("/request-completion-code/{bookingId}", controllers.RequestCompletionCode(deps.Settlement, logg))
			r.Post("/transfer-funds/{bookingId}", controllers.TransferFunds(deps.Settlement, logg))
			r.Post("/refund-payment/{bookingId}", controllers.RefundPayment(deps.Settlement, logg))
			r.Post("/save-card", controllers.SaveCard(deps.Accounts, deps.Gateway, logg))
			r.Get("/cards", controllers.ListCards(deps.Accounts, deps.Gateway, logg))
			r.Delete("/cards/{paymentMethodId}", controllers.DeleteCard(deps.Gateway, logg))
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/onboarding-link", controllers.OnboardingLink(deps.Accounts, logg))
			r.Get("/me", controllers.AccountMe(deps.Accounts, logg))
			r.Post("/sync", controllers.AccountSync(deps.Accounts, logg))
		})
	})

	return r
}
