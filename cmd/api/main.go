package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/nayeemhasan/glamspot-backend/api/routes"
	"github.com/nayeemhasan/glamspot-backend/internal/accounts"
	"github.com/nayeemhasan/glamspot-backend/internal/bookings"
	"github.com/nayeemhasan/glamspot-backend/internal/listings"
	"github.com/nayeemhasan/glamspot-backend/internal/notify"
	"github.com/nayeemhasan/glamspot-backend/internal/otp"
	"github.com/nayeemhasan/glamspot-backend/internal/payments"
	"github.com/nayeemhasan/glamspot-backend/internal/settlement"
	"github.com/nayeemhasan/glamspot-backend/internal/slots"
	"github.com/nayeemhasan/glamspot-backend/pkg/config"
	"github.com/nayeemhasan/glamspot-backend/pkg/db"
	"github.com/nayeemhasan/glamspot-backend/pkg/logger"
	"github.com/nayeemhasan/glamspot-backend/pkg/migrate"
	"github.com/nayeemhasan/glamspot-backend/pkg/redis"
	"github.com/nayeemhasan/glamspot-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to initialize stripe", err)
		os.Exit(1)
	}

	gateway, err := payments.NewStripeGateway(stripeClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway", err)
		os.Exit(1)
	}

	sender, err := notify.NewSendgridSender(cfg.Sendgrid)
	if err != nil {
		logg.Error(context.Background(), "failed to create email sender", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	listingRepo := listings.NewRepository(gormDB)
	slotRepo := slots.NewRepository(gormDB)
	bookingRepo := bookings.NewRepository(gormDB)
	accountRepo := accounts.NewRepository(gormDB)
	otpRepo := otp.NewRepository(gormDB)
	recordRepo := settlement.NewPaymentRepository(gormDB)
	eventRepo := settlement.NewEventRepository(gormDB)

	otpService, err := otp.NewService(otp.ServiceParams{
		Repo:    otpRepo,
		Sender:  sender,
		Limiter: redisClient,
		Logger:  logg,
		JWT:     cfg.JWT,
		OTP:     cfg.OTP,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create otp service", err)
		os.Exit(1)
	}

	accountService, err := accounts.NewService(accounts.ServiceParams{
		Repo:    accountRepo,
		Gateway: gateway,
		Sender:  sender,
		Logger:  logg,
		Stripe:  cfg.Stripe,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	listingService, err := listings.NewService(listings.ServiceParams{
		DB:     gormDB,
		Repo:   listingRepo,
		Slots:  slotRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create listings service", err)
		os.Exit(1)
	}

	bookingService, err := bookings.NewService(bookings.ServiceParams{
		DB:       gormDB,
		Repo:     bookingRepo,
		Listings: listingRepo,
		Slots:    slotRepo,
		Accounts: accountRepo,
		OTP:      otpService,
		Sender:   sender,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bookings service", err)
		os.Exit(1)
	}

	settlementService, err := settlement.NewService(settlement.ServiceParams{
		DB:       gormDB,
		Bookings: bookingRepo,
		Slots:    slotRepo,
		Records:  recordRepo,
		Events:   eventRepo,
		Accounts: accountService,
		OTP:      otpService,
		Gateway:  gateway,
		Logger:   logg,
		Fees:     cfg.Fees,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			OTP:          otpService,
			Listings:     listingService,
			Bookings:     bookingService,
			Settlement:   settlementService,
			Accounts:     accountService,
			AccountsRepo: accountRepo,
			Gateway:      gateway,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
