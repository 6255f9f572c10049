package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wenyfour/rideshare/config"
	"github.com/wenyfour/rideshare/internal/auth"
	"github.com/wenyfour/rideshare/internal/bootstrap"
	"github.com/wenyfour/rideshare/internal/cache"
	"github.com/wenyfour/rideshare/internal/email"
	"github.com/wenyfour/rideshare/internal/kafka"
	"github.com/wenyfour/rideshare/internal/logging"
	"github.com/wenyfour/rideshare/internal/repository"
	"github.com/wenyfour/rideshare/internal/service/accounts"
	"github.com/wenyfour/rideshare/internal/service/drivers"
	"github.com/wenyfour/rideshare/internal/service/rides"
	"github.com/wenyfour/rideshare/internal/service/transactions"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.NewLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.RidesCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	mailer := email.NewSender(cfg.Mail)
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)

	userRepo := repository.NewUserRepository(pool)
	rideRepo := repository.NewRideRepository(pool)
	driverRepo := repository.NewDriverRepository(pool)
	carRepo := repository.NewCarRepository(pool)
	transactionRepo := repository.NewTransactionRepository(pool)
	intakeRepo := repository.NewIntakeRepository(pool)

	rideService := rides.NewRideService(
		rideRepo,
		userRepo,
		driverRepo,
		carRepo,
		redisCache,
		producer,
		logger,
		time.Duration(cfg.Booking.HoldTTLSeconds)*time.Second,
		rides.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		rides.WithVerifiedDriverGate(cfg.Booking.RequireVerifiedDriver),
	)
	accountService := accounts.NewAccountService(
		userRepo,
		intakeRepo,
		issuer,
		mailer,
		producer,
		logger,
		accounts.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		accounts.WithStaffAddr(cfg.Mail.StaffAddr),
	)
	driverService := drivers.NewDriverService(driverRepo, carRepo)
	transactionService := transactions.NewTransactionService(transactionRepo)

	svcs := bootstrap.Services{
		Rides:        rideService,
		Accounts:     accountService,
		Drivers:      driverService,
		Transactions: transactionService,
	}

	if err := bootstrap.Run(ctx, cfg, issuer, svcs); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
