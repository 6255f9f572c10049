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
	"github.com/wenyfour/rideshare/internal/cache"
	"github.com/wenyfour/rideshare/internal/email"
	"github.com/wenyfour/rideshare/internal/kafka"
	"github.com/wenyfour/rideshare/internal/logging"
	"github.com/wenyfour/rideshare/internal/repository"
	"github.com/wenyfour/rideshare/internal/service/rides"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.RidesCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	userRepo := repository.NewUserRepository(pool)
	rideRepo := repository.NewRideRepository(pool)
	driverRepo := repository.NewDriverRepository(pool)
	carRepo := repository.NewCarRepository(pool)

	rideService := rides.NewRideService(
		rideRepo,
		userRepo,
		driverRepo,
		carRepo,
		redisCache,
		producer,
		logger,
		time.Duration(cfg.Booking.HoldTTLSeconds)*time.Second,
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	mailer := email.NewSender(cfg.Mail)

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, event kafka.NotificationEvent) error {
			return mailer.Send(ctx, event)
		}); err != nil {
			logger.Error("consumer stopped", "error", err)
		}
	}()

	expireTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer expireTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-expireTicker.C:
			expired, err := rideService.ExpireDeparted(ctx)
			if err != nil {
				logger.Error("expire rides", "error", err)
				continue
			}
			if expired > 0 {
				logger.Info("expired departed rides", "count", expired)
			}
		case s := <-sig:
			logger.Info("received signal, shutting down", "signal", s.String())
			return
		}
	}
}
