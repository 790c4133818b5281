package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvalenz/roomreserve/config"
	"github.com/dvalenz/roomreserve/internal/bootstrap"
	"github.com/dvalenz/roomreserve/internal/broadcast"
	"github.com/dvalenz/roomreserve/internal/cache"
	"github.com/dvalenz/roomreserve/internal/kafka"
	"github.com/dvalenz/roomreserve/internal/repository"
	"github.com/dvalenz/roomreserve/internal/schedule"
	"github.com/dvalenz/roomreserve/internal/service/reservation"
	"github.com/dvalenz/roomreserve/internal/service/rooms"
	"github.com/jackc/pgx/v5/pgxpool"
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

	sched, err := schedule.New(cfg.Schedule)
	if err != nil {
		log.Fatalf("build schedule: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.RoomsCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	hub := broadcast.NewHub()

	roomRepo := repository.NewRoomRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	roomService := rooms.NewRoomService(roomRepo, redisCache, time.Duration(cfg.Booking.RoomsCacheTTLSeconds)*time.Second)
	reservationService := reservation.NewReservationService(
		reservationRepo,
		roomRepo,
		sched,
		redisCache,
		producer,
		hub,
		cfg.Kafka.ReservationsTopic,
		time.Duration(cfg.Booking.HoldTTLSeconds)*time.Second,
		time.Duration(cfg.Booking.ConfirmationTTLMinutes)*time.Minute,
		reservation.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := bootstrap.Run(ctx, cfg, roomService, reservationService, hub); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
