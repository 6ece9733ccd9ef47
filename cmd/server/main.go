package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/eventbook/eventbook-api/internal/clock"
	"github.com/eventbook/eventbook-api/internal/config"
	"github.com/eventbook/eventbook-api/internal/database"
	"github.com/eventbook/eventbook-api/internal/handler"
	"github.com/eventbook/eventbook-api/internal/queue"
	"github.com/eventbook/eventbook-api/internal/repository"
	"github.com/eventbook/eventbook-api/internal/router"
	"github.com/eventbook/eventbook-api/internal/service"
	"github.com/eventbook/eventbook-api/migrations"
)

func main() {
	// A .env file is a development convenience; in deployment the
	// variables come from the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded, relying on environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := migrations.Apply(ctx, db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	rdb := config.NewRedisClient() // nil when Redis is not configured

	store := repository.NewStore(db)
	events := repository.NewEventRepo(store)
	seats := repository.NewSeatRepo(store)
	bookings := repository.NewBookingRepo(store)
	payments := repository.NewPaymentRepo(store)

	clk := clock.NewSystem()
	ledger := service.NewSeatLedger(store, seats, events, clk, cfg.HoldTTL)
	bookingSvc := service.NewBookingService(store, ledger, events, bookings, clk)
	paymentSvc := service.NewPaymentService(store, payments, bookings, events, bookingSvc, clk)
	checkinSvc := service.NewCheckinService(store, bookings, clk)
	eventSvc := service.NewEventService(store, events, seats)

	sweeper := service.NewHoldSweeper(ledger, seats, cfg.SweepInterval)
	go sweeper.Run(ctx)
	go queue.StartBookingConsumer()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Event:   handler.NewEventHandler(eventSvc, ledger),
		Seat:    handler.NewSeatHandler(ledger),
		Booking: handler.NewBookingHandler(bookingSvc),
		Payment: handler.NewPaymentHandler(paymentSvc),
		Checkin: handler.NewCheckinHandler(checkinSvc),
	}, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, hold_ttl=%s)", addr, cfg.Env, cfg.HoldTTL)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
