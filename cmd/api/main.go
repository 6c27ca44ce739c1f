package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/construindopropositos/plataforma-agendamento-premium/internal/handlers"
	"github.com/construindopropositos/plataforma-agendamento-premium/internal/mailer"
	"github.com/construindopropositos/plataforma-agendamento-premium/internal/notify"
	"github.com/construindopropositos/plataforma-agendamento-premium/internal/payments"
	"github.com/construindopropositos/plataforma-agendamento-premium/internal/repository"
	"github.com/construindopropositos/plataforma-agendamento-premium/internal/service"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/cache"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/config"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/database"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/events"
	"github.com/construindopropositos/plataforma-agendamento-premium/pkg/logger"
	mw "github.com/construindopropositos/plataforma-agendamento-premium/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	store := cache.NewStore(redisClient)

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	var mailService mailer.Service
	if cfg.Email.DevMode || cfg.Email.MailerSendKey == "" {
		mailService = mailer.NewDevMailer()
	} else {
		mailService = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}

	gateway, err := payments.NewMercadoPago(cfg.MercadoPago.AccessToken)
	if err != nil {
		logger.Error("Failed to configure payment gateway", "error", err)
		os.Exit(1)
	}

	// Repositories
	availabilityRepo := repository.NewAvailabilityRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)

	// Services
	schedulingService, err := service.NewSchedulingService(availabilityRepo, appointmentRepo, eventBus, cfg)
	if err != nil {
		logger.Error("Failed to initialize scheduling service", "error", err)
		os.Exit(1)
	}
	paymentService := service.NewPaymentService(appointmentRepo, gateway, eventBus, cfg)

	// Background workers
	sweeper := service.NewSweeper(appointmentRepo, eventBus, cfg.Booking.PendingTTL)
	if err := sweeper.Start(cfg.Booking.SweepInterval); err != nil {
		logger.Error("Failed to start sweeper", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	notifier := notify.New(eventBus, mailService)
	if err := notifier.Start(); err != nil {
		logger.Error("Failed to start notifier", "error", err)
		os.Exit(1)
	}

	// HTTP
	h := handlers.New(schedulingService, paymentService, store, cfg.Auth.JWTSecret)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(mw.Idempotency(store))
	h.Mount(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting booking API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
