package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raquelxaviert/micangaria-sub002/config"
	"github.com/raquelxaviert/micangaria-sub002/internal/database"
	"github.com/raquelxaviert/micangaria-sub002/internal/logger"
	"github.com/raquelxaviert/micangaria-sub002/internal/payment"
	"github.com/raquelxaviert/micangaria-sub002/internal/producer"
	"github.com/raquelxaviert/micangaria-sub002/internal/repository"
	"github.com/raquelxaviert/micangaria-sub002/internal/router"
	"github.com/raquelxaviert/micangaria-sub002/internal/service"
	"github.com/raquelxaviert/micangaria-sub002/internal/session"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	sessions, err := session.NewStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	if err != nil {
		log.Fatal("failed to create session store", zap.Error(err))
	}
	defer sessions.Close()

	// Event bus is optional (nil disables publishing)
	var events service.EventBus
	if len(cfg.KafkaBrokers) > 0 {
		p := producer.NewOrderEventProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer p.Close()
		events = p
		log.Info("Kafka order events enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	} else {
		log.Info("Kafka order events disabled")
	}

	provider := payment.NewClient(cfg.Payment.APIBaseURL, cfg.Payment.AccessToken, log)
	validator := payment.NewSignatureValidator(cfg.Payment.WebhookSecret)

	reservations := service.NewReservationService(repos, log)
	orders := service.NewOrderService(repos, provider, events, cfg.PublicBaseURL, log)

	r := router.Router(reservations, orders, sessions, validator, log)

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting checkout HTTP server", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down checkout HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("Checkout HTTP server stopped gracefully")
}
