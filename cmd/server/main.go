package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"online-cinema/internal/config"
	"online-cinema/internal/database"
	"online-cinema/internal/handlers"
	"online-cinema/internal/middleware"
	"online-cinema/internal/repositories"
	"online-cinema/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(database.Config{
		URL:      cfg.Database.URL,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	cartRepo := repositories.NewCartRepository(db.DB)
	orderRepo := repositories.NewOrderRepository(db.DB)
	paymentRepo := repositories.NewPaymentRepository(db.DB)

	var gateway services.PaymentGateway
	if cfg.Stripe.SecretKey != "" {
		gateway = services.NewStripeGateway(cfg.Stripe)
		log.Println("Payment gateway: Stripe")
	} else {
		gateway = services.NewFakeGateway(cfg.Stripe.WebhookSecret)
		log.Println("Payment gateway: in-memory fake (no Stripe credentials provided)")
	}

	emailService := services.NewEmailService(cfg.Email)
	cartService := services.NewCartService(cartRepo, orderRepo)
	orderService := services.NewOrderService(orderRepo)
	paymentService := services.NewPaymentService(orderRepo, paymentRepo, gateway, emailService, cfg.Stripe.Currency)
	refundService := services.NewRefundService(orderRepo, paymentRepo, gateway, emailService)

	router := handlers.NewRouter(handlers.RouterDeps{
		Auth:     middleware.NewAuthMiddleware(cfg.Auth.JWTSecret),
		Carts:    cartService,
		Orders:   orderService,
		Payments: paymentService,
		Refunds:  refundService,
	})

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
