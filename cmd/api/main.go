package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"donation-engine/internal/client"
	"donation-engine/internal/config"
	"donation-engine/internal/gateway"
	"donation-engine/internal/handler"
	"donation-engine/internal/model"
	"donation-engine/internal/notify"
	"donation-engine/internal/receipt"
	"donation-engine/internal/repository"
	"donation-engine/internal/server"
	"donation-engine/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db := client.InitPostgresClient(cfg.DatabaseURL)

	gateways := gateway.NewRegistry(model.GatewayRazorpay,
		gateway.NewRazorpay(&cfg.Razorpay),
		gateway.NewPayU(&cfg.PayU),
	)

	donationRepo := repository.NewDonationRepository(db)
	receiptBuilder := receipt.NewBuilder(&cfg.Receipt)
	mailer := notify.NewMailer(&cfg.SMTP)

	verificationService := service.NewVerificationService(gateways, donationRepo, receiptBuilder, mailer)
	reconciliationService := service.NewReconciliationService(gateways, donationRepo)

	donationHandler := handler.NewDonationHandler(verificationService, reconciliationService, donationRepo, receiptBuilder)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(donationHandler)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
