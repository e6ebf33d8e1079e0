// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/leadmasterhq/leadmaster-backend/internal/config"
	"github.com/leadmasterhq/leadmaster-backend/internal/controller"
	"github.com/leadmasterhq/leadmaster-backend/internal/db"
	"github.com/leadmasterhq/leadmaster-backend/internal/handler"
	"github.com/leadmasterhq/leadmaster-backend/internal/logger"
	"github.com/leadmasterhq/leadmaster-backend/internal/middleware"
	"github.com/leadmasterhq/leadmaster-backend/internal/repository"
	"github.com/leadmasterhq/leadmaster-backend/internal/service"
	"github.com/leadmasterhq/leadmaster-backend/internal/smtp"
	"github.com/leadmasterhq/leadmaster-backend/internal/validation"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// Not fatal: OS environment variables may carry everything.
	}

	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat).WithComponent("server")

	if err := cfg.ValidateDB(); err != nil {
		log.Fatal().Err(err).Msg("configuration invalid")
	}

	database, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("database unreachable")
	}
	defer database.Close()

	leadRepo := &repository.LeadRepository{DB: database}
	campaignRepo := &repository.CampaignRepository{DB: database}
	logRepo := &repository.CampaignLogRepository{DB: database}

	validator := validation.New()

	campaignService := &service.CampaignService{CampaignRepo: campaignRepo}
	leadService := &service.LeadService{LeadRepo: leadRepo, Validator: validator}

	mailController := &controller.MailController{
		NewGateway: func(c config.SMTPConfig) smtp.Gateway { return smtp.NewGateway(c) },
		Validator:  validator,
	}
	campaignController := &controller.CampaignController{CampaignService: campaignService}
	leadController := &controller.LeadController{LeadService: leadService, LogRepo: logRepo}
	trackingHandler := &handler.TrackingHandler{CampaignService: campaignService, Log: log}

	mw := middleware.New(log)

	r := chi.NewRouter()
	r.Use(mw.Recover)
	r.Use(mw.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.Server.CORSOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/api/health", mailController.Health)
	r.Post("/api/send-email", mailController.SendEmail)
	r.Post("/api/validate-email", mailController.ValidateEmail)
	r.Post("/api/validate-batch", mailController.ValidateBatch)

	r.Post("/api/leads", leadController.CreateLeads)
	r.Get("/api/leads/{email}/logs", leadController.LeadLogs)

	r.Post("/api/campaigns", campaignController.CreateCampaign)
	r.Get("/api/campaigns", campaignController.ListCampaigns)
	r.Get("/api/campaigns/{id}", campaignController.GetCampaign)
	r.Post("/api/campaigns/{id}/analysis", campaignController.Annotate)

	r.Get("/track/{campaignID}/{recipientID}", trackingHandler.HandleOpen)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.Server.Addr).Msg("server running")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server shut down")
}
