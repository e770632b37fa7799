package main

import (
	"fmt"
	"os"

	"github.com/certify-dev/practices-service/internal/auth"
	"github.com/certify-dev/practices-service/internal/config"
	"github.com/certify-dev/practices-service/internal/db"
	"github.com/certify-dev/practices-service/internal/docstore"
	"github.com/certify-dev/practices-service/internal/excel"
	httphandler "github.com/certify-dev/practices-service/internal/http"
	"github.com/certify-dev/practices-service/internal/http/middleware"
	"github.com/certify-dev/practices-service/internal/logger"
	"github.com/certify-dev/practices-service/internal/notify"
	"github.com/certify-dev/practices-service/internal/pdf"
	"github.com/certify-dev/practices-service/internal/pricing"
	"github.com/certify-dev/practices-service/internal/repository"
	"github.com/certify-dev/practices-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	tariffRepo := repository.NewTariffRepository(database)
	practiceRepo := repository.NewPracticeRepository(database)
	engine := pricing.NewEngine(tariffRepo, tariffRepo, cfg.Pricing.VATRate)

	docs, err := docstore.NewFileStore(cfg.Storage.ReceiptDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init receipt store")
	}

	pdfGenerator, err := pdf.NewGenerator()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}

	practiceService := service.NewPracticeService(
		practiceRepo,
		engine,
		tariffRepo,
		docs,
		notify.NewLogSink(log),
		excel.NewGenerator(),
		pdfGenerator,
		log,
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(practiceService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting practices service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
