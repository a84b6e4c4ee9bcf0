package main

import (
	"fmt"
	"os"

	"github.com/nurpe/buildops-leveling/internal/auth"
	"github.com/nurpe/buildops-leveling/internal/config"
	"github.com/nurpe/buildops-leveling/internal/db"
	"github.com/nurpe/buildops-leveling/internal/excel"
	httphandler "github.com/nurpe/buildops-leveling/internal/http"
	"github.com/nurpe/buildops-leveling/internal/http/middleware"
	"github.com/nurpe/buildops-leveling/internal/logger"
	"github.com/nurpe/buildops-leveling/internal/pdf"
	"github.com/nurpe/buildops-leveling/internal/repository"
	"github.com/nurpe/buildops-leveling/internal/service"
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

	levelingRepo := repository.NewLevelingRepository(database)
	snapshotRepo := repository.NewSnapshotRepository(database)

	levelingService := service.NewLevelingService(levelingRepo, cfg, log)
	snapshotService := service.NewSnapshotService(snapshotRepo, levelingRepo, excel.NewGenerator(), pdf.NewGenerator(), log)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(levelingService, snapshotService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting leveling service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
