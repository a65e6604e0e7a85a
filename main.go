package main

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"hospital-server/internal/config"
	"hospital-server/internal/encryption"
	"hospital-server/internal/jobs"
	"hospital-server/internal/logger"
	"hospital-server/internal/models"
	"hospital-server/internal/routes"
	"hospital-server/internal/scheduling"
	"hospital-server/internal/token"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("error loading config: %v", err))
	}

	log := logger.New(cfg.Environment)

	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}

	cipher, err := encryption.New(cfg.AESEncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing field encryption")
	}

	tokens := token.NewManager(db, cfg, log)
	scheduler := scheduling.NewService(db, log)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, db, tokens, scheduler, cipher, log)

	jobs.StartScheduler(db, log)

	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := router.Run(serverAddr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
