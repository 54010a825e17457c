package main

import (
	"fmt"
	"net/http"
	"os"

	"exoplanet-finder-api/config"
	"exoplanet-finder-api/handlers"
	"exoplanet-finder-api/middleware"
	"exoplanet-finder-api/ml"
	"exoplanet-finder-api/models"
	"exoplanet-finder-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("loaded .env file")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Model and scaler artifacts are required for readiness: fail now, not
	// on the first request.
	fullScaler, err := ml.LoadScaler(cfg.Model.FullScalerPath(), ml.Full)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load full-schema scaler")
	}
	fullModel, err := ml.LoadEnsemble(cfg.Model.FullModelPath())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load full-schema model")
	}
	fullExplainer, err := ml.NewExplainer(fullModel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build full-schema explainer")
	}

	reducedScaler, err := ml.LoadScaler(cfg.Model.ReducedScalerPath(), ml.Reduced)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load reduced-schema scaler")
	}
	reducedModel, err := ml.LoadEnsemble(cfg.Model.ReducedModelPath())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load reduced-schema model")
	}
	reducedExplainer, err := ml.NewExplainer(reducedModel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build reduced-schema explainer")
	}
	log.Info().Str("dir", cfg.Model.ArtifactDir).Float64("threshold", cfg.Model.Threshold).
		Msg("model artifacts loaded")

	// Database
	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get sql db handle")
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	if err := db.AutoMigrate(&models.User{}, &models.Observation{}, &models.ReducedObservation{}); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Redis
	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, caching and live feed disabled")
	}

	authService := services.NewAuthService(cfg.JWT, cache)

	fullService := services.NewPredictionService(
		ml.Full, fullScaler, fullModel, fullExplainer,
		services.NewFullObservationRecorder(db, cache), cfg.Model.Threshold,
	)
	reducedService := services.NewPredictionService(
		ml.Reduced, reducedScaler, reducedModel, reducedExplainer,
		services.NewReducedObservationRecorder(db, cache), cfg.Model.Threshold,
	)

	authHandler := handlers.NewAuthHandler(db, authService)
	predictHandler := handlers.NewPredictHandler(fullService, reducedService)
	observationsHandler := handlers.NewObservationsHandler(db, cache)

	router := gin.Default()
	router.Use(middleware.SetupCORS(cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "UP",
			"message": "Exoplanet Finder API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.POST("/logout", authHandler.Logout)
		api.POST("/refresh", authHandler.Refresh)
		api.GET("/user-info", middleware.RequireAuth(authService), authHandler.UserInfo)
		api.PUT("/user-info", middleware.RequireAuth(authService), authHandler.UpdateUserInfo)
		api.PATCH("/user-info", middleware.RequireAuth(authService), authHandler.UpdateUserInfo)

		api.POST("/predict", middleware.OptionalAuth(authService), predictHandler.Predict)
		api.POST("/bulk_predict", middleware.OptionalAuth(authService), predictHandler.BulkPredict)
		api.POST("/predict_noob", middleware.OptionalAuth(authService), predictHandler.PredictReduced)
		api.POST("/bulk_predict_noob", middleware.OptionalAuth(authService), predictHandler.BulkPredictReduced)

		api.GET("/exoplanets", observationsHandler.GetObservations)
		api.GET("/exoplanets_noob", observationsHandler.GetReducedObservations)
		api.GET("/give_my_exoplanets", middleware.RequireAuth(authService), observationsHandler.GetMyObservations)
	}

	router.GET("/ws/live", handlers.LiveWebSocket(cache, authService))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("starting server")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
