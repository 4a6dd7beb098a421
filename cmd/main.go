package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/carelink/reminisce/server/adapters/gcs"
	"github.com/carelink/reminisce/server/adapters/llm"
	"github.com/carelink/reminisce/server/adapters/mongo"
	"github.com/carelink/reminisce/server/adapters/tts"
	"github.com/carelink/reminisce/server/domain/repositories"
	"github.com/carelink/reminisce/server/internal/api"
	"github.com/carelink/reminisce/server/internal/audio"
	"github.com/carelink/reminisce/server/internal/auth"
	"github.com/carelink/reminisce/server/usecase"
)

func main() {
	// Load .env file if present; real deployments use the environment.
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx := context.Background()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize adapters
	generator, err := newGenerator(logger)
	if err != nil {
		logger.Fatal("Failed to initialize text generator", zap.Error(err))
	}

	elevenLabs, err := tts.NewElevenLabs(tts.NewElevenLabsConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("Failed to initialize ElevenLabs client", zap.Error(err))
	}

	blob, err := gcs.NewStorage(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to initialize blob storage", zap.Error(err))
	}
	defer blob.Close()

	mongoClient, err := mongo.NewClient(mongo.NewConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Close(shutdownCtx); err != nil {
			logger.Error("Failed to close MongoDB connection", zap.Error(err))
		}
	}()

	reminderRepo := mongo.NewReminderRepository(mongoClient.Database)
	profileRepo := mongo.NewVoiceProfileRepository(mongoClient.Database)

	// Initialize usecase services
	processor := audio.NewProcessorFromEnv(logger)
	voiceService := usecase.NewVoiceService(processor, elevenLabs, blob, profileRepo, logger)
	renderer := usecase.NewSpeechRenderer(elevenLabs, processor, logger)
	pipelineConfig := usecase.NewReminderServiceConfigFromEnv()
	reminderService := usecase.NewReminderService(
		generator,
		voiceService,
		renderer,
		blob,
		reminderRepo,
		pipelineConfig,
		logger,
	)

	// Initialize API routes
	api.InitRoutes(e, reminderService, voiceService, reminderRepo, pipelineConfig.WorkDir, auth.SecretFromEnv(), logger)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// newGenerator selects the text generation backend from GENERATOR_PROVIDER.
func newGenerator(logger *zap.Logger) (repositories.TextGenerator, error) {
	switch os.Getenv("GENERATOR_PROVIDER") {
	case "gemini":
		return llm.NewGeminiGenerator(logger)
	case "mock":
		logger.Warn("Using mock text generator")
		return llm.NewMockGenerator(), nil
	default:
		return llm.NewOpenAIGenerator(llm.NewOpenAIConfigFromEnv(), logger)
	}
}
