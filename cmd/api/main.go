package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/JanciNeviemProste/jobsphere/internal/config"
	"github.com/JanciNeviemProste/jobsphere/internal/handlers"
	"github.com/JanciNeviemProste/jobsphere/internal/logger"
	"github.com/JanciNeviemProste/jobsphere/internal/repositories"
	"github.com/JanciNeviemProste/jobsphere/internal/services"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.Server.LogJSON, cfg.Server.LogDebug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}

	docRepo := repositories.NewDocumentRepository(db)
	resumeRepo := repositories.NewResumeRepository(db)
	matchRepo := repositories.NewMatchRepository(db)

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		zlog.Fatal("failed to create upload directory", zap.Error(err))
	}

	var scanner services.VirusScanner
	if cfg.Antivirus.Enabled {
		scanner = services.NewClamAVScanner(cfg.Antivirus.Host, cfg.Antivirus.Port)
	}
	securityGate := services.NewSecurityGate(services.SecurityGateConfig{
		MaxFileSize:     cfg.Storage.MaxFileSize,
		AntivirusPolicy: services.FailOpen,
		SniffPolicy:     services.FailOpen,
	}, scanner, zlog)

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize gemini", zap.Error(err))
	}

	embeddings, err := services.NewEmbeddingProvider(cfg.Embedding, geminiService)
	if err != nil {
		zlog.Fatal("failed to initialize embedding provider", zap.Error(err))
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		zlog,
	)
	if err != nil {
		zlog.Fatal("failed to initialize qdrant", zap.Error(err))
	}
	if err := qdrantService.InitCollection(context.Background(), uint64(embeddings.Dimensions())); err != nil {
		zlog.Fatal("failed to initialize qdrant collection", zap.Error(err))
	}

	extractor := services.NewTextExtractor(zlog)
	ocrClient := services.NewOCRClient(cfg.OCR, zlog)
	pipeline := services.NewParsePipeline(extractor, ocrClient, zlog)

	cvExtractor := services.NewCVExtractor(geminiService, cfg.Gemini.MaxRetries, zlog)
	chunker := services.NewTextChunker()

	processor := services.NewDocumentProcessor(
		docRepo,
		resumeRepo,
		storageService,
		pipeline,
		cvExtractor,
		embeddings,
		chunker,
		qdrantService,
		zlog,
	)

	worker := services.NewWorker(docRepo, processor, cfg.Worker.Concurrency, zlog)
	worker.Start(context.Background())

	matcher := services.NewMatchScorer(
		geminiService,
		cfg.Gemini.MaxRetries,
		cfg.Matching.BatchConcurrency,
		zlog,
	)
	grader := services.NewGrader(geminiService, cfg.Gemini.MaxRetries, zlog)

	uploadHandler := handlers.NewUploadHandler(docRepo, storageService, securityGate, worker)
	resumeHandler := handlers.NewResumeHandler(docRepo, resumeRepo)
	matchHandler := handlers.NewMatchHandler(resumeRepo, matchRepo, matcher, embeddings, zlog)
	gradeHandler := handlers.NewGradeHandler(grader)
	searchHandler := handlers.NewSearchHandler(embeddings, qdrantService, zlog)

	app := fiber.New(fiber.Config{
		AppName:      "JobSphere CV API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1024*1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/cv", uploadHandler.HandleUpload)
	api.Get("/cv/:id", resumeHandler.HandleGetResume)
	api.Post("/match", matchHandler.HandleMatch)
	api.Post("/match/batch", matchHandler.HandleMatchBatch)
	api.Post("/grade", gradeHandler.HandleGrade)
	api.Post("/candidates/search", searchHandler.HandleSearch)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
