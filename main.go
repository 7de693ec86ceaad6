package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"uniscript/config"
	"uniscript/handlers"
	"uniscript/internal/downloader"
	"uniscript/internal/ffmpeg"
	"uniscript/internal/pipeline"
	"uniscript/internal/store"
	"uniscript/internal/transcribe"
	"uniscript/internal/translate"
	"uniscript/internal/worker"
	"uniscript/middleware"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger()

	supaClient, err := config.NewSupabaseClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Supabase: %v", err)
	}
	st := store.NewSupabaseStore(supaClient)

	media := ffmpeg.NewService(cfg.ProcessedDir)
	transcriber := transcribe.NewWhisperClient(cfg.OpenAIAPIKey, cfg.WhisperModel)
	translator := translate.NewScriptTranslator(
		translate.NewLingoClient(cfg.LingoAPIURL, cfg.LingoAPIKey), log)
	dl := downloader.New(cfg.UploadDir)

	orchestrator := pipeline.NewOrchestrator(st, media, transcriber, log)
	dispatcher := worker.NewDispatcher(cfg.PipelineWorkers, cfg.PipelineQueueLen, log)
	dispatcher.Run()

	h := handlers.NewApplicationHandler(log, cfg, st, media, dl, translator, dispatcher, orchestrator)

	app := fiber.New(fiber.Config{
		// Uploads just over the ceiling still reach the handler's own size
		// check; anything beyond the headroom is stopped by the body limit
		// and answered through the ErrorHandler with the same 400.
		BodyLimit:    int(cfg.MaxUploadSize) + 10*1024*1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "UniScript API is healthy",
		})
	})

	api := app.Group("/api")
	videos := api.Group("/videos")

	videos.Post("/upload", h.UploadMedia)
	videos.Post("/process-url", h.ProcessURL)
	videos.Get("/", h.ListLatestVideos)
	videos.Get("/analytics", h.GetAnalytics)
	videos.Get("/:id/status", h.GetVideoStatus)
	videos.Get("/:id/script", h.GetScript)
	videos.Get("/:id/script/download", h.DownloadScript)
	videos.Post("/:id/translate", h.TranslateVideo)
	videos.Get("/:id/translations", h.ListTranslations)
	videos.Get("/translations/:translationId/download", h.DownloadTranslation)

	// Serve on cfg.Port; shut down cleanly on SIGINT/SIGTERM so in-flight
	// requests finish and the worker pool drains.
	go func() {
		log.Infof("Starting UniScript API on %s", cfg.Port)
		if err := app.Listen(cfg.Port); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
	dispatcher.Stop()
}
