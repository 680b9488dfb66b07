package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdf-insight/cmd"
	"pdf-insight/internal/answering"
	"pdf-insight/internal/api"
	"pdf-insight/internal/chat"
	"pdf-insight/internal/config"
	"pdf-insight/internal/database"
	"pdf-insight/internal/document_parsing"
	"pdf-insight/internal/inbox"
	"pdf-insight/internal/ingest"
	"pdf-insight/internal/messaging"
	"pdf-insight/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func createServer(cfg config.Config, service *api.BackendService) *http.Server {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Route("/api/v1", func(r chi.Router) {
		service.AddRoutes(r)
	})

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}
}

func main() {
	log.Println("Starting API Server...")

	cmd.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	closeLog, err := cmd.SetupLogging(cfg.LogFile)
	if err != nil {
		log.Fatalf("error setting up logging: %v", err)
	}
	defer closeLog()

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	ledger := database.NewLedger(db)

	client, err := cmd.NewAnsweringClient(cfg, ledger)
	if err != nil {
		log.Fatalf("Failed to create answering client: %v", err)
	}

	prompts, err := answering.LoadPrompts()
	if err != nil {
		log.Fatalf("Failed to load prompts: %v", err)
	}

	ingestor := ingest.NewIngestor(document_parsing.PDFToMD,
		ingest.WithWorkers(cfg.IngestWorkers),
		ingest.WithMaxBytes(cfg.MaxUploadBytes),
	)

	st := store.New()

	queue := messaging.NewInMemoryQueue(cfg.ChatQueueCapacity)

	chatService := chat.NewService(st, client,
		chat.WithQueue(queue, queue),
		chat.WithWorkers(cfg.ChatWorkers),
		chat.WithAnswerTimeout(cfg.AnswerTimeout),
	)
	chatService.Start()

	ctx, stopInbox := context.WithCancel(context.Background())
	defer stopInbox()

	if cfg.InboxDir != "" {
		watcher, err := inbox.NewWatcher(cfg.InboxDir, ingestor, st, 0)
		if err != nil {
			log.Fatalf("Failed to watch inbox: %v", err)
		}
		go watcher.Run(ctx)
	}

	server := createServer(cfg, api.NewBackendService(ingestor, chatService, prompts, ledger))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down server")

		stopInbox()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	slog.Info("server started", "port", cfg.Port, "provider", cfg.LLMProvider)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %d: %v\n", cfg.Port, err)
	}

	slog.Info("waiting for queued questions")
	chatService.Stop()

	slog.Info("server stopped")
}
