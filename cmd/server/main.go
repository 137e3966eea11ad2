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
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mediavault/backend/internal/config"
	"github.com/mediavault/backend/internal/gallery"
	"github.com/mediavault/backend/internal/handlers"
	"github.com/mediavault/backend/internal/middleware"
	"github.com/mediavault/backend/internal/storage"
	"github.com/mediavault/backend/internal/store"
	"github.com/mediavault/backend/pkg/logger"
	"github.com/mediavault/backend/pkg/utils"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.ExpirationHours)

	docs, err := store.NewDocumentStore(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("document store initialization failed: %v", err)
	}

	var blobs storage.BlobStore
	switch cfg.Storage.Backend {
	case config.StorageBackendMinIO:
		minioStore, err := storage.NewMinIOStore(cfg.MinIO)
		if err != nil {
			log.Fatalf("minio initialization failed: %v", err)
		}
		if err := minioStore.EnsureBucket(context.Background()); err != nil {
			log.Fatalf("failed ensuring minio bucket: %v", err)
		}
		blobs = minioStore
	case config.StorageBackendLocal:
		localStore, err := storage.NewLocalStore(cfg.Storage.UploadsDir)
		if err != nil {
			log.Fatalf("local storage initialization failed: %v", err)
		}
		blobs = localStore
	default:
		log.Fatalf("unknown storage backend: %s", cfg.Storage.Backend)
	}

	directory := store.NewUserDirectory(docs)
	documents := store.NewUserDocuments(docs)
	files := store.NewFileStore(docs)
	shares := store.NewShareStore(docs)

	service := gallery.NewService(directory, documents, files, shares, blobs, cfg.Gallery.PublicBaseURL)

	authHandler := handlers.NewAuthHandler(service)
	foldersHandler := handlers.NewFoldersHandler(service)
	filesHandler := handlers.NewFilesHandler(service)
	sharesHandler := handlers.NewSharesHandler(service)

	authMiddleware := middleware.NewAuthMiddleware(directory)

	app := fiber.New(fiber.Config{BodyLimit: cfg.Server.BodyLimitMB * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(cfg.Server.AllowOrigins))
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)
	authRoutes.Put("/me", authMiddleware.RequireAuth, authHandler.UpdateMe)
	authRoutes.Put("/settings", authMiddleware.RequireAuth, authHandler.UpdateSettings)

	api.Get("/data", authMiddleware.RequireAuth, foldersHandler.Data)

	folderRoutes := api.Group("/folders", authMiddleware.RequireAuth)
	folderRoutes.Post("/", foldersHandler.Create)
	folderRoutes.Get("/:id", foldersHandler.Get)
	folderRoutes.Delete("/:id", foldersHandler.Delete)

	fileRoutes := api.Group("/files", authMiddleware.RequireAuth)
	fileRoutes.Post("/upload", filesHandler.Upload)
	fileRoutes.Get("/search", filesHandler.Search)
	fileRoutes.Get("/:id/download", filesHandler.Download)
	fileRoutes.Get("/:id", filesHandler.Get)
	fileRoutes.Put("/:id", filesHandler.Update)
	fileRoutes.Delete("/:id", filesHandler.Delete)

	shareRoutes := api.Group("/shares", authMiddleware.RequireAuth)
	shareRoutes.Post("/", sharesHandler.Create)
	shareRoutes.Get("/", sharesHandler.List)
	shareRoutes.Delete("/:id", sharesHandler.Delete)

	api.Get("/public/shares/:id", sharesHandler.Resolve)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":            cfg.Server.Port,
		"address":         listenAddr,
		"storage_backend": cfg.Storage.Backend,
		"data_dir":        cfg.Storage.DataDir,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
