package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"eshop-backend/internal/config"
	"eshop-backend/internal/filestore"
	"eshop-backend/internal/handlers"
	"eshop-backend/internal/logging"
	"eshop-backend/internal/media"
	"eshop-backend/internal/mykafka"
	"eshop-backend/internal/order"
	"eshop-backend/internal/service/token"
	"eshop-backend/internal/store"
	httpserver "eshop-backend/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod, err = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
		if err != nil {
			log.Fatal(err)
		}
	}

	files, uploadDir, err := newFileStore(configuration)
	if err != nil {
		log.Fatal(err)
	}

	records := store.NewGorm(db)
	pipeline := order.NewPipeline(records, records, records, logger)
	synchronizer := media.NewSynchronizer(records, files, logger)
	tokenService := &token.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}

	var publisher handlers.Publisher
	if prod != nil {
		publisher = prod
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		DB:              db,
		AuthHandler:     &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: publisher},
		CategoryHandler: &handlers.CategoryHandler{DB: db},
		ProductHandler:  &handlers.ProductHandler{DB: db, Sync: synchronizer, Files: files, Producer: publisher},
		OrderHandler:    &handlers.OrderHandler{Pipeline: pipeline, Orders: records, Producer: publisher},
		TokenService:    tokenService,
		UploadDir:       uploadDir,
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}

// newFileStore picks the file store backend: a GCS bucket when configured,
// the local disk otherwise. In disk mode the returned dir is served as a
// static route.
func newFileStore(cfg *config.Config) (filestore.Store, string, error) {
	if cfg.GCS_BUCKET != "" {
		client, err := storage.NewClient(context.Background())
		if err != nil {
			return nil, "", err
		}
		return filestore.NewGCS(client, cfg.GCS_BUCKET), "", nil
	}

	baseURL := cfg.PUBLIC_URL
	if baseURL == "" {
		baseURL = "http://localhost:8080/public"
	}
	disk, err := filestore.NewDisk(cfg.UPLOAD_DIR, baseURL)
	if err != nil {
		return nil, "", err
	}
	return disk, cfg.UPLOAD_DIR, nil
}
