package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/mzawadzki/camp-reservation/internal/catalog"    // Catalog read model with fallback policy
	"github.com/mzawadzki/camp-reservation/internal/config"     // Internal config loader
	"github.com/mzawadzki/camp-reservation/internal/database"   // MySQL connector
	"github.com/mzawadzki/camp-reservation/internal/draft"      // Booking wizard and draft store
	"github.com/mzawadzki/camp-reservation/internal/handler"    // HTTP handlers
	"github.com/mzawadzki/camp-reservation/internal/middleware" // Rate limiting and response caching
	"github.com/mzawadzki/camp-reservation/internal/queue"      // Reservation event consumer
	"github.com/mzawadzki/camp-reservation/internal/repository" // Data access layer
	"github.com/mzawadzki/camp-reservation/internal/router"     // Route registration
	queue_publisher "github.com/mzawadzki/camp-reservation/internal/service"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the draft store, the rate limiter and the response cache.
	// A nil client degrades all three: drafts fall back to process memory,
	// limiting and caching are disabled.
	rdb := config.NewRedisClient()
	var drafts draft.Store
	if rdb != nil {
		drafts = draft.NewRedisStore(rdb, cfg.DraftTTL)
	} else {
		log.Println("redis unavailable; drafts held in process memory")
		drafts = draft.NewMemoryStore()
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	camps := repository.NewCampRepo(db)
	props := repository.NewPropertyRepo(db)
	entries := repository.NewCatalogRepo(db)
	reservations := repository.NewReservationRepo(db)
	documents := repository.NewDocumentRepo(db)

	// Read model and wizard.
	cat := catalog.NewService(props, entries)
	wizard := draft.NewWizard(drafts, cat, cat, reservations)
	wizard.OnConfirmed(queue.ConfirmationHook(queue_publisher.PublishReservationConfirmed))

	// Handlers.
	auth := handler.NewAuthHandler(cfg, users, tokens)
	catalogH := handler.NewCatalogHandler(camps, props, cat)
	wizardH := handler.NewWizardHandler(wizard)
	reservationH := handler.NewReservationHandler(reservations, cat)
	documentH := handler.NewDocumentHandler(documents, reservations, cfg.DownloadTTL)

	// Background consumer writing confirmation logs.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterPublic(e, catalogH, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterWizard(e, wizardH, cfg.JWTSecret, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterReservations(e, reservationH, documentH, cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
