package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"game-catalog-sync/config"
	"game-catalog-sync/handlers"
	"game-catalog-sync/middleware"
	"game-catalog-sync/services"
	"game-catalog-sync/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	session := services.NewSession(cfg.SessionToken, cfg.SessionUserID)
	remote := services.NewRemoteClient(cfg.RemoteBaseURL, session, cfg.RemoteTimeout)

	collectionService := services.NewCollectionService(remote)
	reviewService := services.NewReviewService(remote)
	catalogService, err := services.NewCatalogService(remote, cfg.DetailsCacheSize, cfg.DetailsCacheTTL)
	if err != nil {
		log.Fatal("failed to create catalog service:", err)
	}

	collectionService.Subscribe(func(st services.CollectionState) {
		if st.Error != "" {
			log.Printf("[COLLECTION] ⚠️ v%d error: %s", st.Version, st.Error)
		}
	})

	app := fiber.New()

	app.Use(middleware.LocalAPIAuth(cfg.LocalAPIToken))

	origins := make([]string, 0, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	allowedOriginsString := strings.Join(origins, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	handlers.SetupCollectionRoutes(app, collectionService, session)
	handlers.SetupReviewRoutes(app, reviewService, session)
	handlers.SetupGameRoutes(app, catalogService)
	handlers.SetupSessionRoutes(app, session, reviewService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if session.Identified() {
		go collectionService.FetchCollection(ctx)
	}

	refresher := workers.NewCollectionRefreshWorker(collectionService, session, cfg.CollectionRefreshInterval)
	if err := refresher.Start(ctx); err != nil {
		log.Fatal("failed to start collection refresh:", err)
	}

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on %s", cfg.ListenAddr)
	log.Printf("✅ Remote catalog API: %s", cfg.RemoteBaseURL)
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
