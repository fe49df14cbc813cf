package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookclubhq/bookclub-backend/internal/auth"
	"github.com/bookclubhq/bookclub-backend/internal/config"
	"github.com/bookclubhq/bookclub-backend/internal/database"
	"github.com/bookclubhq/bookclub-backend/internal/handlers"
	appmiddleware "github.com/bookclubhq/bookclub-backend/internal/middleware"
	"github.com/bookclubhq/bookclub-backend/internal/routes"
	"github.com/bookclubhq/bookclub-backend/internal/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	}

	cfg := config.Load()

	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer database.Disconnect()

	if err := services.EnsureIndexes(context.Background()); err != nil {
		log.Printf("⚠️  Failed to create indexes: %v", err)
	}

	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Printf("⚠️  Redis unavailable, caching and realtime chat disabled: %v", err)
	} else {
		defer database.DisconnectRedis()
	}

	tokens, err := auth.NewManager(cfg.JWTSecret, cfg.RefreshSecret(), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		log.Fatalf("❌ Token manager: %v", err)
	}
	handlers.InitTokenManager(tokens)

	if cfg.CloudinaryName != "" {
		if err := handlers.InitBlobStore(cfg); err != nil {
			log.Printf("⚠️  Cloudinary init failed, image uploads disabled: %v", err)
		} else {
			log.Println("✅ Cloudinary configured")
		}
	} else {
		log.Println("⚠️  Cloudinary not configured, image uploads disabled")
	}

	guard := appmiddleware.NewGuard(tokens, appmiddleware.MongoPrincipalLookup, cfg.RefreshThreshold)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	r.Use(appmiddleware.CORS(cfg.AllowedOrigins))
	if cfg.IsProduction() {
		for _, mw := range appmiddleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("🔒 Production security middleware enabled")
	}

	routes.SetupRoutes(r, guard, tokens)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // WebSocket connections stay open; per-request deadlines come from the router
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Forced shutdown: %v", err)
	}
	log.Println("👋 Server stopped")
}
