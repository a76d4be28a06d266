package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"strings"
	"time"

	"travelplanner/config"
	"travelplanner/database"
	"travelplanner/handlers"
	"travelplanner/middleware"
	"travelplanner/planner"
	"travelplanner/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default: $TRAVEL_CONFIG or config.yaml)")
	flag.Parse()

	// Load .env file (ignored in production where env vars are set directly)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid config: %v", err)
	}

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(cfg.Telemetry.ServiceName, cfg.Keys.Secrets()...)
		if err != nil {
			log.Fatalf("❌ Failed to initialize tracing: %v", err)
		}
		defer shutdown(ctx)
	}

	// Initialize storage
	var store database.Store
	if cfg.Database.UsePostgres() {
		pg, err := database.OpenPostgres(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("❌ Failed to initialize database: %v", err)
		}
		store = pg
	} else {
		log.Println("💾 No database configured, plans are kept in memory")
		store = database.NewMemoryStore()
	}
	defer store.Close()

	p := planner.NewFromConfig(cfg)

	if cfg.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())

	// Trusted proxies (deployments sit behind a proxy)
	r.SetTrustedProxies([]string{"0.0.0.0/0"})

	// CORS: allow configured frontend origins
	allowedOrigins := []string{"http://localhost:5173", "http://localhost:3000"}
	for _, u := range strings.Split(cfg.Server.FrontendURLs, ",") {
		u = strings.TrimSpace(u)
		if u != "" {
			allowedOrigins = append(allowedOrigins, u)
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	handlers.New(p, store, cfg.PDF.FontPath).Register(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           otelhttp.NewHandler(r, "travelplanner"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("🚀 Travel Planner backend starting on port %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
