package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/quiz-club/backend/internal/auth"
	"github.com/quiz-club/backend/internal/catalog"
	"github.com/quiz-club/backend/internal/config"
	"github.com/quiz-club/backend/internal/database"
	"github.com/quiz-club/backend/internal/generator"
	"github.com/quiz-club/backend/internal/middleware"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	admin, err := auth.NewAdmin(auth.Options{
		Secret:       cfg.Admin.Secret,
		PasswordHash: cfg.Admin.PasswordHash,
		SigningKey:   []byte(cfg.Admin.JWTKey),
		TTL:          cfg.Admin.TokenTTL,
	})
	if err != nil {
		log.Fatalf("Failed to set up admin auth: %v", err)
	}

	// Generation stays off unless a model source is configured.
	var drafter catalog.Drafter
	if cfg.Generator.Mock || cfg.Generator.APIKey != "" || cfg.Generator.CLIPath != "" {
		drafter = generator.NewGenerator(generator.Options{
			Mock:    cfg.Generator.Mock,
			APIKey:  cfg.Generator.APIKey,
			Model:   cfg.Generator.Model,
			CLIPath: cfg.Generator.CLIPath,
			Verify:  cfg.Generator.Verify,
		})
	} else {
		log.Println("[generator] no API key, CLI path or mock configured; generation disabled")
	}

	// Initialize handlers
	catalogHandler := catalog.NewHandler(catalog.NewService(catalog.NewStore(db), drafter))
	authHandler := auth.NewHandler(admin)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.Logging)
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/admin/auth", authHandler.Login).Methods("POST")
	catalogHandler.Register(api, admin.Middleware)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"db unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Admin-Secret", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
