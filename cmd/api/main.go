package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/solenne/studio-booking/internal/http/handlers"
	mw "github.com/solenne/studio-booking/internal/http/middleware"
	platformauth "github.com/solenne/studio-booking/internal/platform/auth"
	"github.com/solenne/studio-booking/internal/repo/postgres"
	"github.com/solenne/studio-booking/internal/service"
	"github.com/solenne/studio-booking/pkg/config"
	"github.com/solenne/studio-booking/pkg/database"
	"github.com/solenne/studio-booking/pkg/events"
	"github.com/solenne/studio-booking/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Repositories
	rulesRepo := postgres.NewRulesRepo(pool)
	catalogRepo := postgres.NewCatalogRepo(pool)
	usersRepo := postgres.NewUsersRepo(pool)
	tokensRepo := postgres.NewTokensRepo(pool)

	// Services
	tokenMgr := platformauth.NewTokenManager(
		cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.AccessTokenTTL,
	)
	throttle := service.NewRedisThrottle(redisClient, cfg.Login.AttemptWindow)
	rulesService := service.NewRulesService(rulesRepo, eventBus)
	catalogService := service.NewCatalogService(catalogRepo, eventBus)
	authService := service.NewAuthService(usersRepo, tokensRepo, tokenMgr, throttle, eventBus, cfg)

	h := handlers.New(rulesService, catalogService, authService, cfg)
	authn := mw.NewAuthenticator(tokenMgr, cfg.Cookies.AccessName)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mw.CSRFHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(authn.RequireAuth)
			r.Get("/me", h.Me)
		})
	})

	r.Route("/booking-rules", func(r chi.Router) {
		r.Get("/", h.GetRules)

		r.Group(func(r chi.Router) {
			r.Use(authn.RequireAuth)
			r.Use(authn.RequireRole("admin"))
			r.Use(mw.CSRF(cfg.Cookies.CSRFName))

			r.Patch("/", h.UpdateRules)
			r.Post("/blocked-periods", h.CreateBlockedPeriod)
			r.Patch("/blocked-periods/{id}", h.UpdateBlockedPeriod)
			r.Delete("/blocked-periods/{id}", h.DeleteBlockedPeriod)
		})
	})

	r.Route("/services", func(r chi.Router) {
		r.Get("/", h.ListServices)
		r.Get("/{id}", h.GetService)

		r.Group(func(r chi.Router) {
			r.Use(authn.RequireAuth)
			r.Use(authn.RequireRole("admin"))
			r.Use(mw.CSRF(cfg.Cookies.CSRFName))

			r.Post("/", h.CreateService)
			r.Patch("/{id}", h.UpdateService)
			r.Delete("/{id}", h.DeleteService)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down booking API...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting booking API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
