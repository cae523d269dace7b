package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/roamio/tours-api/internal/http/handlers"
	"github.com/roamio/tours-api/internal/http/middleware"
	"github.com/roamio/tours-api/internal/http/response"
	"github.com/roamio/tours-api/internal/platform/auth"
	"github.com/roamio/tours-api/internal/platform/cache"
	"github.com/roamio/tours-api/internal/platform/mailer"
	"github.com/roamio/tours-api/internal/repo/postgres"
	"github.com/roamio/tours-api/pkg/config"
	"github.com/roamio/tours-api/pkg/database"
	"github.com/roamio/tours-api/pkg/events"
	"github.com/roamio/tours-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	response.DevMode = !cfg.IsProduction()

	// Connect to database
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to event bus; the API stays up without it
	var bus events.EventBus
	natsBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Warn("NATS unavailable, events disabled", "error", err)
		bus = events.NopBus{}
	} else {
		bus = natsBus
		defer bus.Close()
	}
	subscribeNotifications(bus)

	redis := cache.New(cfg.Redis)
	defer redis.Close()

	// Initialize repositories
	users := postgres.NewUsersRepo(pool)
	tours := postgres.NewToursRepo(pool)
	reviews := postgres.NewReviewsRepo(pool)

	// Initialize platform services
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	mail := mailer.FromConfig(cfg.Email)
	authmw := middleware.NewAuth(tokens, users)

	// Initialize handlers
	ah := handlers.NewAuthHandler(users, tokens, mail, bus, cfg)
	uh := handlers.NewUserHandler(users)
	th := handlers.NewTourHandler(tours, redis)
	rh := handlers.NewReviewHandler(reviews, bus)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Mount("/user", handlers.UserRoutes(ah, uh, authmw, users))
	r.Mount("/tour", handlers.TourRoutes(th, rh, authmw, tours))
	r.Mount("/review", handlers.ReviewRoutes(authmw, reviews))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusNotFound, response.Envelope{
			Status:  "fail",
			Message: "Can't find " + r.URL.Path + " on this server!",
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("API shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API", "port", cfg.Server.Port, "env", cfg.Env)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("API server error", "error", err)
		os.Exit(1)
	}
}

// subscribeNotifications drains domain events into the log. A real
// notification worker would hang off these same subjects.
func subscribeNotifications(bus events.Subscriber) {
	handle := func(msg *events.Message) {
		logger.Info("event received", "subject", msg.Subject, "id", msg.ID, "data", string(msg.Data))
	}
	if err := bus.QueueSubscribe("users.>", "notifications", handle); err != nil {
		logger.Warn("Failed to subscribe to user events", "error", err)
	}
	if err := bus.QueueSubscribe("reviews.>", "notifications", handle); err != nil {
		logger.Warn("Failed to subscribe to review events", "error", err)
	}
}
