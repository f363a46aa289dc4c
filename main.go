package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-booking/internal/auth"
	auth_api "ms-booking/internal/auth/api"
	"ms-booking/internal/bookings"
	bookings_api "ms-booking/internal/bookings/api"
	bookings_db "ms-booking/internal/bookings/db"
	"ms-booking/internal/bookings/qr"
	rediswrap "ms-booking/internal/bookings/redis"
	"ms-booking/internal/config"
	"ms-booking/internal/database/migrations"
	"ms-booking/internal/events"
	events_api "ms-booking/internal/events/api"
	events_db "ms-booking/internal/events/db"
	"ms-booking/internal/kafka"
	"ms-booking/internal/locations"
	"ms-booking/internal/logger"
	"ms-booking/internal/models"
)

func verifyConnections(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err == nil {
			err = sqldb.Ping()
			if err == nil {
				break
			}
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	log.Info("DATABASE", "PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Booking Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("CONFIG", "JWT_SECRET not set")
	}

	ctx := context.Background()
	bunDB, redisClient := verifyConnections(ctx, cfg, log)
	defer bunDB.Close()
	defer redisClient.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
		if err := runner.RunMigrations(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		log.Info("DATABASE", "Migrations applied")
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, kafka.AllTopics()); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
		defer producer.Close()
	} else {
		log.Warn("KAFKA", "Kafka disabled, lifecycle events will not be published")
	}

	authDB := &auth.DB{Bun: bunDB}
	sessionCache := auth.NewSessionCache(redisClient)

	var authProducer auth.Publisher
	var bookingProducer bookings.Publisher
	if producer != nil {
		authProducer = producer
		bookingProducer = producer
	}

	authService := auth.NewService(authDB, sessionCache, authProducer, log, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	locationService := locations.NewService(&locations.DB{Bun: bunDB}, log)
	eventService := events.NewService(&events_db.DB{Bun: bunDB}, locationService, log)
	bookingService := bookings.NewService(
		&bookings_db.DB{Bun: bunDB},
		rediswrap.NewRedis(redisClient, log),
		authDB,
		bookingProducer,
		qr.NewQRGenerator(cfg.Auth.QRSecret),
		log,
	)

	authHandler := auth_api.NewHandler(authService, log)
	eventHandler := events_api.NewHandler(eventService, log)
	bookingHandler := bookings_api.NewHandler(bookingService, log)
	locationHandler := locations.NewHandler(locationService, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	// --- Public routes ---
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	r.Post("/auth/logout", authHandler.Logout)

	// --- Protected routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Auth.JWTSecret, authService, log))

		r.Route("/event", func(r chi.Router) {
			r.Get("/get", eventHandler.ListEvents)
			r.Get("/get/{id}", eventHandler.GetEvent)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleAdmin))
				r.Post("/create", eventHandler.CreateEvent)
				r.Put("/update/{id}", eventHandler.UpdateEvent)
				r.Delete("/delete/{id}", eventHandler.DeleteEvent)
			})
		})
		log.Info("ROUTER", "Event routes registered under /event")

		r.Route("/user", func(r chi.Router) {
			r.Post("/location", locationHandler.SetLocation)
			r.Get("/eventsforlocation", eventHandler.ListEventsForLocation)
			r.Post("/book/{id}", bookingHandler.BookEvent)
			r.Get("/bookings", bookingHandler.ListBookings)
			r.Put("/bookings/{id}", bookingHandler.UpdateBooking)
			r.Delete("/bookings/{id}", bookingHandler.CancelBooking)
		})
		log.Info("ROUTER", "User routes registered under /user")
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Booking Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Booking Service shutdown complete")
	}
}
