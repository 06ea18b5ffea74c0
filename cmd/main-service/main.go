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

	"ms-events/internal/categories"
	"ms-events/internal/categories/category_api"
	category_db "ms-events/internal/categories/db"
	"ms-events/internal/comments"
	"ms-events/internal/comments/comment_api"
	comment_db "ms-events/internal/comments/db"
	"ms-events/internal/compilations"
	"ms-events/internal/compilations/compilation_api"
	compilation_db "ms-events/internal/compilations/db"
	"ms-events/internal/config"
	"ms-events/internal/database/migrations"
	"ms-events/internal/events"
	event_db "ms-events/internal/events/db"
	"ms-events/internal/events/event_api"
	"ms-events/internal/kafka"
	"ms-events/internal/logger"
	"ms-events/internal/middleware"
	"ms-events/internal/models"
	"ms-events/internal/requests"
	request_db "ms-events/internal/requests/db"
	"ms-events/internal/requests/request_api"
	"ms-events/internal/stats/client"
	"ms-events/internal/users"
	user_db "ms-events/internal/users/db"
	"ms-events/internal/users/user_api"
)

func connectPostgres(cfg config.DatabaseConfig, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err == nil {
			err = sqldb.Ping()
		}
		if err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if !cfg.Enabled {
		log.Info("REDIS", "Redis disabled, view cache will be skipped")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis connection error, running without view cache: %v", err))
		return nil
	}
	log.Info("REDIS", fmt.Sprintf("Redis connection successful to %s", cfg.Addr))
	return rdb
}

func main() {
	log := logger.NewLogger("main-service")
	defer log.Close()

	log.Info("APP", "Starting main service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	ctx := context.Background()

	bunDB := connectPostgres(cfg.Database, log)
	defer bunDB.Close()
	bunDB.RegisterModel((*models.CompilationEvent)(nil))

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, cfg.Database.MigrationsDir)
		if err := runner.MigrateUp(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
		}
		log.Info("DATABASE", "Migrations applied")
	}

	redisClient := connectRedis(ctx, cfg.Redis, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics)
		topics := []string{
			cfg.Kafka.Topics.EventPublished,
			cfg.Kafka.Topics.EventCanceled,
			cfg.Kafka.Topics.RequestStatus,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Notification topics ensured")
		}
		defer producer.Close()
	} else {
		log.Info("KAFKA", "Kafka disabled, notifications will be dropped")
	}

	var viewCache *client.Cache
	if redisClient != nil {
		viewCache = &client.Cache{Client: redisClient, TTL: cfg.Stats.CacheTTL}
	}
	statsClient := client.New(
		cfg.Stats.BaseURL,
		cfg.Stats.AppName,
		&http.Client{Timeout: cfg.Stats.Timeout},
		viewCache,
		log,
	)

	userService := users.NewUserService(&user_db.DB{Bun: bunDB})
	categoryService := categories.NewCategoryService(&category_db.DB{Bun: bunDB})
	eventService := events.NewEventService(&event_db.DB{Bun: bunDB}, statsClient, producer, log)
	requestService := requests.NewRequestService(&request_db.DB{Bun: bunDB}, producer, log)
	commentService := comments.NewCommentService(&comment_db.DB{Bun: bunDB}, log)
	compilationService := compilations.NewCompilationService(&compilation_db.DB{Bun: bunDB}, statsClient, log)

	userHandler := &user_api.Handler{UserService: userService, Logger: log}
	categoryHandler := &category_api.Handler{CategoryService: categoryService, Logger: log}
	eventHandler := &event_api.Handler{EventService: eventService, Logger: log}
	requestHandler := &request_api.Handler{RequestService: requestService, Logger: log}
	commentHandler := &comment_api.Handler{CommentService: commentService, Logger: log}
	compilationHandler := &compilation_api.Handler{CompilationService: compilationService, Logger: log}

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	// --- Admin routes ---
	r.Route("/admin", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.ListUsers)
			r.Post("/", userHandler.CreateUser)
			r.Delete("/{userId}", userHandler.DeleteUser)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", categoryHandler.CreateCategory)
			r.Patch("/{catId}", categoryHandler.RenameCategory)
			r.Delete("/{catId}", categoryHandler.DeleteCategory)
		})
		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.AdminSearchEvents)
			r.Patch("/{eventId}", eventHandler.AdminUpdateEvent)
		})
		r.Route("/compilations", func(r chi.Router) {
			r.Post("/", compilationHandler.CreateCompilation)
			r.Patch("/{compId}", compilationHandler.UpdateCompilation)
			r.Delete("/{compId}", compilationHandler.DeleteCompilation)
		})
	})

	// --- Private routes ---
	r.Route("/users/{userId}", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.GetOwnEvents)
			r.Post("/", eventHandler.CreateEvent)
			r.Get("/{eventId}", eventHandler.GetOwnEvent)
			r.Patch("/{eventId}", eventHandler.UpdateOwnEvent)
			r.Get("/{eventId}/requests", eventHandler.GetEventRequests)
			r.Patch("/{eventId}/requests", eventHandler.UpdateEventRequests)
		})
		r.Route("/requests", func(r chi.Router) {
			r.Get("/", requestHandler.GetOwnRequests)
			r.Post("/", requestHandler.CreateRequest)
			r.Patch("/{requestId}/cancel", requestHandler.CancelRequest)
		})
		r.Route("/comments", func(r chi.Router) {
			r.Post("/", commentHandler.CreateComment)
			r.Patch("/{commentId}", commentHandler.UpdateComment)
			r.Delete("/{commentId}", commentHandler.DeleteComment)
			r.Put("/{commentId}/like", commentHandler.LikeComment)
			r.Delete("/{commentId}/like", commentHandler.UnlikeComment)
		})
	})

	// --- Public routes ---
	r.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.SearchEvents)
		r.Get("/{id}", eventHandler.GetPublicEvent)
	})
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", categoryHandler.ListCategories)
		r.Get("/{catId}", categoryHandler.GetCategory)
	})
	r.Route("/compilations", func(r chi.Router) {
		r.Get("/", compilationHandler.ListCompilations)
		r.Get("/{compId}", compilationHandler.GetCompilation)
	})
	r.Get("/comments/{eventId}", commentHandler.ListComments)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Main service running on %s", cfg.Server.Port))
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
		log.Info("HTTP", "Server shut down gracefully")
	}
}
