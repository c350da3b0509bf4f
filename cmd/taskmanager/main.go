package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/taskmanager/internal/application/ports"
	"github.com/amirhosseinghanipour/taskmanager/internal/application/task"
	"github.com/amirhosseinghanipour/taskmanager/internal/application/user"
	"github.com/amirhosseinghanipour/taskmanager/internal/config"
	httprouter "github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/http"
	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/http/handlers"
	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/http/middleware"
	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/notify"
	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/persistence/db"
	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/persistence/memory"
	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/persistence/migrations"
	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/persistence/postgres"
	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/queue"
	"github.com/amirhosseinghanipour/taskmanager/internal/infrastructure/webhook"
)

func newLogger(cfg config.LogConfig) zerolog.Logger {
	var out io.Writer = os.Stderr
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	log = newLogger(cfg.Log)

	ctx := context.Background()

	var (
		userRepo  ports.UserRepository
		taskRepo  ports.TaskRepository
		storePing handlers.Pinger
	)
	switch cfg.Store.Backend {
	case config.StoreMemory:
		store := memory.NewStore()
		userRepo, taskRepo, storePing = store.Users(), store.Tasks(), store
		log.Warn().Msg("using in-memory store; data is lost on restart")
	default:
		pool, err := pgxpool.New(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to database")
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("ping database")
		}
		if cfg.Store.AutoMigrate {
			if err := migrations.Up(ctx, pool, log); err != nil {
				log.Fatal().Err(err).Msg("run migrations")
			}
		}
		queries := db.New(pool)
		userRepo = postgres.NewUserRepository(queries, pool)
		taskRepo = postgres.NewTaskRepository(queries, pool)
		storePing = pool
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	healthHandler := handlers.NewHealthHandler(storePing, cfg.Store.Backend, redisClient, log)

	var emitter ports.WebhookEmitter = webhook.NewNoopEmitter(log)
	if cfg.Webhook.URL != "" {
		emitter = webhook.NewHTTPEmitter(cfg.Webhook.URL, webhook.WithSecret(cfg.Webhook.Secret))
	}
	mailer := notify.NewEmailNotifier(cfg.SMTP, log)

	var notifier ports.NotificationEnqueuer
	var asynqWorker *queue.Worker
	if redisClient != nil {
		redisOpt := redisClient.Options()
		asynqOpt := asynq.RedisClientOpt{Addr: redisOpt.Addr, Password: redisOpt.Password, DB: redisOpt.DB}
		asynqEnq := queue.NewAsynqEnqueuer(asynqOpt, log)
		defer asynqEnq.Close()
		notifier = asynqEnq
		asynqWorker = queue.NewWorker(asynqOpt, mailer, emitter, log)
		go func() {
			if err := asynqWorker.Run(); err != nil {
				log.Warn().Err(err).Msg("asynq worker stopped")
			}
		}()
	} else {
		notifier = queue.NewNoopEnqueuer()
	}

	userManager := user.NewManager(userRepo)
	taskManager := task.NewManager(taskRepo, userManager, notifier)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP, redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	secureMiddleware := middleware.NewSecure(middleware.SecureOptions(cfg.Secure.IsDevelopment))

	router := httprouter.NewRouter(httprouter.RouterConfig{
		TasksHandler:  handlers.NewTasksHandler(taskManager, log),
		UsersHandler:  handlers.NewUsersHandler(userManager, log),
		HealthHandler: healthHandler,
		APIKey:        cfg.Auth.APIKey,
		Log:           log,
		Secure:        secureMiddleware,
		CORS:          middleware.CORS(cfg.CORS.AllowedOrigins),
		IPRateLimit:   ipLimit,
		Metrics:       true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("store", cfg.Store.Backend).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if asynqWorker != nil {
		asynqWorker.Shutdown()
	}
	log.Info().Msg("server stopped")
}
