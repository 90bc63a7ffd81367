package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskify/taskify-api/internal/api"
	"github.com/taskify/taskify-api/internal/api/handler"
	"github.com/taskify/taskify-api/internal/core/ports"
	"github.com/taskify/taskify-api/internal/core/security"
	"github.com/taskify/taskify-api/internal/core/service"
	mongodb "github.com/taskify/taskify-api/internal/infrastructure/db/mongo"
	redisdb "github.com/taskify/taskify-api/internal/infrastructure/db/redis"
	"github.com/taskify/taskify-api/internal/infrastructure/db/sqlstore"
	"github.com/taskify/taskify-api/internal/infrastructure/queue"
	"github.com/taskify/taskify-api/internal/pkg/config"
	"github.com/taskify/taskify-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Service: "taskify-api"})
		l.Fatal().Err(err).Msg("load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "taskify-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

type stores struct {
	users     ports.UserRepository
	tasks     ports.TaskRepository
	readiness map[string]handler.Pinger
	close     func(ctx context.Context) error
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}()

	var throttle ports.LoginThrottle
	if cfg.Throttle.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		throttle = redisdb.NewLoginThrottle(rdb, cfg.Throttle.MaxAttempts, cfg.Throttle.Window)
		st.readiness["redis"] = redisdb.Pinger(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected, login throttle enabled")
	}

	codec, err := security.NewTokenCodec(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		return err
	}

	pool := queue.NewHashPool(cfg.HashWorkers, security.NewBcryptHasher(), log)
	pool.Start(ctx)

	authService := service.NewAuthService(st.users, pool, codec, cfg.JWT.TTL, log)
	e := api.NewRouter(api.Deps{
		Auth:      authService,
		Users:     service.NewUserService(st.users),
		Tasks:     service.NewTaskService(st.tasks, log),
		Throttle:  throttle,
		Readiness: st.readiness,
		Log:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("store", cfg.StoreDriver).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := sqlstore.Open(ctx, cfg.SQLite.DSN)
		if err != nil {
			return nil, err
		}
		log.Info().Str("dsn", cfg.SQLite.DSN).Msg("sqlite store opened")
		return &stores{
			users:     sqlstore.NewUserRepository(db),
			tasks:     sqlstore.NewTaskRepository(db),
			readiness: map[string]handler.Pinger{"sqlite": sqlstore.Pinger(db)},
			close:     func(context.Context) error { return db.Close() },
		}, nil

	default:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")
		return &stores{
			users:     mongodb.NewUserRepository(db),
			tasks:     mongodb.NewTaskRepository(db),
			readiness: map[string]handler.Pinger{"mongodb": mongodb.Pinger(db)},
			close:     client.Disconnect,
		}, nil
	}
}
