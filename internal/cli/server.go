package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizbank-service/internal/app"
	"quizbank-service/internal/auth"
	"quizbank-service/internal/config"
	"quizbank-service/internal/infra/memory"
	"quizbank-service/internal/infra/postgres"
	redisinfra "quizbank-service/internal/infra/redis"
	"quizbank-service/internal/logging"
	transport "quizbank-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz bank API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

type repositories interface {
	app.UserRepository
	app.QuestionRepository
	app.AnswerRepository
}

// storage is the persistence wiring shared by the subcommands.
type storage struct {
	store repositories
	pool  *pgxpool.Pool
	redis *redis.Client
}

func (s *storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	slog.SetDefault(logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format))
	return cfg, nil
}

// openStorage connects to Postgres and Redis when configured and falls back to memory otherwise.
func openStorage(ctx context.Context, cfg config.Config) (*storage, error) {
	deps := &storage{}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		deps.pool = pool
		deps.store = postgres.NewStore(pool)
	} else {
		slog.Warn("postgres url not configured, using in-memory storage")
		deps.store = memory.NewStore()
	}

	if cfg.Redis.Addr != "" {
		deps.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return deps, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	deps, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	var catalog app.QuestionCatalog
	var revocations app.RevocationList
	if deps.redis != nil {
		catalog = redisinfra.NewQuestionCatalog(deps.redis, deps.store, cfg.QuestionCacheTTL())
		revocations = redisinfra.NewRevocationList(deps.redis)
	} else {
		catalog = memory.NewQuestionCatalog(deps.store, cfg.QuestionCacheTTL())
		local := memory.NewRevocationList()
		stopPurger, err := local.StartPurger("@every 10m")
		if err != nil {
			return err
		}
		defer stopPurger()
		revocations = local
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.TokenTTL())
	users := app.NewUserService(deps.store, auth.NewPasswordHasher(cfg.Auth.BcryptCost), tokens, revocations, cfg.Owner.Username)
	if _, err := users.SeedOwner(ctx, cfg.Owner.Password); err != nil {
		return fmt.Errorf("seed owner: %w", err)
	}

	api := transport.NewServer(transport.Services{
		Users:      users,
		Questions:  app.NewQuestionService(deps.store, catalog),
		Answers:    app.NewAnswerService(deps.store),
		Statistics: app.NewStatisticsService(deps.store, deps.store, cfg.Statistics.Parallelism),
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      api.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		slog.Info("starting quiz bank", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		slog.Info("shutting down server...")
	case <-ctx.Done():
		slog.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
