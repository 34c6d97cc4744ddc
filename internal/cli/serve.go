package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trivia-quiz-client/internal/app"
	"trivia-quiz-client/internal/config"
	"trivia-quiz-client/internal/infra/memory"
	redisinfra "trivia-quiz-client/internal/infra/redis"
	transport "trivia-quiz-client/internal/transport/http"
)

// newServeCmd builds the subcommand that hosts quizzes over websockets.
func newServeCmd(opts *rootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve trivia quizzes over websockets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}
			return runServer(cmd.Context(), cfg, log)
		},
	}
	cmd.Flags().StringVar(&port, "port", os.Getenv("PORT"), "port to listen on (overrides config)")
	return cmd
}

func runServer(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	finalPort := cfg.Server.Port
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)
	categoriesTTL := config.TTLDuration(cfg.Categories.TTL, time.Hour)
	sessionTTL := config.TTLDuration(cfg.Server.SessionTTL, 30*time.Minute)

	service := newQuizService(cfg, log)

	var categories app.CategoryRepository
	var store sweepingSessionRepository
	if redisClient != nil {
		categories = redisinfra.NewCategoryRepository(redisClient, service, categoriesTTL)
		store = redisinfra.NewSessionStore(redisClient, redisTTL, sessionTTL)
	} else {
		categories = memory.NewCategoryRepository(service, categoriesTTL)
		store = memory.NewSessionStore(sessionTTL)
	}
	wsHandler := transport.NewWSHandler(service, store, categories, cfg.Settings(), log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Bool("redis", redisClient != nil).Msg("starting trivia server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepSessions(sweepCtx, store, sessionTTL, log)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

type sweepingSessionRepository interface {
	app.SessionRepository
	Sweep() int
}

// sweepSessions evicts idle detached sessions even when no new connections arrive.
func sweepSessions(ctx context.Context, store sweepingSessionRepository, ttl time.Duration, log zerolog.Logger) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				log.Debug().Int("evicted", n).Msg("swept idle sessions")
			}
		}
	}
}
