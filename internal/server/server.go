// Package server wires every component into a runnable API server. Both the
// standalone apiserver binary and the CLI serve command build on it.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mediclic/vademecum-ai/internal/application/assistant"
	"github.com/mediclic/vademecum-ai/internal/config"
	"github.com/mediclic/vademecum-ai/internal/domain/resolve"
	"github.com/mediclic/vademecum-ai/internal/domain/vocabulary"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/auth"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/database/redis"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/llm"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/messaging/kafka"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/logging"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/prometheus"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/search/opensearch"
	httpiface "github.com/mediclic/vademecum-ai/internal/interfaces/http"
	"github.com/mediclic/vademecum-ai/internal/interfaces/http/handlers"
)

// Version is stamped at build time.
var Version = "dev"

// Server is the assembled API server and its owned resources.
type Server struct {
	cfg      *config.Config
	logger   logging.Logger
	http     *http.Server
	events   *kafka.EventProducer
	store    *opensearch.Store
	vocab    *vocabulary.Cache
	sessions *redis.SessionStore
}

// New wires the full dependency graph from configuration.
func New(cfg *config.Config, logger logging.Logger) (*Server, error) {
	osClient, err := opensearch.NewClient(cfg.OpenSearch)
	if err != nil {
		return nil, err
	}
	store := opensearch.NewStore(osClient, cfg.OpenSearch, logger)

	redisClient := redis.NewClient(cfg.Redis)
	sessions := redis.NewSessionStore(redisClient, cfg.Redis.SessionTTL, logger)

	vocab := vocabulary.NewCache(store, logger)
	resolver := resolve.New(vocab, logger)

	var rewriter llm.Rewriter
	if rw, err := llm.NewOpenAIRewriter(cfg.LLM, logger); err != nil {
		logger.Warn("rewriter disabled", logging.Err(err))
	} else if rw != nil {
		rewriter = rw
	}

	events := kafka.NewEventProducer(cfg.Kafka, logger)
	metrics := prometheus.New()
	issuer := auth.NewTokenIssuer(cfg.Auth)

	svc := assistant.NewService(store, sessions, resolver, rewriter, events, metrics, cfg.Engine, logger)

	router := httpiface.NewRouter(httpiface.RouterDeps{
		Chat:   handlers.NewChatHandler(svc, logger),
		Auth:   handlers.NewAuthHandler(issuer, nil),
		Search: handlers.NewSearchHandler(store),
		Admin:  handlers.NewAdminHandler(store, vocab, logger),
		Health: handlers.NewHealthHandler(Version, map[string]handlers.Pinger{
			"redis": handlers.PingFunc(sessions.Ping),
			"opensearch": handlers.PingFunc(func(ctx context.Context) error {
				_, err := store.SearchByName(ctx, "ping", 1)
				return err
			}),
		}),
		Issuer:  issuer,
		Metrics: metrics,
		Logger:  logger,
		Mode:    ginMode(cfg.Server.Mode),
	})

	return &Server{
		cfg:    cfg,
		logger: logger.Named("server"),
		http: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		events:   events,
		store:    store,
		vocab:    vocab,
		sessions: sessions,
	}, nil
}

func ginMode(mode string) string {
	switch mode {
	case "debug", "release", "test":
		return mode
	default:
		return "release"
	}
}

// Run starts the server and blocks until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	if err := s.store.EnsureIndex(ctx); err != nil {
		// The index may appear later via ingestion; start degraded.
		s.logger.Warn("index check failed at startup", logging.Err(err))
	}
	if err := s.vocab.Ensure(ctx); err != nil {
		s.logger.Warn("vocabulary warmup failed, will retry on first query", logging.Err(err))
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", logging.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("forced shutdown", logging.Err(err))
	}
	if err := s.events.Close(); err != nil {
		s.logger.Warn("event producer close failed", logging.Err(err))
	}
	return nil
}
