package journalservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/lumora-ai/lumora-server/internal/api"
	"github.com/lumora-ai/lumora-server/internal/config"
	"github.com/lumora-ai/lumora-server/internal/embeddings"
	"github.com/lumora-ai/lumora-server/internal/factory"
	"github.com/lumora-ai/lumora-server/internal/health"
	"github.com/lumora-ai/lumora-server/internal/llm"
	"github.com/lumora-ai/lumora-server/internal/logger"
	"github.com/lumora-ai/lumora-server/internal/pipeline"
	"github.com/lumora-ai/lumora-server/internal/services"
	"github.com/lumora-ai/lumora-server/internal/store"
	"github.com/lumora-ai/lumora-server/internal/vectorindex"
)

// Run starts the journal service HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("journal-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("http_port", cfg.HTTPPort).
		Str("vector_store", cfg.VectorStore).
		Str("llm_model", cfg.LLMModel).
		Str("embed_provider", cfg.EmbedProvider).
		Str("embed_model", cfg.EmbedModel).
		Msg("Journal service starting")

	// Cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	deps, err := initDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}

	router := buildRouter(deps, cfg, log)

	// Start health checkers and bind service health
	svcHealth := startHealthCheckers(ctx, cfg, log, deps)

	// Block startup until dependencies report healthy; fail fast otherwise
	if err := waitUntilHealthy(ctx, cfg, svcHealth); err != nil {
		log.Error().Stack().Err(err).Msg("startup health check failed")
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	// Graceful shutdown on context cancel or server error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}

// dependencies bundles the wired infrastructure components.
type dependencies struct {
	st           store.Store
	idx          vectorindex.Index
	embedder     embeddings.Provider
	summarizeLLM llm.Client
	chatLLM      llm.Client
}

// initDependencies constructs required components and fails fast on
// anything missing.
func initDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*dependencies, error) {
	st, err := factory.NewStore(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Record store unavailable")
		return nil, err
	}

	idx, err := factory.NewVectorIndex(ctx, cfg, log)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Vector index unavailable")
		return nil, err
	}

	embedder, err := factory.NewEmbeddingProvider(cfg)
	if err != nil {
		log.Error().Stack().Err(err).Msg("Embedding provider unavailable")
		return nil, err
	}

	return &dependencies{
		st:           st,
		idx:          idx,
		embedder:     embedder,
		summarizeLLM: factory.NewSummarizeLLM(cfg),
		chatLLM:      factory.NewChatLLM(cfg),
	}, nil
}

// buildRouter assembles pipelines, services and HTTP routes.
func buildRouter(deps *dependencies, cfg *config.Config, log zerolog.Logger) *mux.Router {
	summarizer := pipeline.NewSummarizer(deps.summarizeLLM, deps.embedder, deps.idx, deps.st, pipeline.SummarizerConfig{
		Namespace:       cfg.Namespace,
		GenerateTimeout: time.Duration(cfg.GenerateTimeoutSeconds) * time.Second,
		EmbedTimeout:    time.Duration(cfg.EmbedTimeoutSeconds) * time.Second,
		VectorTimeout:   time.Duration(cfg.VectorTimeoutSeconds) * time.Second,
	}, log)

	chatPipe := pipeline.NewChatPipeline(deps.chatLLM, deps.embedder, deps.idx, deps.st, summarizer, pipeline.ChatConfig{
		Namespace:       cfg.Namespace,
		TopK:            cfg.RetrievalTopK,
		GenerateTimeout: time.Duration(cfg.GenerateTimeoutSeconds) * time.Second,
		EmbedTimeout:    time.Duration(cfg.EmbedTimeoutSeconds) * time.Second,
		VectorTimeout:   time.Duration(cfg.VectorTimeoutSeconds) * time.Second,
	}, log)

	journalSvc := services.NewJournalService(deps.st, deps.idx, summarizer, cfg.Namespace, log)
	chatSvc := services.NewChatService(deps.st, chatPipe, log)
	accountSvc := services.NewAccountService(deps.st, deps.idx, cfg.Namespace, log)

	return api.NewRouter(journalSvc, chatSvc, accountSvc)
}

// startHealthCheckers starts component checkers and the service-level
// aggregator, then binds the aggregate into the health endpoint.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, deps *dependencies) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	var checkers []health.HealthChecker
	add := func(name string, component interface{}) {
		p, ok := component.(health.HealthPinger)
		if !ok {
			// In-memory components have no probe and count as healthy.
			return
		}
		c := health.NewPingChecker(name, p, log, probeTimeout)
		go c.Start(ctx, interval)
		checkers = append(checkers, c)
	}

	add("store", deps.st)
	add("vector-index", deps.idx)
	add("embedder", deps.embedder)
	add("llm", deps.summarizeLLM)

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	api.BindServiceHealth(svcHealth.IsHealthy)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// calculateStartupHealthTimeout returns the startup health timeout in
// seconds, interval*2 with a minimum of 60 seconds.
func calculateStartupHealthTimeout(healthIntervalSeconds int) int {
	timeout := healthIntervalSeconds * 2
	if timeout < 60 {
		return 60
	}
	return timeout
}

// waitUntilHealthy blocks until service health is healthy or the startup window expires.
func waitUntilHealthy(ctx context.Context, cfg *config.Config, svcHealth *health.ServiceHealthChecker) error {
	timeoutSeconds := calculateStartupHealthTimeout(cfg.HealthIntervalSeconds)
	deadline := time.Now().Add(time.Duration(timeoutSeconds) * time.Second)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		if svcHealth.IsHealthy() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("startup aborted: dependencies not healthy within %d seconds", timeoutSeconds)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
