// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"trendwise/internal/adapter/cache"
	"trendwise/internal/adapter/llm"
	"trendwise/internal/adapter/storage"
	"trendwise/internal/config"
	domainArticle "trendwise/internal/domain/article"
	"trendwise/internal/logging"
	"trendwise/internal/server"
	"trendwise/internal/server/handlers"
	articleService "trendwise/internal/service/article"
	"trendwise/internal/service/listening"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Environment, cfg.LogLevel)

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var serviceOpts []listening.TrendServiceOption
	deps := server.Dependencies{ArticleTimeout: cfg.Article.Timeout}

	// Snapshot history is optional
	if cfg.Database.Enabled() {
		db, err := initDatabase(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer db.Close()

		trendStore := storage.NewTrendStore(db)
		if err := trendStore.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare trend snapshot schema")
		}
		serviceOpts = append(serviceOpts, listening.WithSnapshotStore(trendStore))
	} else {
		log.Info().Msg("DB_HOST not set, trend history disabled")
	}

	// Refresh events are optional
	if cfg.NATS.URL != "" {
		natsConn, err := initNATS(cfg.NATS, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to NATS")
		}
		defer natsConn.Close()

		serviceOpts = append(serviceOpts, listening.WithPublisher(natsConn))
		deps.Events = handlers.NATSEventSource{Conn: natsConn}
		deps.EventsSubject = listening.RefreshedSubject(cfg.Trend.EventsTopic)
	} else {
		log.Info().Msg("NATS_URL not set, trend stream disabled")
	}

	trendCache, err := initTrendCache(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize trend cache")
	}

	// Initialize trend pipeline
	fallback := listening.NewSynthesizer(nil)
	aggregator := initAggregator(cfg.Trend, fallback, log)

	trendService := listening.NewTrendService(
		aggregator,
		trendCache,
		listening.TrendServiceConfig{
			RefreshSchedule: cfg.Trend.RefreshSchedule,
			EventsTopic:     cfg.Trend.EventsTopic,
			RefreshTimeout:  cfg.Trend.RefreshTimeout,
		},
		log,
		serviceOpts...,
	)

	if err := trendService.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start trend service")
	}

	generator, closeLLM, err := initArticleGenerator(ctx, cfg.Article, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize article generator")
	}
	defer closeLLM()

	deps.Trends = trendService
	deps.SocialFallback = listening.NewSocialSynthesizer(nil)
	deps.Articles = generator

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, log, deps)

	// Start HTTP server
	go func() {
		log.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Info().Msg("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Stop trend service
	cancel()
	if err := trendService.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Trend service shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, log zerolog.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("trendwise"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info().Msg("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}

// Initialize the trend cache, shared through Redis when configured
func initTrendCache(ctx context.Context, cfg config.Config, log zerolog.Logger) (listening.TrendCache, error) {
	if cfg.Redis.URL == "" {
		return cache.NewMemoryTrendCache(cfg.Trend.CacheTTL, time.Now), nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, err
	}
	return cache.NewRedisTrendCache(client, cfg.Redis.Key, cfg.Trend.CacheTTL, log), nil
}

// Initialize the two source paths and the aggregator over them
func initAggregator(cfg config.TrendConfig, fallback *listening.Synthesizer, log zerolog.Logger) *listening.Aggregator {
	fetcher := listening.NewHTTPFetcher(cfg.RequestTimeout)

	search := listening.NewSequentialTier("search", cfg.TierDelay, log,
		listening.NewSearchTrendsSource(cfg.SearchAPIURL, cfg.SearchAPIKey, cfg.SearchGeo, fetcher, log),
		listening.NewFeedSource("search-trends-feed", cfg.TrendsFeedURL, listening.AcceptFeed, fetcher,
			listening.SyndicationParser{Brand: cfg.TrendsFeedBrand, Log: log}, log),
	)

	socialSources := make([]listening.Source, 0, 5)
	for _, feed := range []listening.RedditFeed{listening.RedditPopular, listening.RedditTechnology, listening.RedditWorldNews} {
		url := fmt.Sprintf("%s/r/%s/hot.json?limit=25", cfg.RedditBaseURL, feed.Subreddit)
		socialSources = append(socialSources,
			listening.NewFeedSource(feed.Name, url, listening.AcceptJSON, fetcher, listening.RedditParser{Feed: feed, Log: log}, log))
	}
	socialSources = append(socialSources,
		listening.NewFeedSource("repository-trending", cfg.RepositoryURL, listening.AcceptJSON, fetcher,
			listening.RepositoryParser{Log: log}, log),
		listening.NewTwitterSource(listening.TwitterConfig{
			BearerToken: cfg.TwitterToken,
			Host:        cfg.TwitterAPIURL,
			Query:       cfg.TwitterQuery,
		}, &http.Client{Timeout: cfg.RequestTimeout}, log))

	social := listening.NewSequentialTier("social", cfg.TierDelay, log, socialSources...)

	return listening.NewAggregator(search, social, fallback, listening.DefaultAggregatorConfig(), log)
}

// Initialize the article generator for the configured LLM provider. Without
// credentials the generator is returned unconfigured.
func initArticleGenerator(ctx context.Context, cfg config.ArticleConfig, log zerolog.Logger) (*articleService.Generator, func(), error) {
	closeFn := func() {}

	var text domainArticle.TextGenerator
	var images domainArticle.ImageGenerator

	openAICfg := llm.OpenAIConfig{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		Model:      cfg.OpenAIModel,
		ImageModel: cfg.OpenAIImageModel,
	}

	switch {
	case !cfg.LLMConfigured():
		log.Warn().Str("provider", cfg.Provider).Msg("LLM API key not set, article generation disabled")
	case cfg.Provider == config.ProviderGemini:
		provider, err := llm.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, closeFn, err
		}
		text = provider
		closeFn = func() { provider.Close() }
	default:
		provider, err := llm.NewOpenAIProvider(openAICfg)
		if err != nil {
			return nil, closeFn, err
		}
		text = provider
	}

	if cfg.GenerateImages && cfg.OpenAIAPIKey != "" {
		imageGen, err := llm.NewOpenAIImageGenerator(openAICfg)
		if err != nil {
			return nil, closeFn, err
		}
		images = imageGen
	}

	resolver := articleService.NewImageResolver(images, articleService.ImageResolverConfig{
		GenerateImages:     cfg.GenerateImages,
		StockBaseURL:       cfg.StockImageBaseURL,
		PlaceholderBaseURL: cfg.PlaceholderBaseURL,
		HealthTTL:          cfg.ImageHealthTTL,
	}, time.Now, log)

	return articleService.NewGenerator(text, resolver, time.Now, log), closeFn, nil
}
