package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/artulabs/swap-router/internal/config"
	"github.com/artulabs/swap-router/internal/domain/entities"
	"github.com/artulabs/swap-router/internal/domain/services"
	"github.com/artulabs/swap-router/internal/infrastructure/cache"
	"github.com/artulabs/swap-router/internal/infrastructure/ethereum"
	"github.com/artulabs/swap-router/internal/infrastructure/eventlog"
	"github.com/artulabs/swap-router/internal/infrastructure/pricefeed"
	"github.com/artulabs/swap-router/internal/infrastructure/venues"
	"github.com/artulabs/swap-router/internal/presentation/handlers"
)

const (
	version = "0.1.0"
)

func main() {
	root := &cobra.Command{
		Use:          "swap-router",
		Short:        "Multi-venue token swap execution API",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the swap router API server",
		RunE:  runServer,
	}

	serveCmd.Flags().String("rpc-url", "", "EVM JSON-RPC endpoint")
	serveCmd.Flags().String("private-key", "", "hex private key of the executing account")
	serveCmd.Flags().String("port", "8080", "HTTP listen port")
	serveCmd.Flags().String("redis-addr", "", "Redis address for the price cache (empty uses in-memory)")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN for the event log (empty uses in-memory)")
	serveCmd.Flags().Uint64("default-venue", 1, "default venue tag for the generic path")
	serveCmd.Flags().StringSlice("venue-router", nil, "router overrides (Name=0xaddress, comma-separated)")
	serveCmd.Flags().String("feed-address", "", "Chainlink reference feed address")
	serveCmd.Flags().Duration("feed-heartbeat", time.Hour, "max feed answer age before it is treated as stale")
	serveCmd.Flags().Uint64("max-deviation-bps", 0, "reject swaps whose minimum output sits this far below the feed expectation (0 disables)")
	serveCmd.Flags().String("aggregator-url", "", "aggregator API base URL")
	serveCmd.Flags().Duration("swap-deadline", 5*time.Minute, "on-chain swap deadline TTL")
	serveCmd.Flags().Uint64("v3-fee-tier", 3000, "fee tier for v3-style pools")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc-url is required")
	}
	if cfg.PrivateKey == "" {
		return fmt.Errorf("private-key is required")
	}

	ethClient, err := ethereum.NewClient(cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer ethClient.Close()
	logger.Info("connected to chain", zap.String("chain_id", ethClient.ChainID().String()))

	sender, err := ethereum.NewSender(ethClient, cfg.PrivateKey)
	if err != nil {
		return fmt.Errorf("load signing key: %w", err)
	}
	logger.Info("executing account ready", zap.String("from", sender.From().Hex()))

	defaultVenue, err := entities.ParseVenueTag(cfg.DefaultVenue)
	if err != nil {
		return fmt.Errorf("default-venue: %w", err)
	}
	registry, err := venues.NewRegistry(defaultVenue, cfg.VenueOverrides)
	if err != nil {
		return fmt.Errorf("build venue registry: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder eventlog.Recorder
	if cfg.PGDSN != "" {
		pgRecorder, err := eventlog.NewPostgresRecorder(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgRecorder.Close()
		recorder = pgRecorder
		logger.Info("event log backed by postgres")
	} else {
		recorder = eventlog.NewMemoryRecorder()
		logger.Info("event log backed by memory")
	}

	var priceCache cache.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, "", 0)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory cache", zap.Error(err))
			priceCache = cache.NewInMemoryCache()
		} else {
			defer redisCache.Close()
			priceCache = redisCache
			logger.Info("price cache backed by redis", zap.String("addr", cfg.RedisAddr))
		}
	} else {
		priceCache = cache.NewInMemoryCache()
	}

	feedAddress := pricefeed.DefaultFeedAddress
	if cfg.FeedAddress != "" {
		if !common.IsHexAddress(cfg.FeedAddress) {
			return fmt.Errorf("feed-address %q is not a valid address", cfg.FeedAddress)
		}
		feedAddress = common.HexToAddress(cfg.FeedAddress)
	}
	feed := pricefeed.NewChainlinkFeed(ethClient, feedAddress)

	erc20 := venues.NewERC20Client(ethClient, sender)
	executors := []venues.Executor{
		venues.NewV2Executor(sender, cfg.SwapDeadline),
		venues.NewV3Executor(sender, uint32(cfg.V3FeeTier), cfg.SwapDeadline),
		venues.NewAggregatorExecutor(sender, cfg.AggregatorURL),
	}

	priceService := services.NewPriceService(feed, priceCache, cfg.FeedHeartbeat, logger)
	approvalService := services.NewApprovalService(registry, erc20, recorder, logger)
	swapService := services.NewSwapService(registry, executors, recorder, priceService, cfg.MaxDeviationBps, logger)

	healthHandler := handlers.NewHealthHandler(version)
	approveHandler := handlers.NewApproveHandler(approvalService)
	swapHandler := handlers.NewSwapHandler(swapService)
	venueHandler := handlers.NewVenueHandler(registry)
	eventHandler := handlers.NewEventHandler(recorder)
	tokenHandler := handlers.NewTokenHandler(erc20)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", healthHandler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/approve", approveHandler.Approve)
		r.Post("/swap", swapHandler.Swap)
		r.Post("/swap/v2", swapHandler.SwapV2)
		r.Post("/swap/v3", swapHandler.SwapV3)
		r.Post("/swap/aggregator", swapHandler.SwapAggregator)
		r.Get("/venues", venueHandler.List)
		r.Get("/events", eventHandler.List)
		r.Get("/tokens/{tokenAddress}", tokenHandler.Get)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting swap router API",
			zap.String("version", version),
			zap.String("port", cfg.Port),
			zap.String("default_venue", registry.Default().Name),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
