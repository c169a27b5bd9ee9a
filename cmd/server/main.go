package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/network/netpoll"
	"github.com/spf13/cobra"

	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/config"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/handler"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/infrastructure/agentbuilder"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/infrastructure/elastic"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/infrastructure/vision"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/router"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/internal/usecase"
	"github.com/jeffvestal/wayfinder-supply-co-sub000/pkg/logger"
)

var (
	cfgFile string
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "wayfinder-server",
	Short: "Wayfinder Supply Co. storefront API server",
	Long: `Wayfinder Supply Co. storefront API server built on the Hertz framework.
It proxies the AI trip-planning assistant, serves the product catalog, and
keeps per-user demo carts.`,
	Version: version,
	Run:     runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	slog.Info("Wayfinder storefront starting...",
		"version", version,
		"config", cfgFile,
	)

	// Route Hertz framework logs through slog.
	hlog.SetLogger(logger.NewHertzSlogAdapter(slog.Default()))
	if cfg.Server.Mode == "debug" {
		hlog.SetLevel(hlog.LevelDebug)
	} else {
		hlog.SetLevel(hlog.LevelInfo)
	}

	// Product catalog
	catalog, err := elastic.NewClient(
		cfg.Elasticsearch.URL,
		cfg.Elasticsearch.APIKey,
		cfg.Elasticsearch.Index,
		cfg.Elasticsearch.Timeout,
		slog.Default(),
	)
	if err != nil {
		slog.Error("failed to create elasticsearch client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := catalog.Ping(ctx); err != nil {
		slog.Warn("elasticsearch ping failed, catalog may be unavailable", "error", err)
	}
	cancel()

	// Agent platform
	agentClient, err := agentbuilder.NewClient(
		cfg.AgentBuilder.KibanaURL,
		cfg.AgentBuilder.APIKey,
		cfg.AgentBuilder.Timeout,
		slog.Default(),
	)
	if err != nil {
		slog.Error("failed to create agent builder client", "error", err)
		os.Exit(1)
	}

	// Vision model (optional)
	visionClient, err := vision.NewClient(
		cfg.Vision.Endpoint,
		cfg.Vision.APIKey,
		cfg.Vision.Model,
		cfg.Vision.Timeout,
		slog.Default(),
	)
	if err != nil {
		slog.Error("failed to create vision client", "error", err)
		os.Exit(1)
	}
	if !visionClient.Ready() {
		slog.Info("vision analyzer not configured, image analysis disabled")
	}

	chatUsecase := usecase.NewChatUsecase(agentClient, visionClient, slog.Default())
	chatHandler := handler.NewChatHandler(chatUsecase, slog.Default())

	productUsecase := usecase.NewProductUsecase(catalog, slog.Default())
	productHandler := handler.NewProductHandler(productUsecase, slog.Default())

	cartUsecase := usecase.NewCartUsecase(catalog, slog.Default())
	cartHandler := handler.NewCartHandler(cartUsecase, slog.Default())

	healthHandler := handler.NewHealthHandler(catalog)

	slog.Info("handlers initialized")

	h := server.Default(
		server.WithHostPorts(cfg.GetServerAddr()),
		server.WithReadTimeout(cfg.Server.ReadTimeout),
		server.WithWriteTimeout(cfg.Server.WriteTimeout),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodySize),
		server.WithTransport(netpoll.NewTransporter),
	)

	router.Setup(h, chatHandler, productHandler, cartHandler, healthHandler,
		cfg.Auth.APIKey, slog.Default())

	slog.Info("server started successfully",
		"address", cfg.GetServerAddr(),
		"mode", cfg.Server.Mode,
	)

	go func() {
		if err := h.Run(); err != nil {
			slog.Error("server run failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
