package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/buildinfo"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/catalog"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/database"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/metrics"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/planner"
	"github.com/ZanzyTHEbar/mcp-lifechain-go/internal/server"
)

var (
	libsqlURL   = flag.String("libsql-url", "", "libSQL database URL (default: file:./lifechain.db)")
	authToken   = flag.String("auth-token", "", "Authentication token for remote databases")
	projectsDir = flag.String("projects-dir", "", "Base directory for projects. Enables multi-project mode.")
	transport   = flag.String("transport", "stdio", "Transport to use: stdio or sse")
	addr        = flag.String("addr", ":8080", "Address to listen on when using SSE transport")
	sseEndpoint = flag.String("sse-endpoint", "/sse", "SSE endpoint path when using SSE transport")
	seedCatalog = flag.String("seed-catalog", "", "YAML or JSON catalog imported into the default project at startup")
)

func newLogger() (*zap.Logger, error) {
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		cfg := zap.NewDevelopmentConfig()
		// stdout belongs to the stdio transport
		cfg.OutputPaths = []string{"stderr"}
		return cfg.Build()
	}
	return zap.NewProduction()
}

func main() {
	flag.Parse()

	logger, err := newLogger()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal, closing server")
		cancel()
	}()

	// Initialize database configuration
	config := database.NewConfig()

	// Initialize metrics (noop if disabled)
	metrics.InitFromEnv()

	// Override with command line flags if provided
	if *libsqlURL != "" {
		config.URL = *libsqlURL
	}
	if *authToken != "" {
		config.AuthToken = *authToken
	}
	if *projectsDir != "" {
		config.ProjectsDir = *projectsDir
		config.MultiProjectMode = true
	}

	db, err := database.NewDBManager(config)
	if err != nil {
		logger.Fatal("failed to create database manager", zap.Error(err))
	}
	db.SetLogger(logger.Named("database"))
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database", zap.Error(err))
		}
	}()

	if *seedCatalog != "" {
		if err := seed(ctx, db, *seedCatalog, logger); err != nil {
			logger.Fatal("failed to seed catalog", zap.String("path", *seedCatalog), zap.Error(err))
		}
	}

	mcpServer := server.NewMCPServer(db, planner.NewConfig(), logger.Named("server"))

	logger.Info("starting lifechain MCP server",
		zap.String("version", buildinfo.Version),
		zap.String("transport", *transport),
		zap.Bool("multiProject", config.MultiProjectMode))
	switch *transport {
	case "stdio":
		go func() {
			if err := mcpServer.Run(ctx); err != nil {
				logger.Error("server error", zap.Error(err))
			}
			cancel()
		}()
	case "sse":
		go func() {
			if err := mcpServer.RunSSE(ctx, *addr, *sseEndpoint); err != nil {
				logger.Error("SSE server error", zap.Error(err))
			}
			cancel()
		}()
	default:
		logger.Fatal("unknown transport (expected: stdio or sse)", zap.String("transport", *transport))
	}

	<-ctx.Done()

	logger.Info("server stopped")
}

func seed(ctx context.Context, db *database.DBManager, path string, logger *zap.Logger) error {
	f, err := catalog.Load(path)
	if err != nil {
		return err
	}
	stored, err := db.UpsertPersons(ctx, "", f.Persons)
	if err != nil {
		return err
	}
	if err := db.CreateRelations(ctx, "", f.Relations); err != nil {
		return err
	}
	logger.Info("seeded catalog",
		zap.String("path", path),
		zap.Int("persons", len(stored)),
		zap.Int("relations", len(f.Relations)))
	return nil
}
