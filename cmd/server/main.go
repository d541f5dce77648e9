package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/FreePeak/pg-mcp-server/internal/config"
	"github.com/FreePeak/pg-mcp-server/internal/delivery/mcp"
	"github.com/FreePeak/pg-mcp-server/internal/logger"
	"github.com/FreePeak/pg-mcp-server/pkg/db"
)

const (
	serverName    = "pg-mcp-server"
	serverVersion = "1.0.0"

	startupTimeout = 15 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	logger.Initialize(cfg.LogLevel)
	logger.Info("Starting %s", serverName)

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		logger.Error("Failed to configure connection pool: %v", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := pool.Connect(ctx); err != nil {
		logger.Error("Failed to connect to database: %v", err)
		return 1
	}

	dispatcher := mcp.NewDispatcher(mcp.NewRegistry(), db.NewExecutor(pool))

	srv := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
	)
	mcp.Register(srv, dispatcher)

	logger.Info("Server running with stdio transport")
	if err := server.ServeStdio(srv); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error: %v", err)
		pool.Close()
		return 1
	}

	logger.Info("Server shutdown requested")
	pool.Close()
	logger.Info("Database connections closed")
	return 0
}
