/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the obligation engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Configure structured logging
  2. Parse command-line flags
  3. Initialize SQLite store
  4. Create API handler with dependencies
  5. Start the maintenance scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (default: 8080)
  -db        SQLite database path (default: finance.db)
             Use ":memory:" for an in-memory database
  -schedule  Cron schedule for the maintenance passes
             (default: "0 6 * * *", daily at 06:00)

ENVIRONMENT:
  LOG_LEVEL  logrus level (debug, info, warn, error; default: info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the maintenance scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/finance.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run the maintenance passes hourly
  ./server -schedule="0 * * * *"

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Maintenance scheduler
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/obligation-engine/api"
	"github.com/warp/obligation-engine/finance"
	"github.com/warp/obligation-engine/store/sqlite"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "finance.db", "SQLite database path")
	schedule := flag.String("schedule", "0 6 * * *", "cron schedule for maintenance passes")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize database")
	}
	defer store.Close()

	// Initialize handler and scheduler
	handler := api.NewHandler(store, finance.SystemClock{})

	scheduler := api.NewMaintenanceScheduler(handler, logger)
	if err := scheduler.Start(*schedule); err != nil {
		logger.WithError(err).Fatal("failed to start maintenance scheduler")
	}

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.WithField("port", *port).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("server forced to shutdown")
	}

	logger.Info("server stopped")
}
