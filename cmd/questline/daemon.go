package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fentz26/questline/internal/api"
	"github.com/fentz26/questline/internal/config"
	"github.com/fentz26/questline/internal/journal"
	"github.com/fentz26/questline/internal/reminder"
	"github.com/fentz26/questline/internal/store"
	"github.com/spf13/cobra"
)

var (
	listenAddr string
	dbPath     string
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Start the Questline daemon",
	Long:  `Starts the Questline daemon which provides the HTTP API and the reminder loop.`,
	RunE:  runDaemon,
}

func init() {
	daemonCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address for the API server (overrides config)")
	daemonCmd.Flags().StringVar(&dbPath, "db", "", "Path to SQLite database (overrides config)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	log.Println("Starting Questline daemon...")

	cfg, err := config.LoadFromHome()
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	// Initialize store
	s, err := store.New(cfg.DBPath)
	if err != nil {
		return err
	}

	// Provision the local profile
	user, err := s.EnsureUser(cfg.Profile)
	if err != nil {
		s.Close()
		return err
	}
	log.Printf("Serving profile %q (level %d, %d xp)", user.Username, user.Level, user.XP)

	// Create service and server
	jw := journal.NewWriter(s)
	service := api.NewService(s, jw, user.ID)
	server := api.NewServer(service, cfg.Listen)

	// Create and start the reminder loop
	rem := reminder.New(s, &reminder.Config{
		Interval: cfg.Reminder.Interval,
		Window:   cfg.Reminder.Window,
	})
	rem.Start()
	defer rem.Stop()

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		err := server.Start()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-serverErr:
		if err != nil {
			log.Printf("Server error: %v", err)
			s.Close()
			return err
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Println("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Closing database connection...")
	if err := s.Close(); err != nil {
		log.Printf("Database close error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}
