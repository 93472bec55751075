package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jadaunkg/horizon/internal/logger"
	"github.com/jadaunkg/horizon/internal/server"
	"github.com/jadaunkg/horizon/internal/storage/archive"
	"github.com/jadaunkg/horizon/internal/storage/runstore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve completed runs and reports over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	backend, err := archive.Open(cfg.Storage)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg.Server, runstore.New(backend), log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
