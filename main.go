// takenote/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/vinizap/takenote/config"
	"github.com/vinizap/takenote/events"
	"github.com/vinizap/takenote/export"
	httphandlers "github.com/vinizap/takenote/http"
	"github.com/vinizap/takenote/storage"
	"github.com/vinizap/takenote/store"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "takenote: %v\n", err)
		os.Exit(1)
	}
	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "takenote: %v\n", err)
		os.Exit(1)
	}
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("takenote stopped")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer kv.Close()
	log.Info().Str("backend", cfg.Storage.Backend).Msg("storage ready")

	st, err := store.Open(ctx, kv, store.WithLogger(log.With().Str("component", "store").Logger()))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	hub := events.NewHub(log.With().Str("component", "events").Logger())
	go hub.Run(ctx)

	var pdf export.PDFRenderer
	if len(cfg.Export.PDFCommand) > 0 {
		pdf = export.CommandRenderer{Command: cfg.Export.PDFCommand}
	}

	server := httphandlers.NewServer(st, hub, pdf, log.With().Str("component", "http").Logger())

	errc := make(chan error, 1)
	go func() {
		errc <- server.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
