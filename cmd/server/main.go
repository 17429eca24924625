package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Parley/internal/adapters/http"
	sttadapter "github.com/dkeye/Parley/internal/adapters/stt"
	"github.com/dkeye/Parley/internal/adapters/translate"
	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/app/captions"
	"github.com/dkeye/Parley/internal/app/orch"
	"github.com/dkeye/Parley/internal/app/stt"
	"github.com/dkeye/Parley/internal/config"
	"github.com/dkeye/Parley/internal/metrics"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	mx := metrics.New()
	reg := app.NewRegistry()
	presence := app.NewPresence()
	languages := app.NewLanguages()
	calls := app.NewCalls()

	relay := &captions.Relay{
		Registry:   reg,
		Presence:   presence,
		Calls:      calls,
		Languages:  languages,
		Translator: translate.NewClient(cfg.Translate),
		Metrics:    mx,
		Timeout:    cfg.Translate.Timeout,
	}
	transcripts := stt.NewManager(sttadapter.NewProvider(cfg.STT), relay, cfg.STT.StreamTTL, mx)

	orch := &orch.Orchestrator{
		Registry:    reg,
		Presence:    presence,
		Languages:   languages,
		Calls:       calls,
		Transcripts: transcripts,
		Metrics:     mx,
	}

	r := router.SetupRouter(ctx, cfg, orch)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Parley server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	transcripts.Stop()
	log.Info().Msg("Server exited gracefully")
}
