package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dmitryfil/da-word-rain/internal/config"
	"github.com/dmitryfil/da-word-rain/internal/httpserver"
	"github.com/dmitryfil/da-word-rain/internal/store"
	"github.com/dmitryfil/da-word-rain/internal/words"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cfg, err := config.Load(os.Getenv("GAME_CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid game config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dict := words.New()
	src := words.Source{File: os.Getenv("DICT_FILE"), URL: os.Getenv("DICT_URL")}
	if _, err := dict.LoadSource(ctx, src); err != nil {
		// Sessions stay not-ready until POST /dictionary/reload succeeds.
		log.Error().Err(err).Str("source", src.String()).Msg("failed to load dictionary")
	}

	tickHz, _ := strconv.Atoi(getEnv("TICK_HZ", "60"))
	mem := store.NewMemoryStore()
	srv := httpserver.New(mem, httpserver.Options{
		Config:       cfg,
		Dict:         dict,
		DictSource:   src,
		Secret:       getEnv("SESSION_SECRET", "dev_secret_change_me"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		TickHz:       tickHz,
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
	})
	defer srv.Close()

	port := getEnv("PORT", "5175")
	hs := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", port).Int("words", dict.Size()).Msg("starting word-rain server")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
